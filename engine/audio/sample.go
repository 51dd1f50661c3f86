package audio

import (
	stdmath "math"

	"github.com/spaghettifunk/cala/engine/math"
)

// Sample is one stereo frame of signed 16-bit PCM.
type Sample struct {
	L, R int16
}

func Stereo(l, r int16) Sample {
	return Sample{L: l, R: r}
}

// Mono duplicates v on both channels.
func Mono(v int16) Sample {
	return Sample{L: v, R: v}
}

// FromFloat converts samples in [-1, 1] to PCM, clipping values outside the
// range.
func FromFloat(l, r float32) Sample {
	return Sample{L: toPCM(l), R: toPCM(r)}
}

// Float returns the sample as two values in [-1, 1].
func (s Sample) Float() (float32, float32) {
	return float32(s.L) / stdmath.MaxInt16, float32(s.R) / stdmath.MaxInt16
}

// Mix adds two samples, saturating instead of wrapping.
func (s Sample) Mix(o Sample) Sample {
	return Sample{
		L: int16(math.Clamp(int32(s.L)+int32(o.L), stdmath.MinInt16, stdmath.MaxInt16)),
		R: int16(math.Clamp(int32(s.R)+int32(o.R), stdmath.MinInt16, stdmath.MaxInt16)),
	}
}

func toPCM(v float32) int16 {
	return int16(math.Clamp(v, -1, 1) * stdmath.MaxInt16)
}
