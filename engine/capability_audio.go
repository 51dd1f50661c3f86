//go:build !noaudio

package engine

import (
	"time"

	"github.com/spaghettifunk/cala/engine/audio"
	"github.com/spaghettifunk/cala/engine/systems"
)

type audioCapability struct {
	Audio *audio.Audio
}

// WithAudioDevice replaces the miniaudio device.
func WithAudioDevice(device audio.Device) Option {
	return withBackend("audio", device)
}

func init() {
	register(capability{
		name:  "audio",
		order: orderAudio,
		build: func(b *builder) systems.System {
			device, ok := b.options.backends["audio"].(audio.Device)
			switch {
			case ok:
			case b.config.Headless:
				device = audio.NullDevice{}
			default:
				device = audio.NewMalgoDevice(b.journal)
			}
			cfg := b.config.Audio
			a := audio.New(audio.Config{
				SampleRate:   uint32(cfg.SampleRate),
				BufferFrames: uint32(cfg.BufferFrames),
				Latency:      time.Duration(cfg.LatencyMS) * time.Millisecond,
				Capture:      cfg.Capture,
				Playback:     cfg.Playback,
			}, device, b.journal)
			b.context.Audio = a
			return a
		},
	})
}
