package audio

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/cala/engine/containers"
	"github.com/spaghettifunk/cala/engine/core"
)

var (
	ErrOverrun       = errors.New("audio capture overrun")
	ErrUnderrun      = errors.New("audio playback underrun")
	ErrDeviceStopped = errors.New("audio device stopped")
)

type Config struct {
	SampleRate   uint32
	BufferFrames uint32
	// Latency is how much audio the ring buffers hold in each direction.
	Latency  time.Duration
	Capture  bool
	Playback bool
}

func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		BufferFrames: 512,
		Latency:      100 * time.Millisecond,
		Capture:      true,
		Playback:     true,
	}
}

// Audio is the audio capability. The device thread only talks to the two ring
// buffers; Record and Play run on the scheduler goroutine.
type Audio struct {
	cfg     Config
	device  Device
	journal *core.Journal

	captured *containers.SyncRingQueue[Sample]
	playback *containers.SyncRingQueue[Sample]
	recorded []Sample

	overruns  atomic.Uint64
	underruns atomic.Uint64
	stopped   atomic.Bool

	initialized bool
}

func New(cfg Config, device Device, journal *core.Journal) *Audio {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	if cfg.Latency <= 0 {
		cfg.Latency = DefaultConfig().Latency
	}
	return &Audio{
		cfg:     cfg,
		device:  device,
		journal: journal.With("system", "audio"),
	}
}

func (a *Audio) Name() string {
	return "audio"
}

func (a *Audio) Initialize() error {
	if a.initialized {
		return core.ErrAlreadyInitialized
	}

	size := int(a.cfg.Latency.Seconds() * float64(a.cfg.SampleRate))
	if floor := int(a.cfg.BufferFrames) * 2; size < floor {
		size = floor
	}
	size = max(size, 1)

	cb := Callbacks{Stopped: a.onStopped}
	if a.cfg.Capture {
		a.captured = containers.NewSyncRingQueue[Sample](size)
		cb.Capture = a.onCapture
	}
	if a.cfg.Playback {
		a.playback = containers.NewSyncRingQueue[Sample](size)
		cb.Playback = a.onPlayback
	}

	format := Format{SampleRate: a.cfg.SampleRate, BufferFrames: a.cfg.BufferFrames}
	if err := a.device.Open(format, cb); err != nil {
		return err
	}
	a.initialized = true
	a.journal.Info("audio device opened", "rate", format.SampleRate, "frames", format.BufferFrames, "capture", a.cfg.Capture, "playback", a.cfg.Playback)
	return nil
}

// Update moves the samples captured since the previous tick where Record can
// see them and reports buffer trouble seen by the device thread.
func (a *Audio) Update(delta time.Duration) error {
	if !a.initialized {
		return core.ErrNotInitialized
	}
	if a.stopped.Load() {
		return core.Fatal(ErrDeviceStopped)
	}

	a.recorded = a.recorded[:0]
	if a.captured != nil {
		a.recorded = append(a.recorded, a.captured.Drain()...)
	}

	var errs []error
	if n := a.overruns.Swap(0); n > 0 {
		errs = append(errs, fmt.Errorf("%w: %d frames dropped", ErrOverrun, n))
	}
	if n := a.underruns.Swap(0); n > 0 {
		errs = append(errs, fmt.Errorf("%w: %d frames of silence", ErrUnderrun, n))
	}
	return errors.Join(errs...)
}

func (a *Audio) Shutdown() error {
	if !a.initialized {
		return nil
	}
	a.initialized = false
	return a.device.Close()
}

// Record calls fn for every sample captured up to this tick, in order.
func (a *Audio) Record(fn func(mic int, s Sample)) {
	for _, s := range a.recorded {
		fn(0, s)
	}
}

// Play fills the free playback space with samples produced by fn and returns
// how many were queued.
func (a *Audio) Play(fn func() Sample) int {
	if a.playback == nil {
		return 0
	}
	free := a.playback.Free()
	if free == 0 {
		return 0
	}
	buf := make([]Sample, free)
	for i := range buf {
		buf[i] = fn()
	}
	return a.playback.Write(buf)
}

// Buffered returns the number of samples waiting to be played.
func (a *Audio) Buffered() int {
	if a.playback == nil {
		return 0
	}
	return a.playback.Len()
}

func (a *Audio) SampleRate() uint32 {
	return a.cfg.SampleRate
}

func (a *Audio) onCapture(in []Sample) {
	if n := a.captured.Write(in); n < len(in) {
		a.overruns.Add(uint64(len(in) - n))
	}
}

func (a *Audio) onPlayback(out []Sample) {
	n := a.playback.Read(out)
	if n < len(out) {
		clear(out[n:])
		a.underruns.Add(uint64(len(out) - n))
	}
}

func (a *Audio) onStopped() {
	a.stopped.Store(true)
}
