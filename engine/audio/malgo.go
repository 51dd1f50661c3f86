package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/spaghettifunk/cala/engine/core"
)

// MalgoDevice is a miniaudio duplex device.
type MalgoDevice struct {
	journal *core.Journal
	ctx     *malgo.AllocatedContext
	device  *malgo.Device

	mu       sync.Mutex
	closing  bool
	inFrames []Sample
	out      []Sample
}

func NewMalgoDevice(journal *core.Journal) *MalgoDevice {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	return &MalgoDevice{journal: journal}
}

func (d *MalgoDevice) Open(format Format, cb Callbacks) error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		d.journal.Debug("miniaudio", "msg", message)
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}

	deviceType := malgo.Duplex
	switch {
	case cb.Capture == nil && cb.Playback == nil:
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("audio device needs capture or playback")
	case cb.Capture == nil:
		deviceType = malgo.Playback
	case cb.Playback == nil:
		deviceType = malgo.Capture
	}

	cfg := malgo.DefaultDeviceConfig(deviceType)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 2
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 2
	cfg.SampleRate = format.SampleRate
	cfg.PeriodSizeInFrames = format.BufferFrames
	cfg.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, input []byte, frames uint32) {
			if cb.Capture != nil && len(input) > 0 {
				cb.Capture(d.decode(input, frames))
			}
			if cb.Playback != nil && len(output) > 0 {
				d.encode(output, frames, cb.Playback)
			}
		},
		Stop: func() {
			d.mu.Lock()
			closing := d.closing
			d.mu.Unlock()
			if !closing && cb.Stopped != nil {
				cb.Stopped()
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, cfg, callbacks)
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to open audio device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to start audio device: %w", err)
	}

	d.ctx, d.device = ctx, device
	return nil
}

func (d *MalgoDevice) Close() error {
	d.mu.Lock()
	d.closing = true
	d.mu.Unlock()

	if d.device != nil {
		d.device.Uninit()
		d.device = nil
	}
	if d.ctx != nil {
		err := d.ctx.Uninit()
		d.ctx.Free()
		d.ctx = nil
		return err
	}
	return nil
}

func (d *MalgoDevice) decode(input []byte, frames uint32) []Sample {
	if cap(d.inFrames) < int(frames) {
		d.inFrames = make([]Sample, frames)
	}
	in := d.inFrames[:frames]
	for i := range in {
		off := i * 4
		in[i] = Sample{
			L: int16(binary.LittleEndian.Uint16(input[off:])),
			R: int16(binary.LittleEndian.Uint16(input[off+2:])),
		}
	}
	return in
}

func (d *MalgoDevice) encode(output []byte, frames uint32, fill func([]Sample)) {
	if cap(d.out) < int(frames) {
		d.out = make([]Sample, frames)
	}
	out := d.out[:frames]
	fill(out)
	for i, s := range out {
		off := i * 4
		binary.LittleEndian.PutUint16(output[off:], uint16(s.L))
		binary.LittleEndian.PutUint16(output[off+2:], uint16(s.R))
	}
}
