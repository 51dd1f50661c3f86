package audio

// Format describes the stream negotiated with a Device. Samples are always
// interleaved stereo S16.
type Format struct {
	SampleRate   uint32
	BufferFrames uint32
}

// Callbacks are invoked by the device on its own thread.
type Callbacks struct {
	// Capture receives the frames recorded since the previous call. Nil when
	// capture is disabled.
	Capture func(in []Sample)
	// Playback must fill out completely. Nil when playback is disabled.
	Playback func(out []Sample)
	// Stopped is called when the device stops without being closed.
	Stopped func()
}

// Device is an audio backend.
type Device interface {
	Open(format Format, cb Callbacks) error
	Close() error
}

// NullDevice accepts any format and never calls back. Record sees silence and
// Play fills the ring once.
type NullDevice struct{}

func (NullDevice) Open(Format, Callbacks) error { return nil }
func (NullDevice) Close() error                 { return nil }
