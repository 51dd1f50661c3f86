package graphics

import (
	"image"
	"slices"

	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/platform"
	"github.com/spaghettifunk/cala/engine/renderer/vulkan"
)

// Presenter puts finished frames somewhere visible.
type Presenter interface {
	Open(cfg Config) error
	// PumpEvents processes pending window events. It must not block.
	PumpEvents()
	Present(frame *image.RGBA) error
	// Size is the drawable area in pixels.
	Size() (int, int)
	ShouldClose() bool
	// Input is nil when the presenter has no window.
	Input() *platform.Input
	Close() error
}

// HeadlessPresenter keeps the last presented frame in memory.
type HeadlessPresenter struct {
	width, height int
	frame         *image.RGBA
	presented     uint64
	closeAfter    uint64
}

func NewHeadlessPresenter() *HeadlessPresenter {
	return &HeadlessPresenter{}
}

// CloseAfter makes ShouldClose report true once n frames were presented.
// Zero never closes.
func (h *HeadlessPresenter) CloseAfter(n uint64) {
	h.closeAfter = n
}

func (h *HeadlessPresenter) Open(cfg Config) error {
	h.width, h.height = cfg.Width, cfg.Height
	return nil
}

func (h *HeadlessPresenter) PumpEvents() {}

func (h *HeadlessPresenter) Present(frame *image.RGBA) error {
	if h.frame == nil || h.frame.Bounds() != frame.Bounds() {
		h.frame = image.NewRGBA(frame.Bounds())
	}
	copy(h.frame.Pix, frame.Pix)
	h.presented++
	return nil
}

// Frame returns a copy of the last presented frame, nil before the first.
func (h *HeadlessPresenter) Frame() *image.RGBA {
	if h.frame == nil {
		return nil
	}
	frame := *h.frame
	frame.Pix = slices.Clone(h.frame.Pix)
	return &frame
}

func (h *HeadlessPresenter) Presented() uint64 {
	return h.presented
}

func (h *HeadlessPresenter) Size() (int, int) {
	return h.width, h.height
}

func (h *HeadlessPresenter) ShouldClose() bool {
	return h.closeAfter > 0 && h.presented >= h.closeAfter
}

func (h *HeadlessPresenter) Input() *platform.Input {
	return nil
}

func (h *HeadlessPresenter) Close() error {
	return nil
}

// WindowPresenter shows frames in a GLFW window through a Vulkan swapchain.
type WindowPresenter struct {
	journal   *core.Journal
	window    *platform.Window
	presenter *vulkan.Presenter
	acquired  bool
}

func NewWindowPresenter(journal *core.Journal) *WindowPresenter {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	return &WindowPresenter{journal: journal}
}

func (w *WindowPresenter) Open(cfg Config) error {
	if err := platform.Acquire(); err != nil {
		return err
	}
	w.acquired = true

	window, err := platform.NewWindow(platform.WindowConfig{
		Title:     cfg.Title,
		X:         cfg.X,
		Y:         cfg.Y,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Resizable: cfg.Resizable,
	})
	if err != nil {
		w.Close()
		return err
	}
	w.window = window

	p, err := vulkan.NewPresenter(window, vulkan.PresenterConfig{
		AppName: cfg.Title,
		VSync:   cfg.VSync,
		Debug:   cfg.Debug,
	}, w.journal)
	if err != nil {
		w.Close()
		return err
	}
	w.presenter = p
	return nil
}

func (w *WindowPresenter) PumpEvents() {
	w.window.PumpMessages()
}

func (w *WindowPresenter) Present(frame *image.RGBA) error {
	if err := w.presenter.Present(frame); err != nil {
		if vulkan.DeviceLost(err) {
			return core.Fatal(err)
		}
		return err
	}
	return nil
}

func (w *WindowPresenter) Size() (int, int) {
	return w.window.FramebufferSize()
}

func (w *WindowPresenter) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *WindowPresenter) Input() *platform.Input {
	return w.window.Input()
}

func (w *WindowPresenter) Close() error {
	if w.presenter != nil {
		w.presenter.Destroy()
		w.presenter = nil
	}
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
	if w.acquired {
		platform.Release()
		w.acquired = false
	}
	return nil
}
