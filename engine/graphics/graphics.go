package graphics

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"
	"time"

	"github.com/fzipp/bmfont"
	"github.com/google/uuid"
	"golang.org/x/image/math/f32"

	"github.com/spaghettifunk/cala/engine/core"
	"github.com/spaghettifunk/cala/engine/platform"
)

var ErrDegenerateShape = errors.New("a shape needs at least 3 vertices")

type Config struct {
	Title      string
	X, Y       int
	Width      int
	Height     int
	Resizable  bool
	VSync      bool
	Debug      bool
	Background color.RGBA
}

func DefaultConfig() Config {
	return Config{
		Title:      "Cala",
		X:          100,
		Y:          100,
		Width:      1280,
		Height:     720,
		Resizable:  true,
		VSync:      true,
		Background: color.RGBA{A: 255},
	}
}

// drawable is either an *Instance or a *Text.
type drawable interface {
	id() uuid.UUID
	visible() bool
}

func (i *Instance) id() uuid.UUID { return i.ID }
func (i *Instance) visible() bool { return i.Visible }
func (t *Text) id() uuid.UUID     { return t.ID }
func (t *Text) visible() bool     { return t.Visible }

// Graphics is the graphics capability: a retained scene of shapes and text,
// rasterized on the CPU once per tick and handed to a Presenter.
type Graphics struct {
	cfg       Config
	presenter Presenter
	journal   *core.Journal

	framebuffer *image.RGBA
	raster      *rasterizer
	scene       []drawable
	shaders     map[uuid.UUID]*Shader
	shapes      map[uuid.UUID]*Shape
	fonts       map[uuid.UUID]*Font

	presented   bool
	initialized bool
}

func New(cfg Config, presenter Presenter, journal *core.Journal) *Graphics {
	if journal == nil {
		journal = core.DiscardJournal()
	}
	return &Graphics{
		cfg:       cfg,
		presenter: presenter,
		journal:   journal.With("system", "graphics"),
		shaders:   map[uuid.UUID]*Shader{},
		shapes:    map[uuid.UUID]*Shape{},
		fonts:     map[uuid.UUID]*Font{},
	}
}

func (g *Graphics) Name() string {
	return "graphics"
}

func (g *Graphics) Initialize() error {
	if g.initialized {
		return core.ErrAlreadyInitialized
	}
	if err := g.presenter.Open(g.cfg); err != nil {
		return fmt.Errorf("failed to open presenter: %w", err)
	}
	w, h := g.presenter.Size()
	if w <= 0 || h <= 0 {
		w, h = g.cfg.Width, g.cfg.Height
	}
	g.framebuffer = image.NewRGBA(image.Rect(0, 0, w, h))
	g.raster = newRasterizer(w, h)
	g.initialized = true
	g.journal.Info("graphics initialized", "width", w, "height", h)
	return nil
}

// Update pumps window events, then presents the scene unless the application
// already presented it during the previous step.
func (g *Graphics) Update(delta time.Duration) error {
	if !g.initialized {
		return core.ErrNotInitialized
	}
	g.presenter.PumpEvents()
	if w, h := g.presenter.Size(); w > 0 && h > 0 && (w != g.framebuffer.Rect.Dx() || h != g.framebuffer.Rect.Dy()) {
		g.framebuffer = image.NewRGBA(image.Rect(0, 0, w, h))
		g.raster = newRasterizer(w, h)
		g.journal.Debug("framebuffer resized", "width", w, "height", h)
	}

	if g.presented {
		g.presented = false
		return nil
	}
	return g.present()
}

func (g *Graphics) Shutdown() error {
	if !g.initialized {
		return nil
	}
	g.initialized = false
	g.scene = nil
	clear(g.shapes)
	clear(g.shaders)
	clear(g.fonts)
	return g.presenter.Close()
}

// Present renders and presents the scene now. The following Update will not
// present again.
func (g *Graphics) Present() error {
	if !g.initialized {
		return core.ErrNotInitialized
	}
	g.presented = true
	return g.present()
}

func (g *Graphics) present() error {
	g.Render()
	return g.presenter.Present(g.framebuffer)
}

// Render draws the visible scene, in creation order, into the framebuffer.
func (g *Graphics) Render() *image.RGBA {
	g.raster.clear(g.framebuffer, g.cfg.Background)
	for _, d := range g.scene {
		if !d.visible() {
			continue
		}
		switch v := d.(type) {
		case *Instance:
			g.raster.instance(g.framebuffer, v)
		case *Text:
			g.raster.text(g.framebuffer, v)
		}
	}
	return g.framebuffer
}

// Framebuffer returns the last rendered frame.
func (g *Graphics) Framebuffer() *image.RGBA {
	return g.framebuffer
}

func (g *Graphics) Size() (int, int) {
	if g.framebuffer == nil {
		return g.cfg.Width, g.cfg.Height
	}
	return g.framebuffer.Rect.Dx(), g.framebuffer.Rect.Dy()
}

func (g *Graphics) SetBackground(c color.RGBA) {
	g.cfg.Background = c
}

// ShouldClose reports whether the user asked to close the window.
func (g *Graphics) ShouldClose() bool {
	return g.initialized && g.presenter.ShouldClose()
}

// Input returns the window's keyboard and mouse state, nil when headless.
func (g *Graphics) Input() *platform.Input {
	return g.presenter.Input()
}

func (g *Graphics) NewShader(fn ShaderFunc) *Shader {
	if fn == nil {
		fn = Solid
	}
	s := &Shader{ID: uuid.New(), fn: fn}
	g.shaders[s.ID] = s
	return s
}

// NewShape registers a polygon. A nil shader draws the plain color.
func (g *Graphics) NewShape(shader *Shader, vertices []f32.Vec2, c color.RGBA) (*Shape, error) {
	if len(vertices) < 3 {
		return nil, ErrDegenerateShape
	}
	s := &Shape{
		ID:       uuid.New(),
		Shader:   shader,
		Color:    c,
		vertices: slices.Clone(vertices),
	}
	g.shapes[s.ID] = s
	return s, nil
}

// NewInstance adds a visible instance of shape, with an identity transform,
// on top of the scene.
func (g *Graphics) NewInstance(shape *Shape) *Instance {
	inst := &Instance{ID: uuid.New(), Shape: shape, Transform: Identity(), Visible: true}
	g.scene = append(g.scene, inst)
	return inst
}

// NewText adds visible text on top of the scene.
func (g *Graphics) NewText(font *Font, text string, pos image.Point) *Text {
	t := &Text{ID: uuid.New(), Font: font, Text: text, Position: pos, Visible: true}
	g.scene = append(g.scene, t)
	return t
}

// LoadFont reads an AngelCode BMFont descriptor and its page images.
func (g *Graphics) LoadFont(path string) (*Font, error) {
	bf, err := bmfont.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	f := &Font{
		ID:         uuid.New(),
		Path:       path,
		lineHeight: bf.Descriptor.Common.LineHeight,
		font:       bf,
	}
	g.fonts[f.ID] = f
	g.journal.Debug("font loaded", "path", path, "face", bf.Descriptor.Info.Face)
	return f, nil
}

// Remove deletes the resource with the given id: an instance or text leaves
// the scene, a shape, shader or font is forgotten. It reports whether
// anything was removed.
func (g *Graphics) Remove(id uuid.UUID) bool {
	if i := slices.IndexFunc(g.scene, func(d drawable) bool { return d.id() == id }); i >= 0 {
		g.scene = slices.Delete(g.scene, i, i+1)
		return true
	}
	if _, ok := g.shapes[id]; ok {
		delete(g.shapes, id)
		return true
	}
	if _, ok := g.shaders[id]; ok {
		delete(g.shaders, id)
		return true
	}
	if _, ok := g.fonts[id]; ok {
		delete(g.fonts, id)
		return true
	}
	return false
}

// Len returns the number of instances and texts in the scene.
func (g *Graphics) Len() int {
	return len(g.scene)
}
