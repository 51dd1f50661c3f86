package graphics

import (
	"errors"
	"image/color"
	stdmath "math"
	"testing"

	"golang.org/x/image/math/f32"

	"github.com/spaghettifunk/cala/engine/core"
)

var (
	black = color.RGBA{A: 255}
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)

func newTestGraphics(t *testing.T, w, h int) (*Graphics, *HeadlessPresenter) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = w, h
	cfg.Background = black
	p := NewHeadlessPresenter()
	g := New(cfg, p, nil)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { g.Shutdown() })
	return g, p
}

func TestGraphicsLifecycle(t *testing.T) {
	g := New(DefaultConfig(), NewHeadlessPresenter(), nil)
	if err := g.Update(0); !errors.Is(err, core.ErrNotInitialized) {
		t.Fatalf("Update before Initialize error = %v, want ErrNotInitialized", err)
	}
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if err := g.Initialize(); !errors.Is(err, core.ErrAlreadyInitialized) {
		t.Fatalf("second Initialize error = %v, want ErrAlreadyInitialized", err)
	}
	if err := g.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := g.Shutdown(); err != nil {
		t.Fatalf("second Shutdown() error = %v", err)
	}
}

func TestUpdatePresentsBackground(t *testing.T) {
	g, p := newTestGraphics(t, 8, 6)
	if err := g.Update(0); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if p.Presented() != 1 {
		t.Fatalf("Presented() = %d, want 1", p.Presented())
	}
	frame := p.Frame()
	if got := frame.Bounds().Size(); got.X != 8 || got.Y != 6 {
		t.Fatalf("frame size = %v, want 8x6", got)
	}
	if got := frame.RGBAAt(3, 3); got != black {
		t.Errorf("pixel = %v, want %v", got, black)
	}

	g.SetBackground(blue)
	g.Update(0)
	if got := p.Frame().RGBAAt(0, 0); got != blue {
		t.Errorf("pixel after SetBackground = %v, want %v", got, blue)
	}
	if got := frame.RGBAAt(0, 0); got != black {
		t.Errorf("earlier frame changed to %v by a later Present", got)
	}
}

func TestInstanceIsRasterized(t *testing.T) {
	g, p := newTestGraphics(t, 20, 20)
	shape, err := g.NewShape(nil, Rect(10, 10), red)
	if err != nil {
		t.Fatalf("NewShape() error = %v", err)
	}
	inst := g.NewInstance(shape)
	inst.Transform.Position = f32.Vec2{10, 10}

	g.Update(0)
	frame := p.Frame()
	if got := frame.RGBAAt(10, 10); got != red {
		t.Errorf("center pixel = %v, want %v", got, red)
	}
	if got := frame.RGBAAt(1, 1); got != black {
		t.Errorf("corner pixel = %v, want %v", got, black)
	}

	inst.Visible = false
	g.Update(0)
	if got := p.Frame().RGBAAt(10, 10); got != black {
		t.Errorf("hidden instance pixel = %v, want %v", got, black)
	}
}

func TestShaderColorsShape(t *testing.T) {
	g, p := newTestGraphics(t, 20, 20)
	left := g.NewShader(func(x, _ float32, base color.RGBA) color.RGBA {
		if x < 10 {
			return blue
		}
		return base
	})
	shape, _ := g.NewShape(left, Rect(20, 20), red)
	g.NewInstance(shape).Transform.Position = f32.Vec2{10, 10}

	g.Update(0)
	frame := p.Frame()
	if got := frame.RGBAAt(4, 10); got != blue {
		t.Errorf("left pixel = %v, want %v", got, blue)
	}
	if got := frame.RGBAAt(15, 10); got != red {
		t.Errorf("right pixel = %v, want %v", got, red)
	}
}

func TestSceneDrawsInCreationOrder(t *testing.T) {
	g, p := newTestGraphics(t, 10, 10)
	under, _ := g.NewShape(nil, Rect(10, 10), red)
	over, _ := g.NewShape(nil, Rect(10, 10), blue)
	g.NewInstance(under).Transform.Position = f32.Vec2{5, 5}
	top := g.NewInstance(over)
	top.Transform.Position = f32.Vec2{5, 5}

	g.Update(0)
	if got := p.Frame().RGBAAt(5, 5); got != blue {
		t.Fatalf("pixel = %v, want later instance %v", got, blue)
	}

	if !g.Remove(top.ID) {
		t.Fatal("Remove() = false, want true")
	}
	if g.Remove(top.ID) {
		t.Fatal("second Remove() = true, want false")
	}
	g.Update(0)
	if got := p.Frame().RGBAAt(5, 5); got != red {
		t.Fatalf("pixel after remove = %v, want %v", got, red)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestNewShapeRejectsDegenerate(t *testing.T) {
	g, _ := newTestGraphics(t, 4, 4)
	if _, err := g.NewShape(nil, []f32.Vec2{{0, 0}, {1, 1}}, red); !errors.Is(err, ErrDegenerateShape) {
		t.Fatalf("NewShape() error = %v, want ErrDegenerateShape", err)
	}
}

func TestExplicitPresentSkipsNextUpdate(t *testing.T) {
	g, p := newTestGraphics(t, 4, 4)
	if err := g.Present(); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	g.Update(0)
	if p.Presented() != 1 {
		t.Fatalf("Presented() = %d, want 1", p.Presented())
	}
	g.Update(0)
	if p.Presented() != 2 {
		t.Fatalf("Presented() = %d, want 2", p.Presented())
	}
}

func TestShouldClose(t *testing.T) {
	g, p := newTestGraphics(t, 4, 4)
	p.CloseAfter(2)
	g.Update(0)
	if g.ShouldClose() {
		t.Fatal("ShouldClose() = true after one frame")
	}
	g.Update(0)
	if !g.ShouldClose() {
		t.Fatal("ShouldClose() = false after two frames")
	}
	if g.Input() != nil {
		t.Error("Input() != nil for headless presenter")
	}
}

func TestTransformMatrix(t *testing.T) {
	tr := Transform{Position: f32.Vec2{3, 4}, Rotation: stdmath.Pi / 2, Scale: f32.Vec2{2, 2}}
	x, y := apply(tr.Matrix(), f32.Vec2{1, 0})
	if stdmath.Abs(float64(x-3)) > 1e-5 || stdmath.Abs(float64(y-6)) > 1e-5 {
		t.Fatalf("apply() = (%v, %v), want (3, 6)", x, y)
	}

	x, y = apply(Identity().Matrix(), f32.Vec2{5, -2})
	if x != 5 || y != -2 {
		t.Fatalf("identity apply() = (%v, %v), want (5, -2)", x, y)
	}
}

func TestPolygon(t *testing.T) {
	v := Polygon(4, 2)
	if len(v) != 4 {
		t.Fatalf("len = %d, want 4", len(v))
	}
	if stdmath.Abs(float64(v[0][0]-2)) > 1e-6 || stdmath.Abs(float64(v[0][1])) > 1e-6 {
		t.Errorf("v[0] = %v, want (2, 0)", v[0])
	}
}
