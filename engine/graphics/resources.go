package graphics

import (
	"image"
	"image/color"
	stdmath "math"

	"github.com/fzipp/bmfont"
	"github.com/google/uuid"
	"golang.org/x/image/math/f32"
)

// ShaderFunc computes the color of the pixel centered at (x, y), in
// framebuffer coordinates, for a shape whose own color is base.
type ShaderFunc func(x, y float32, base color.RGBA) color.RGBA

type Shader struct {
	ID uuid.UUID
	fn ShaderFunc
}

// Solid is the shader used when none is given: it returns the shape color.
func Solid(_, _ float32, base color.RGBA) color.RGBA {
	return base
}

// Shape is a closed polygon in model space.
type Shape struct {
	ID       uuid.UUID
	Shader   *Shader
	Color    color.RGBA
	vertices []f32.Vec2
}

func (s *Shape) Vertices() []f32.Vec2 {
	return s.vertices
}

// Rect returns the vertices of a w x h rectangle centered on the origin.
func Rect(w, h float32) []f32.Vec2 {
	return []f32.Vec2{{-w / 2, -h / 2}, {w / 2, -h / 2}, {w / 2, h / 2}, {-w / 2, h / 2}}
}

// Polygon returns the vertices of a regular polygon of the given radius.
func Polygon(sides int, radius float32) []f32.Vec2 {
	out := make([]f32.Vec2, sides)
	for i := range out {
		a := 2 * stdmath.Pi * float64(i) / float64(sides)
		out[i] = f32.Vec2{radius * float32(stdmath.Cos(a)), radius * float32(stdmath.Sin(a))}
	}
	return out
}

// Transform places an instance: scale first, then rotation in radians, then
// translation.
type Transform struct {
	Position f32.Vec2
	Rotation float32
	Scale    f32.Vec2
}

func Identity() Transform {
	return Transform{Scale: f32.Vec2{1, 1}}
}

func (t Transform) Matrix() f32.Aff3 {
	sin, cos := stdmath.Sincos(float64(t.Rotation))
	s, c := float32(sin), float32(cos)
	return f32.Aff3{
		t.Scale[0] * c, -t.Scale[1] * s, t.Position[0],
		t.Scale[0] * s, t.Scale[1] * c, t.Position[1],
	}
}

func apply(m f32.Aff3, v f32.Vec2) (float32, float32) {
	return m[0]*v[0] + m[1]*v[1] + m[2], m[3]*v[0] + m[4]*v[1] + m[5]
}

// Instance is one placement of a shape in the scene.
type Instance struct {
	ID        uuid.UUID
	Shape     *Shape
	Transform Transform
	Visible   bool
}

type Font struct {
	ID         uuid.UUID
	Path       string
	lineHeight int
	font       *bmfont.BitmapFont
}

func (f *Font) LineHeight() int {
	return f.lineHeight
}

// Text is a string drawn with a bitmap font, Position being its top left
// corner.
type Text struct {
	ID       uuid.UUID
	Font     *Font
	Text     string
	Position image.Point
	Visible  bool
}
