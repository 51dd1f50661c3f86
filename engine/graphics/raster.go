package graphics

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// shaderImage exposes a shader as an infinite source image, so the
// rasterizer can pull one color per covered pixel.
type shaderImage struct {
	fn   ShaderFunc
	base color.RGBA
}

func (s shaderImage) ColorModel() color.Model { return color.RGBAModel }

func (s shaderImage) Bounds() image.Rectangle {
	return image.Rect(-1<<30, -1<<30, 1<<30, 1<<30)
}

func (s shaderImage) At(x, y int) color.Color {
	return s.fn(float32(x)+0.5, float32(y)+0.5, s.base)
}

type rasterizer struct {
	z *vector.Rasterizer
}

func newRasterizer(w, h int) *rasterizer {
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Over
	return &rasterizer{z: z}
}

func (r *rasterizer) clear(dst *image.RGBA, c color.RGBA) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *rasterizer) instance(dst *image.RGBA, inst *Instance) {
	shape := inst.Shape
	if shape == nil || len(shape.vertices) < 3 {
		return
	}
	b := dst.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.z.DrawOp = draw.Over

	m := inst.Transform.Matrix()
	x, y := apply(m, shape.vertices[0])
	r.z.MoveTo(x, y)
	for _, v := range shape.vertices[1:] {
		x, y = apply(m, v)
		r.z.LineTo(x, y)
	}
	r.z.ClosePath()

	var src image.Image
	if shape.Shader == nil || shape.Shader.fn == nil {
		src = image.NewUniform(shape.Color)
	} else {
		src = shaderImage{fn: shape.Shader.fn, base: shape.Color}
	}
	r.z.Draw(dst, b, src, b.Min)
}

func (r *rasterizer) text(dst *image.RGBA, t *Text) {
	if t.Font == nil || t.Font.font == nil {
		return
	}
	for i, line := range strings.Split(t.Text, "\n") {
		pos := t.Position.Add(image.Pt(0, i*t.Font.lineHeight))
		t.Font.font.DrawText(dst, pos, line)
	}
}
