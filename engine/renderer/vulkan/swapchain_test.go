package vulkan

import (
	"image"
	"image/color"
	"testing"

	vk "github.com/goki/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	rgba := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	bgra := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR16g16b16a16Sfloat, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name     string
		formats  []vk.SurfaceFormat
		want     vk.Format
		wantBGRA bool
	}{
		{"rgba preferred", []vk.SurfaceFormat{bgra, rgba}, vk.FormatR8g8b8a8Unorm, false},
		{"bgra fallback", []vk.SurfaceFormat{other, bgra}, vk.FormatB8g8r8a8Unorm, true},
		{"first otherwise", []vk.SurfaceFormat{other}, vk.FormatR16g16b16a16Sfloat, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, swizzle := chooseSurfaceFormat(tt.formats)
			if got.Format != tt.want || swizzle != tt.wantBGRA {
				t.Errorf("chooseSurfaceFormat() = %v/%v, want %v/%v", got.Format, swizzle, tt.want, tt.wantBGRA)
			}
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}
	if got := choosePresentMode(modes, true); got != vk.PresentModeFifo {
		t.Errorf("vsync mode = %v", got)
	}
	if got := choosePresentMode(modes, false); got != vk.PresentModeMailbox {
		t.Errorf("no vsync mode = %v", got)
	}
	if got := choosePresentMode([]vk.PresentMode{vk.PresentModeFifo}, false); got != vk.PresentModeFifo {
		t.Errorf("fallback mode = %v", got)
	}
}

func TestCopyFrame(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 4})
	src.SetRGBA(2, 0, color.RGBA{R: 9, A: 255})

	// destination is narrower but taller than the frame
	dst := make([]byte, 2*2*4)
	for i := range dst {
		dst[i] = 0xff
	}
	CopyFrame(dst, 2, 2, src, false)
	want := []byte{1, 2, 3, 4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("rgba copy = %v, want %v", dst, want)
		}
	}

	CopyFrame(dst, 2, 2, src, true)
	if dst[0] != 3 || dst[1] != 2 || dst[2] != 1 || dst[3] != 4 {
		t.Errorf("bgra copy = %v", dst[:4])
	}
}
