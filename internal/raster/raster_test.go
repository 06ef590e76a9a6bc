package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/draw"
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 5), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func TestResampleIdentityIsExact(t *testing.T) {
	src := gradient(40, 30)
	dst := Resize(src, 40, 30)
	if !bytes.Equal(src.Pix, dst.Pix) {
		t.Error("Identity resample changed pixels")
	}
}

func TestResampleBoxAveragesBlocks(t *testing.T) {
	// 2x2 checker of solid quadrants, shrunk by half: each output pixel
	// comes from a single uniform 2x2 block
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			v := uint8(0)
			if x >= 2 {
				v = 200
			}
			src.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	dst := Resize(src, 2, 1)
	left, right := dst.RGBAAt(0, 0), dst.RGBAAt(1, 0)
	if left.R > 1 {
		t.Errorf("Expected left pixel ~0, got %v", left)
	}
	if right.R < 199 {
		t.Errorf("Expected right pixel ~200, got %v", right)
	}
}

func TestResampleUniformStaysUniform(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 37, 20))
	Fill(src, color.RGBA{R: 90, G: 120, B: 30, A: 255})

	for _, w := range []int{11, 37, 80} {
		dst := Resize(src, w, 20)
		for x := 0; x < w; x++ {
			c := dst.RGBAAt(x, 10)
			if absDiff(c.R, 90) > 1 || absDiff(c.G, 120) > 1 || absDiff(c.B, 30) > 1 {
				t.Fatalf("width %d: pixel %d drifted to %v", w, x, c)
			}
		}
	}
}

func TestScalerFor(t *testing.T) {
	tests := []struct {
		name     string
		from, to image.Point
		want     draw.Scaler
	}{
		{"shrink", image.Pt(64, 36), image.Pt(56, 36), Box},
		{"grow", image.Pt(27, 36), image.Pt(56, 36), draw.BiLinear},
		{"same size", image.Pt(40, 30), image.Pt(40, 30), draw.BiLinear},
	}
	for _, tt := range tests {
		if got := ScalerFor(tt.from, tt.to); got != tt.want {
			t.Errorf("%s: unexpected scaler %T", tt.name, got)
		}
	}
}

func TestResampleIdentityIgnoresKernel(t *testing.T) {
	src := gradient(23, 17)
	for _, s := range []draw.Scaler{Box, draw.BiLinear} {
		dst := image.NewRGBA(src.Bounds())
		Resample(dst, src, s)
		if !bytes.Equal(src.Pix, dst.Pix) {
			t.Errorf("Identity resample with %T changed pixels", s)
		}
	}
}

func TestResampleBoxEnlargeHasNoHoles(t *testing.T) {
	// 4 -> 5 puts destination pixel 2 exactly between source pixels 1 and 2
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	Fill(src, color.RGBA{R: 90, G: 120, B: 30, A: 255})

	dst := image.NewRGBA(image.Rect(0, 0, 5, 3))
	Resample(dst, src, Box)
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			c := dst.RGBAAt(x, y)
			if absDiff(c.R, 90) > 1 || absDiff(c.G, 120) > 1 || absDiff(c.B, 30) > 1 || c.A != 255 {
				t.Fatalf("Pixel (%d,%d) = %v, expected the fill color", x, y, c)
			}
		}
	}
}

func TestToRGBAFlattensAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 255, A: 0})
	src.SetNRGBA(6, 5, color.NRGBA{G: 255, A: 255})

	dst := ToRGBA(src)
	if dst.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("Expected rebased bounds, got %v", dst.Bounds())
	}
	if c := dst.RGBAAt(0, 0); c != (color.RGBA{A: 255}) {
		t.Errorf("Transparent pixel should flatten to black, got %v", c)
	}
	if c := dst.RGBAAt(1, 0); c != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("Opaque pixel changed: %v", c)
	}
	if !IsOpaque(dst) {
		t.Error("Result should be opaque")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
