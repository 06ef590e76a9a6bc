package source

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadNormalizesB(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 192, 108, color.RGBA{R: 255, A: 255})
	b := writePNG(t, dir, "b.png", 120, 160, color.RGBA{B: 255, A: 255})

	pair, err := Load(a, b, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	w, h := pair.CanvasSize()
	if w != 192 || h != 108 {
		t.Errorf("Expected canvas 192x108, got %dx%d", w, h)
	}
	// round(120 * 108 / 160) = 81
	if got := pair.B.Bounds(); got.Dx() != 81 || got.Dy() != 108 {
		t.Errorf("Expected B scaled to 81x108, got %v", got)
	}
}

func TestLoadForcedHeight(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 320, 180, color.RGBA{G: 255, A: 255})
	b := writePNG(t, dir, "b.png", 40, 30, color.RGBA{G: 255, A: 255})

	pair, err := Load(a, b, Options{Height: 90})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := pair.A.Bounds(); got.Dx() != 160 || got.Dy() != 90 {
		t.Errorf("Expected A resized to 160x90, got %v", got)
	}
	if got := pair.B.Bounds(); got.Dx() != 120 || got.Dy() != 90 {
		t.Errorf("Expected B resized to 120x90, got %v", got)
	}
}

func TestLoadDecodeErrors(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png", 16, 9, color.RGBA{A: 255})
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.png")

	tests := []struct {
		name     string
		a, b     string
		wantPath string
	}{
		{"missing A", missing, good, missing},
		{"garbage B", good, garbage, garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.a, tt.b, Options{})
			var derr *ImageDecodeError
			if !errors.As(err, &derr) {
				t.Fatalf("Expected ImageDecodeError, got %v", err)
			}
			if derr.Path != tt.wantPath {
				t.Errorf("Expected path %s, got %s", tt.wantPath, derr.Path)
			}
		})
	}
}

func TestScaledWidth(t *testing.T) {
	if w := scaledWidth(1200, 1600, 1080); w != 810 {
		t.Errorf("Expected 810, got %d", w)
	}
	if w := scaledWidth(1, 1000, 10); w != 1 {
		t.Errorf("Expected width floor of 1, got %d", w)
	}
}
