package source

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/rianperez08/Magic-resize/internal/raster"
)

// ImageDecodeError reports a source file that could not be read as a raster.
type ImageDecodeError struct {
	Path string
	Err  error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("cannot decode image %s: %v", e.Path, e.Err)
}

func (e *ImageDecodeError) Unwrap() error {
	return e.Err
}

// Options control how source files are rasterized.
type Options struct {
	// Height forces the canvas height. Zero keeps A's native height.
	Height int
	// DPI and Page apply to PDF inputs only.
	DPI   int
	PageA int
	PageB int
}

// Pair holds the two normalized images. A has the canvas size; B has the
// canvas height and its own aspect ratio. Both are read-only after Load.
type Pair struct {
	A *image.RGBA
	B *image.RGBA
}

func (p *Pair) CanvasSize() (int, int) {
	b := p.A.Bounds()
	return b.Dx(), b.Dy()
}

// Load decodes both files and normalizes them to a shared canvas height.
func Load(pathA, pathB string, opts Options) (*Pair, error) {
	imgA, err := Decode(pathA, opts.PageA, opts.DPI)
	if err != nil {
		return nil, err
	}
	imgB, err := Decode(pathB, opts.PageB, opts.DPI)
	if err != nil {
		return nil, err
	}

	a := raster.ToRGBA(imgA)
	b := raster.ToRGBA(imgB)

	canvasW, canvasH := a.Bounds().Dx(), a.Bounds().Dy()
	if opts.Height > 0 && opts.Height != canvasH {
		canvasW = scaledWidth(canvasW, canvasH, opts.Height)
		canvasH = opts.Height
		a = raster.Resize(a, canvasW, canvasH)
	}

	bw, bh := b.Bounds().Dx(), b.Bounds().Dy()
	if bh != canvasH {
		b = raster.Resize(b, scaledWidth(bw, bh, canvasH), canvasH)
	}

	return &Pair{A: a, B: b}, nil
}

// scaledWidth keeps the aspect ratio of w×h at the new height.
func scaledWidth(w, h, height int) int {
	nw := int(math.Round(float64(w) * float64(height) / float64(h)))
	if nw < 1 {
		nw = 1
	}
	return nw
}

// Decode reads a raster image. PDF files are rendered at dpi, one page.
func Decode(path string, page, dpi int) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		img, err = renderPDFPage(path, page, dpi)
	} else {
		img, err = decodeFile(path)
	}
	if err != nil {
		return nil, &ImageDecodeError{Path: path, Err: err}
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ImageDecodeError{Path: path, Err: fmt.Errorf("empty image %v", b)}
	}
	return img, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w (supported: %s)", err, strings.Join(Formats, ", "))
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

func renderPDFPage(path string, page, dpi int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page >= doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range, document has %d pages", page, doc.NumPage())
	}
	if dpi <= 0 {
		dpi = 150
	}
	return doc.ImageDPI(page, float64(dpi))
}
