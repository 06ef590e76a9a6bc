// Package compositor paints single frames of the resize animation: black
// bars, the crossfaded content inside the canvas rectangle, and its border.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/rianperez08/Magic-resize/internal/raster"
	"github.com/rianperez08/Magic-resize/internal/system"
)

var (
	Black = color.RGBA{A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Compositor is safe for concurrent use: A and B are never written and frame
// buffers come from a synchronized pool.
type Compositor struct {
	A, B   *image.RGBA
	Width  int
	Height int
	Border int

	pool *system.FramePool
}

func New(a, b *image.RGBA, border int) *Compositor {
	return &Compositor{
		A:      a,
		B:      b,
		Width:  a.Bounds().Dx(),
		Height: a.Bounds().Dy(),
		Border: border,
		pool:   system.NewFramePool(),
	}
}

// Compose renders the frame for rectangle rect at blend factor t. The
// returned buffer should be handed back with Release once it is written.
func (c *Compositor) Compose(rect image.Rectangle, t float64) (*image.RGBA, error) {
	canvas := image.Rect(0, 0, c.Width, c.Height)
	if !rect.In(canvas) || rect.Empty() {
		return nil, fmt.Errorf("rectangle %v outside canvas %v", rect, canvas)
	}

	frame := c.pool.Get(c.Width, c.Height)
	raster.Fill(frame, Black)

	w, h := rect.Dx(), rect.Dy()
	a := c.pool.Get(w, h)
	b := c.pool.Get(w, h)
	defer c.pool.Put(a)
	defer c.pool.Put(b)

	// one kernel per frame, chosen from A's scaling, for both images
	scaler := raster.ScalerFor(c.A.Bounds().Size(), rect.Size())
	raster.Resample(a, c.A, scaler)
	raster.Resample(b, c.B, scaler)

	Blend(frame, rect.Min, a, b, t)
	StrokeBorder(frame, rect, c.Border, White)

	return frame, nil
}

// Release returns a frame produced by Compose to the pool.
func (c *Compositor) Release(frame *image.RGBA) {
	c.pool.Put(frame)
}

// Blend writes round((1-t)*a + t*b) per color channel into dst at offset.
// a and b must have the same size. Alpha is always written opaque.
func Blend(dst *image.RGBA, offset image.Point, a, b *image.RGBA, t float64) {
	if a.Bounds().Size() != b.Bounds().Size() {
		panic(fmt.Sprintf("compositor: blend size mismatch %v vs %v", a.Bounds(), b.Bounds()))
	}

	// (1-t)*x and t*x only ever take 256 distinct values per frame
	var wa, wb [256]float64
	for i := range wa {
		wa[i] = (1 - t) * float64(i)
		wb[i] = t * float64(i)
	}

	size := a.Bounds().Size()
	for y := 0; y < size.Y; y++ {
		ra := a.Pix[a.PixOffset(a.Rect.Min.X, a.Rect.Min.Y+y):][:size.X*4]
		rb := b.Pix[b.PixOffset(b.Rect.Min.X, b.Rect.Min.Y+y):][:size.X*4]
		out := dst.Pix[dst.PixOffset(offset.X, offset.Y+y):][:size.X*4]
		for i := 0; i < len(out); i += 4 {
			out[i+0] = uint8(math.Round(wa[ra[i+0]] + wb[rb[i+0]]))
			out[i+1] = uint8(math.Round(wa[ra[i+1]] + wb[rb[i+1]]))
			out[i+2] = uint8(math.Round(wa[ra[i+2]] + wb[rb[i+2]]))
			out[i+3] = 255
		}
	}
}

// StrokeBorder draws a ring of the given thickness just inside r.
func StrokeBorder(dst *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	if thickness <= 0 {
		return
	}
	r = r.Intersect(dst.Bounds())
	tx := min(thickness, r.Dx())
	ty := min(thickness, r.Dy())

	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+ty), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-ty, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+tx, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-tx, r.Min.Y, r.Max.X, r.Max.Y), c)
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	if r.Empty() {
		return
	}
	raster.Fill(dst.SubImage(r).(*image.RGBA), c)
}
