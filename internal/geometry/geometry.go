// Package geometry computes the shrinking canvas rectangle for each point of
// the resize animation.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// TargetAspect is the aspect ratio the canvas rectangle ends at.
const TargetAspect = 4.0 / 3.0

// GeometryError reports a target width outside (0, canvas width].
type GeometryError struct {
	CanvasWidth int
	TargetWidth int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("invalid target width %d for canvas width %d", e.TargetWidth, e.CanvasWidth)
}

// TargetWidth returns round(height*4/3) clamped to the canvas width.
func TargetWidth(canvasWidth, canvasHeight int) (int, error) {
	w := int(math.Round(float64(canvasHeight) * TargetAspect))
	if w > canvasWidth {
		w = canvasWidth
	}
	if w <= 0 {
		return 0, &GeometryError{CanvasWidth: canvasWidth, TargetWidth: w}
	}
	return w, nil
}

// RectWidth interpolates linearly between the canvas width at t=0 and the
// target width at t=1. Values of t outside [0,1] are clamped.
func RectWidth(t float64, canvasWidth, targetWidth int) int {
	t = clamp01(t)
	return int(math.Round(lerp(float64(canvasWidth), float64(targetWidth), t)))
}

// Sample returns the rectangle content is drawn inside at time t. The
// rectangle always spans the full canvas height and is centered horizontally.
func Sample(t float64, canvasWidth, canvasHeight, targetWidth int) (image.Rectangle, error) {
	if targetWidth <= 0 || targetWidth > canvasWidth {
		return image.Rectangle{}, &GeometryError{CanvasWidth: canvasWidth, TargetWidth: targetWidth}
	}

	w := RectWidth(t, canvasWidth, targetWidth)
	x0 := canvasWidth/2 - w/2
	x1 := x0 + w

	x0 = clampInt(x0, 0, canvasWidth)
	x1 = clampInt(x1, 0, canvasWidth)

	return image.Rect(x0, 0, x1, canvasHeight), nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(t float64) float64 {
	if t < 0 || math.IsNaN(t) {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
