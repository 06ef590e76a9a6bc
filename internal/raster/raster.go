// Package raster holds the pixel-buffer helpers shared by the loader and the
// compositor: conversion to opaque RGBA and resampling.
package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Box is an area-averaging kernel: every source pixel under the footprint of
// a destination pixel contributes with equal weight. The support is a hair
// over 0.5 so a destination pixel centered exactly between two source pixels
// takes both when enlarging instead of none.
var Box = &draw.Kernel{
	Support: 0.5 + 1e-6,
	At: func(t float64) float64 {
		return 1
	},
}

// ToRGBA returns img as an opaque *image.RGBA with bounds starting at (0,0).
// Transparent areas are flattened onto black.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == b.Dx()*4 && IsOpaque(rgba) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	Fill(dst, color.RGBA{A: 255})
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// IsOpaque reports whether every alpha byte of img is 255.
func IsOpaque(img *image.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 255 {
				return false
			}
		}
	}
	return true
}

// Fill paints every pixel of dst with c.
func Fill(dst *image.RGBA, c color.RGBA) {
	b := dst.Bounds()
	if b.Empty() {
		return
	}
	first := dst.Pix[dst.PixOffset(b.Min.X, b.Min.Y):dst.PixOffset(b.Max.X, b.Min.Y)]
	for i := 0; i < len(first); i += 4 {
		first[0+i], first[1+i], first[2+i], first[3+i] = c.R, c.G, c.B, c.A
	}
	for y := b.Min.Y + 1; y < b.Max.Y; y++ {
		copy(dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X, y)], first)
	}
}

// ScalerFor picks the kernel for scaling an image of size from to size to:
// Box when the area shrinks, bilinear otherwise.
func ScalerFor(from, to image.Point) draw.Scaler {
	if to.X*to.Y < from.X*from.Y {
		return Box
	}
	return draw.BiLinear
}

// Resample scales src to exactly fill dst with s. Equal sizes are copied
// verbatim, which is what both kernels produce at scale 1.
func Resample(dst *image.RGBA, src *image.RGBA, s draw.Scaler) {
	db, sb := dst.Bounds(), src.Bounds()
	if db.Size() == sb.Size() {
		draw.Copy(dst, db.Min, src, sb, draw.Src, nil)
		return
	}
	s.Scale(dst, db, src, sb, draw.Src, nil)
}

// Resize returns a new w×h image resampled from src with the kernel
// ScalerFor picks.
func Resize(src *image.RGBA, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	Resample(dst, src, ScalerFor(src.Bounds().Size(), dst.Bounds().Size()))
	return dst
}
