/*
DESCRIPTION
  frame.go provides Frame, the single channel intensity buffer that is passed
  through the background subtraction engine.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package frame provides a fixed size, single channel, 8 bit intensity frame
// and the pixel wise operations performed on it.
package frame

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Errors returned when constructing frames.
var (
	ErrBadSize   = errors.New("bad frame size")
	ErrBadLength = errors.New("pixel buffer length does not match frame size")
)

// Frame is a row major, one byte per pixel grayscale image.
type Frame struct {
	W, H int
	Pix  []byte
}

// New returns a zeroed frame of width w and height h.
func New(w, h int) *Frame {
	return &Frame{W: w, H: h, Pix: make([]byte, w*h)}
}

// FromBytes returns a frame holding a copy of p. The frame never aliases p, so
// the caller may reuse p once FromBytes returns.
func FromBytes(w, h int, p []byte) (*Frame, error) {
	err := Check(w, h, len(p))
	if err != nil {
		return nil, err
	}
	f := New(w, h)
	copy(f.Pix, p)
	return f, nil
}

// Check returns an error if a w x h frame cannot hold exactly n pixels. Sizes
// whose pixel count overflows an int are rejected with ErrBadSize.
func Check(w, h, n int) error {
	if w <= 0 || h <= 0 || w > math.MaxInt/h {
		return fmt.Errorf("%w: %dx%d", ErrBadSize, w, h)
	}
	if n != w*h {
		return fmt.Errorf("%w: have %d, want %d", ErrBadLength, n, w*h)
	}
	return nil
}

// FromGray returns a frame copied from img. The image need not start at the
// origin.
func FromGray(img *image.Gray) *Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy())
	for y := 0; y < f.H; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(f.Pix[y*f.W:(y+1)*f.W], img.Pix[i:i+f.W])
	}
	return f
}

// Gray returns an image.Gray sharing the frame's pixel buffer.
func (f *Frame) Gray() *image.Gray {
	return &image.Gray{Pix: f.Pix, Stride: f.W, Rect: image.Rect(0, 0, f.W, f.H)}
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	c := New(f.W, f.H)
	copy(c.Pix, f.Pix)
	return c
}

// CopyFrom copies the pixels of src into f. Both frames must share geometry.
func (f *Frame) CopyFrom(src *Frame) {
	copy(f.Pix, src.Pix)
}

// SameSize reports whether f and g have identical geometry.
func (f *Frame) SameSize(g *Frame) bool {
	return f.W == g.W && f.H == g.H
}

// At returns the intensity at column x, row y.
func (f *Frame) At(x, y int) uint8 { return f.Pix[y*f.W+x] }

// Set sets the intensity at column x, row y.
func (f *Frame) Set(x, y int, v uint8) { f.Pix[y*f.W+x] = v }

// Fill sets every pixel of f to v.
func (f *Frame) Fill(v uint8) {
	for i := range f.Pix {
		f.Pix[i] = v
	}
}

// FillRect sets every pixel inside r, clipped to the frame, to v.
func (f *Frame) FillRect(r image.Rectangle, v uint8) {
	r = r.Intersect(image.Rect(0, 0, f.W, f.H))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := f.Pix[y*f.W : (y+1)*f.W]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = v
		}
	}
}

// AbsDiff writes |a - b| per pixel into dst. All three frames must share
// geometry; dst may alias a or b.
func AbsDiff(dst, a, b *Frame) {
	for i, av := range a.Pix {
		bv := b.Pix[i]
		if av > bv {
			dst.Pix[i] = av - bv
		} else {
			dst.Pix[i] = bv - av
		}
	}
}
