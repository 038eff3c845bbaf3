/*
DESCRIPTION
  adaptive.go provides a locally adaptive threshold. Each pixel is compared
  against a Gaussian weighted mean of its neighbourhood so that illumination
  gradients across a frame do not bias detection in one region.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subtract

import (
	"math"

	"github.com/ausocean/bgsub/frame"
)

// adaptiveOffset is subtracted from the neighbourhood mean; a pixel is
// foreground when diff - mean > -adaptiveOffset.
const adaptiveOffset = -4

// gaussAdaptive computes the neighbourhood mean with a separable Gaussian
// kernel and replicated borders.
type gaussAdaptive struct {
	kernel []float64
	tmp    []float64 // Horizontal pass output.
	mean   []byte
}

func newGaussAdaptive(block int) *gaussAdaptive {
	return &gaussAdaptive{kernel: gaussianKernel(block)}
}

func (a *gaussAdaptive) Name() string { return "Adaptive" }

func (a *gaussAdaptive) Apply(diff, dst *frame.Frame) {
	n := len(diff.Pix)
	if len(a.tmp) != n {
		a.tmp = make([]float64, n)
		a.mean = make([]byte, n)
	}
	w, h := diff.W, diff.H
	r := len(a.kernel) / 2

	for y := 0; y < h; y++ {
		row := diff.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var s float64
			for k, kv := range a.kernel {
				s += kv * float64(row[clampIndex(x+k-r, w)])
			}
			a.tmp[y*w+x] = s
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var s float64
			for k, kv := range a.kernel {
				s += kv * a.tmp[clampIndex(y+k-r, h)*w+x]
			}
			a.mean[y*w+x] = clamp(math.Round(s))
		}
	}

	for i, v := range diff.Pix {
		if int(v)-int(a.mean[i]) > -adaptiveOffset {
			dst.Pix[i] = Foreground
		} else {
			dst.Pix[i] = Background
		}
	}
}

// gaussianKernel returns a normalised 1D Gaussian kernel of size k, with the
// standard deviation derived from k as 0.3*((k-1)/2-1)+0.8.
func gaussianKernel(k int) []float64 {
	sigma := 0.3*(float64(k-1)*0.5-1) + 0.8
	c := float64(k-1) / 2
	kern := make([]float64, k)
	var sum float64
	for i := range kern {
		d := float64(i) - c
		kern[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kern[i]
	}
	for i := range kern {
		kern[i] /= sum
	}
	return kern
}

func clampIndex(i, n int) int {
	switch {
	case i < 0:
		return 0
	case i >= n:
		return n - 1
	}
	return i
}
