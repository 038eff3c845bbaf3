/*
DESCRIPTION
  threshold.go provides the strategies used to turn a difference frame into a
  binary foreground mask.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subtract

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/frame"
)

// Mask values.
const (
	Background = 0x00
	Foreground = 0xff
)

// Thresholder binarises a difference frame. Apply writes Foreground or
// Background for every pixel of diff into dst, which must share its geometry.
type Thresholder interface {
	Apply(diff, dst *frame.Frame)
	Name() string
}

// newThresholder returns the Thresholder selected by c.ThresholdType.
func newThresholder(c config.Config) (Thresholder, error) {
	switch c.ThresholdType {
	case config.ThresholdAdaptive:
		return newAdaptive(int(c.AdaptiveBlockSize)), nil
	case config.ThresholdManual:
		return manual(c.ManualThreshold), nil
	case config.ThresholdOtsu:
		return newOtsu(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownThreshold, c.ThresholdType)
	}
}

// manual is a fixed global cutoff; a pixel equal to the cutoff is background.
type manual uint8

func (m manual) Name() string { return "Manual" }

func (m manual) Apply(diff, dst *frame.Frame) {
	binarise(diff, dst, uint8(m))
}

// otsu picks a global cutoff per frame that maximises the between class
// variance of the difference histogram.
type otsu struct {
	levels []float64
	hist   []float64
}

func newOtsu() *otsu {
	o := &otsu{levels: make([]float64, 256), hist: make([]float64, 256)}
	for i := range o.levels {
		o.levels[i] = float64(i)
	}
	return o
}

func (o *otsu) Name() string { return "Otsu" }

func (o *otsu) Apply(diff, dst *frame.Frame) {
	binarise(diff, dst, o.threshold(diff))
}

// threshold returns the Otsu cutoff for f. If f cannot be split into two
// classes the highest level present is returned, giving an empty mask.
func (o *otsu) threshold(f *frame.Frame) uint8 {
	for i := range o.hist {
		o.hist[i] = 0
	}
	var top int
	for _, v := range f.Pix {
		o.hist[v]++
		if int(v) > top {
			top = int(v)
		}
	}

	total := floats.Sum(o.hist)
	best, bestVar := top, 0.0
	var wB float64
	for t := 0; t < top; t++ {
		wB += o.hist[t]
		wF := total - wB
		if wB == 0 || wF == 0 {
			continue
		}
		mB := stat.Mean(o.levels[:t+1], o.hist[:t+1])
		mF := stat.Mean(o.levels[t+1:], o.hist[t+1:])
		v := wB * wF * (mB - mF) * (mB - mF)
		if v > bestVar {
			best, bestVar = t, v
		}
	}
	return uint8(best)
}

// binarise marks pixels of src strictly greater than t as foreground.
func binarise(src, dst *frame.Frame, t uint8) {
	for i, v := range src.Pix {
		if v > t {
			dst.Pix[i] = Foreground
		} else {
			dst.Pix[i] = Background
		}
	}
}
