/*
DESCRIPTION
  background.go provides the background estimators used by the subtraction
  engine: a bare history window, windowed median and mean statistics, and an
  exponential moving average.

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
	"image"
	"math"

	"github.com/disintegration/gift"

	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/frame"
)

// Weights used when blending a window statistic with the current frame.
const (
	blendCurrent = 0.2
	blendWindow  = 0.8
)

// Estimator maintains a background model. Update ingests f and returns the
// background f should be compared against. The returned frame belongs to the
// Estimator, or is f itself, and is only valid until the next Update.
type Estimator interface {
	Update(f *frame.Frame) *frame.Frame
	Name() string
}

// newEstimator returns the Estimator selected by c.Estimator.
func newEstimator(c config.Config) (Estimator, error) {
	switch c.Estimator {
	case config.EstimatorWindowOnly:
		h, err := NewHistory(int(c.HistoryLength))
		if err != nil {
			return nil, err
		}
		return &windowOnly{hist: h, samp: sampler{every: c.HistorySample}}, nil
	case config.EstimatorMedianOfWindow:
		return newWindowStat("MedianOfWindow", median, c)
	case config.EstimatorMeanOfWindow:
		return newWindowStat("MeanOfWindow", mean, c)
	case config.EstimatorExponentialAverage:
		return &expAverage{alpha: c.Alpha}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEstimator, c.Estimator)
	}
}

// sampler decides which ingested frames are pushed into history. The first
// frame is always taken.
type sampler struct {
	every uint
	t     uint
}

func (s *sampler) take() bool {
	if s.every <= 1 {
		return true
	}
	ok := s.t == 0
	s.t = (s.t + 1) % s.every
	return ok
}

// windowOnly keeps a history but has no estimate; the incoming frame stands
// in for the background, so every difference it produces is zero.
type windowOnly struct {
	hist *History
	samp sampler
}

func (w *windowOnly) Update(f *frame.Frame) *frame.Frame {
	if w.samp.take() {
		w.hist.Push(f)
	}
	return f
}

func (w *windowOnly) Name() string { return "WindowOnly" }

// windowStat reduces the history to one frame using a per pixel statistic.
type windowStat struct {
	name   string
	hist   *History
	samp   sampler
	stat   func(v []byte) byte
	blend  bool
	smooth *gift.GIFT // Nil when no smoothing is applied.

	est  *frame.Frame // Statistic over the history.
	bg   *frame.Frame // Blended background, when blend is set.
	vals []byte       // Scratch space for one pixel across the history.
}

func newWindowStat(name string, stat func([]byte) byte, c config.Config) (*windowStat, error) {
	h, err := NewHistory(int(c.HistoryLength))
	if err != nil {
		return nil, err
	}
	w := &windowStat{
		name:  name,
		hist:  h,
		samp:  sampler{every: c.HistorySample},
		stat:  stat,
		blend: c.MedianBlend,
		vals:  make([]byte, c.HistoryLength),
	}
	if c.MedianKernel > 1 {
		w.smooth = gift.New(gift.Median(int(c.MedianKernel), false))
	}
	return w, nil
}

func (w *windowStat) Name() string { return w.name }

func (w *windowStat) Update(f *frame.Frame) *frame.Frame {
	if w.samp.take() {
		w.hist.Push(f)
		w.compute()
	}
	if !w.blend {
		return w.est
	}
	if w.bg == nil {
		w.bg = frame.New(f.W, f.H)
	}
	for i, v := range f.Pix {
		w.bg.Pix[i] = clamp(math.Round(blendCurrent*float64(v) + blendWindow*float64(w.est.Pix[i])))
	}
	return w.bg
}

// compute recalculates the statistic over the whole history.
func (w *windowStat) compute() {
	frames := w.hist.Frames()
	first := frames[0]
	if w.est == nil || !w.est.SameSize(first) {
		w.est = frame.New(first.W, first.H)
	}
	vals := w.vals[:len(frames)]
	for i := range w.est.Pix {
		for j, f := range frames {
			vals[j] = f.Pix[i]
		}
		w.est.Pix[i] = w.stat(vals)
	}

	if w.smooth == nil {
		return
	}
	src := w.est.Gray()
	dst := image.NewGray(w.smooth.Bounds(src.Bounds()))
	w.smooth.Draw(dst, src)
	w.est = frame.FromGray(dst)
}

// median returns the median of v, reordering v in the process. For an even
// count the two middle values are averaged, truncating.
func median(v []byte) byte {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j] < v[j-1]; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
	m := len(v) / 2
	if len(v)%2 == 1 {
		return v[m]
	}
	return byte((uint(v[m-1]) + uint(v[m])) / 2)
}

// mean returns the truncated integer mean of v.
func mean(v []byte) byte {
	var sum uint
	for _, b := range v {
		sum += uint(b)
	}
	return byte(sum / uint(len(v)))
}

// expAverage is an exponentially weighted running average. The first frame
// seeds the background exactly; afterwards bg = alpha*cur + (1-alpha)*bg.
// The average is accumulated at full precision so that slow drifts are not
// lost to rounding.
type expAverage struct {
	alpha float64
	acc   []float64
	bg    *frame.Frame
}

func (e *expAverage) Name() string { return "ExponentialAverage" }

func (e *expAverage) Update(f *frame.Frame) *frame.Frame {
	if e.acc == nil {
		e.acc = make([]float64, len(f.Pix))
		for i, v := range f.Pix {
			e.acc[i] = float64(v)
		}
		e.bg = f.Clone()
		return e.bg
	}
	for i, v := range f.Pix {
		e.acc[i] = e.alpha*float64(v) + (1-e.alpha)*e.acc[i]
		e.bg.Pix[i] = clamp(math.Round(e.acc[i]))
	}
	return e.bg
}

func clamp(v float64) byte {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}
