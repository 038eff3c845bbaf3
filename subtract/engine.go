/*
DESCRIPTION
  engine.go provides Engine, which runs the per frame background subtraction
  pipeline: geometry check, background update, absolute difference and
  thresholding.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package subtract provides a background subtraction engine for motion
// detection on grayscale video frames.
package subtract

import (
	"errors"
	"fmt"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/frame"
)

// Errors returned by the engine.
var (
	ErrGeometry         = errors.New("frame geometry does not match engine")
	ErrConversion       = errors.New("could not convert input buffer")
	ErrUnknownEstimator = errors.New("unknown background estimator")
	ErrUnknownThreshold = errors.New("unknown threshold type")
	ErrNoLogger         = errors.New("no logger set in config")
)

// State is the lifecycle state of an Engine.
type State int

const (
	StateUninitialized State = iota // No frame applied yet.
	StateReady                      // Geometry fixed and background seeded.
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Engine holds one background estimator and one threshold strategy for its
// lifetime. An Engine is not safe for concurrent use; each video stream
// should own its own Engine.
type Engine struct {
	log   logging.Logger
	est   Estimator
	thr   Thresholder
	state State
	w, h  int

	bg   *frame.Frame // Copy of the last background used.
	diff *frame.Frame // Scratch difference frame.
}

// New returns a new Engine configured by c. The config is validated first,
// defaulting any bad fields.
func New(c config.Config) (*Engine, error) {
	if c.Logger == nil {
		return nil, ErrNoLogger
	}
	err := c.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	est, err := newEstimator(c)
	if err != nil {
		return nil, fmt.Errorf("could not create estimator: %w", err)
	}
	thr, err := newThresholder(c)
	if err != nil {
		return nil, fmt.Errorf("could not create thresholder: %w", err)
	}

	c.Logger.Info("created subtraction engine",
		"estimator", est.Name(),
		"threshold", thr.Name(),
		"history", c.HistoryLength,
		"manualThreshold", c.ManualThreshold,
	)
	return &Engine{log: c.Logger, est: est, thr: thr}, nil
}

// Apply ingests f and returns its foreground mask. The first call fixes the
// engine's geometry; a later frame of different size returns ErrGeometry
// without touching any engine state. f is not retained after Apply returns.
func (e *Engine) Apply(f *frame.Frame) (*frame.Frame, error) {
	err := frame.Check(f.W, f.H, len(f.Pix))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	if e.state == StateReady && (f.W != e.w || f.H != e.h) {
		return nil, fmt.Errorf("%w: got %dx%d, want %dx%d", ErrGeometry, f.W, f.H, e.w, e.h)
	}

	if e.state == StateUninitialized {
		e.w, e.h = f.W, f.H
		e.bg = frame.New(f.W, f.H)
		e.diff = frame.New(f.W, f.H)
	}

	bg := e.est.Update(f)
	e.bg.CopyFrom(bg)
	frame.AbsDiff(e.diff, f, e.bg)

	mask := frame.New(e.w, e.h)
	e.thr.Apply(e.diff, mask)

	if e.state == StateUninitialized {
		e.state = StateReady
		e.log.Debug("background seeded", "width", e.w, "height", e.h, "estimator", e.est.Name())
	}
	return mask, nil
}

// ApplyBytes is Apply for a raw row major buffer of w x h pixels. p is
// converted before any engine state is touched; if conversion fails the
// failure is logged and p is returned unchanged along with an error wrapping
// ErrConversion.
func (e *Engine) ApplyBytes(w, h int, p []byte) ([]byte, error) {
	f, err := frame.FromBytes(w, h, p)
	if err != nil {
		e.log.Warning("could not convert input buffer, passing through", "error", err.Error())
		return p, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	mask, err := e.Apply(f)
	if err != nil {
		return nil, err
	}
	return mask.Pix, nil
}

// Background returns a copy of the background used for the last applied
// frame, or nil if no frame has been applied.
func (e *Engine) Background() *frame.Frame {
	if e.bg == nil {
		return nil
	}
	return e.bg.Clone()
}

// State returns the engine's lifecycle state.
func (e *Engine) State() State { return e.state }

// Size returns the fixed frame geometry, or zeros before the first frame.
func (e *Engine) Size() (w, h int) { return e.w, e.h }

// Coverage returns the fraction of mask pixels marked as foreground.
func Coverage(mask *frame.Frame) float64 {
	if len(mask.Pix) == 0 {
		return 0
	}
	var n int
	for _, v := range mask.Pix {
		if v == Foreground {
			n++
		}
	}
	return float64(n) / float64(len(mask.Pix))
}
