/*
DESCRIPTION
  A filter that replaces each JPEG frame with its foreground mask, as
  produced by the background subtraction engine.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/bgsub/codec/jpeg"
	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/subtract"
)

// ErrInvalidQuality is returned by WithQuality for values outside 1 to 100.
var ErrInvalidQuality = errors.New("invalid JPEG quality")

// Subtractor is a filter that decodes each JPEG write, runs it through a
// subtraction engine and writes the JPEG encoded mask to its destination.
// Writes that cannot be decoded are passed through unchanged.
type Subtractor struct {
	debugging debugWindows
	dst       io.WriteCloser
	log       logging.Logger
	engine    *subtract.Engine
	quality   int
	coverage  func(float64)

	mu sync.Mutex
}

// WithQuality sets the JPEG quality of encoded masks.
func WithQuality(q int) func(*Subtractor) error {
	return func(s *Subtractor) error {
		if q < 1 || q > 100 {
			return fmt.Errorf("%w: %d", ErrInvalidQuality, q)
		}
		s.quality = q
		return nil
	}
}

// WithCoverage registers fn to be called with the fraction of foreground
// pixels in each mask.
func WithCoverage(fn func(float64)) func(*Subtractor) error {
	return func(s *Subtractor) error {
		s.coverage = fn
		return nil
	}
}

// NewSubtractor returns a new Subtractor writing masks to dst.
func NewSubtractor(dst io.WriteCloser, c config.Config, options ...func(*Subtractor) error) (*Subtractor, error) {
	e, err := subtract.New(c)
	if err != nil {
		return nil, fmt.Errorf("could not create engine: %w", err)
	}
	s := &Subtractor{
		debugging: newWindows("SUBTRACT"),
		dst:       dst,
		log:       c.Logger,
		engine:    e,
		quality:   jpeg.DefaultQuality,
	}
	for _, option := range options {
		err := option(s)
		if err != nil {
			s.debugging.close()
			return nil, err
		}
	}
	return s, nil
}

// Write implements io.Writer. A mismatch in frame geometry is returned as an
// error, after which the engine remains usable with frames of its original
// size.
func (s *Subtractor) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := jpeg.Decode(p)
	if err != nil {
		s.log.Warning("could not decode frame, passing through", "error", err.Error())
		return s.dst.Write(p)
	}

	mask, err := s.engine.Apply(f)
	if err != nil {
		return 0, fmt.Errorf("could not subtract background: %w", err)
	}

	cov := subtract.Coverage(mask)
	if s.coverage != nil {
		s.coverage(cov)
	}
	s.debugging.show(f, mask, cov)

	b, err := jpeg.Encode(mask, s.quality)
	if err != nil {
		return 0, fmt.Errorf("could not encode mask: %w", err)
	}
	_, err = s.dst.Write(b)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer. It does not close the destination.
func (s *Subtractor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debugging.close()
}

// Engine returns the subtraction engine used by s.
func (s *Subtractor) Engine() *subtract.Engine { return s.engine }
