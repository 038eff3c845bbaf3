/*
DESCRIPTION
  plot.go records the foreground coverage of each mask and plots it over
  time.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Maximum number of points kept; older points are discarded.
const maxCoveragePoints = 100000

// coverage holds the foreground fraction of each mask, indexed by frame.
type coverage struct {
	mu  sync.Mutex
	n   int
	pts plotter.XYs
}

// add records the coverage c of the next frame. It is safe for concurrent use.
func (c *coverage) add(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pts) == maxCoveragePoints {
		c.pts = append(c.pts[:0], c.pts[1:]...)
	}
	c.pts = append(c.pts, plotter.XY{X: float64(c.n), Y: v})
	c.n++
}

// save writes a line plot of the recorded coverage to path. The image format
// is taken from the path extension.
func (c *coverage) save(path string) error {
	c.mu.Lock()
	pts := append(plotter.XYs(nil), c.pts...)
	c.mu.Unlock()
	if len(pts) == 0 {
		return errors.New("no coverage recorded")
	}

	p := plot.New()
	p.Title.Text = "Foreground coverage"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Fraction"
	p.Y.Min = 0
	p.Y.Max = 1

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("could not create line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)

	err = p.Save(10*vg.Inch, 4*vg.Inch, path)
	if err != nil {
		return fmt.Errorf("could not save plot: %w", err)
	}
	return nil
}
