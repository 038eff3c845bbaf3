//go:build !debug || !withcv
// +build !debug !withcv

/*
DESCRIPTION
  Replaces the debug windows of the subtraction filter when built without
  the debug and withcv tags.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package filter

import "github.com/ausocean/bgsub/frame"

// debugWindows is used for displaying debug information for the subtraction filter.
type debugWindows struct{}

// close frees resources used by gocv.
func (d *debugWindows) close() error { return nil }

// newWindows creates debugging windows for the subtraction filter.
func newWindows(name string) debugWindows { return debugWindows{} }

// show displays debug information for the subtraction filter.
func (d *debugWindows) show(img, mask *frame.Frame, coverage float64) {}
