//go:build withcv
// +build withcv

/*
DESCRIPTION
  Provides the adaptive threshold using OpenCV's adaptiveThreshold via gocv.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package subtract

import (
	"gocv.io/x/gocv"

	"github.com/ausocean/bgsub/frame"
)

// newAdaptive returns an adaptive Thresholder with a block x block
// neighbourhood.
func newAdaptive(block int) Thresholder {
	return &cvAdaptive{block: block, fallback: newGaussAdaptive(block)}
}

// cvAdaptive thresholds using gocv. If the frame cannot be wrapped in a Mat
// the pure Go implementation is used instead.
type cvAdaptive struct {
	block    int
	fallback *gaussAdaptive
}

func (a *cvAdaptive) Name() string { return "Adaptive" }

func (a *cvAdaptive) Apply(diff, dst *frame.Frame) {
	src, err := gocv.NewMatFromBytes(diff.H, diff.W, gocv.MatTypeCV8UC1, diff.Pix)
	if err != nil {
		a.fallback.Apply(diff, dst)
		return
	}
	defer src.Close()

	out := gocv.NewMat()
	defer out.Close()

	gocv.AdaptiveThreshold(src, &out, Foreground, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, a.block, adaptiveOffset)
	copy(dst.Pix, out.ToBytes())
}
