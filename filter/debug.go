//go:build debug && withcv
// +build debug,withcv

/*
DESCRIPTION
  Displays debug information for the subtraction filter.

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

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ausocean/bgsub/frame"
)

// debugWindows is used for displaying debug information for the subtraction filter.
type debugWindows struct {
	windows []*gocv.Window
}

// close frees resources used by gocv.
func (d *debugWindows) close() error {
	for _, window := range d.windows {
		err := window.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// newWindows creates debugging windows for the subtraction filter.
func newWindows(name string) debugWindows {
	return debugWindows{
		windows: []*gocv.Window{
			gocv.NewWindow(name + ": Video"),
			gocv.NewWindow(name + ": Foreground"),
		},
	}
}

// show displays a frame annotated with its foreground coverage, alongside its
// mask.
func (d *debugWindows) show(img, mask *frame.Frame, coverage float64) {
	var drkRed = color.RGBA{191, 0, 0, 0}

	gray, err := gocv.NewMatFromBytes(img.H, img.W, gocv.MatTypeCV8UC1, img.Pix)
	if err != nil {
		return
	}
	defer gray.Close()
	im := gocv.NewMat()
	defer im.Close()
	gocv.CvtColor(gray, &im, gocv.ColorGrayToBGR)

	imD, err := gocv.NewMatFromBytes(mask.H, mask.W, gocv.MatTypeCV8UC1, mask.Pix)
	if err != nil {
		return
	}
	defer imD.Close()

	text := fmt.Sprintf("Foreground: %.1f%%", 100*coverage)
	gocv.PutText(&im, text, image.Pt(32, 32), gocv.FontHersheyPlain, 2.0, drkRed, 2)

	d.windows[0].IMShow(im)
	d.windows[1].IMShow(imD)
	d.windows[0].WaitKey(1)
}
