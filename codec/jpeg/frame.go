/*
DESCRIPTION
  frame.go converts between JPEG images and the grayscale frames consumed by
  the subtraction engine.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package jpeg

import (
	"bytes"
	"image"
	imgjpeg "image/jpeg"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/ausocean/bgsub/frame"
)

// DefaultQuality is the JPEG quality used for encoded masks.
const DefaultQuality = 90

// Decode decodes the JPEG image b into a grayscale frame. Colour images are
// reduced to luminance.
func Decode(b []byte) (*frame.Frame, error) {
	img, err := imgjpeg.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, errors.Wrap(err, "could not decode jpeg")
	}
	if g, ok := img.(*image.Gray); ok {
		return frame.FromGray(g), nil
	}

	// imaging.Grayscale gives an NRGBA image with equal colour channels.
	g := imaging.Grayscale(img)
	f := frame.New(g.Rect.Dx(), g.Rect.Dy())
	for y := 0; y < f.H; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < f.W; x++ {
			f.Pix[y*f.W+x] = row[x*4]
		}
	}
	return f, nil
}

// Encode encodes f as a grayscale JPEG of the given quality.
func Encode(f *frame.Frame, quality int) ([]byte, error) {
	var buf bytes.Buffer
	err := imgjpeg.Encode(&buf, f.Gray(), &imgjpeg.Options{Quality: quality})
	if err != nil {
		return nil, errors.Wrap(err, "could not encode jpeg")
	}
	return buf.Bytes(), nil
}
