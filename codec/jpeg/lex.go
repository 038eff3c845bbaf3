/*
NAME
  lex.go

DESCRIPTION
  lex.go provides a lexer to extract separate JPEG images from a JPEG stream.
  This could either be a series of descrete JPEG images, or an MJPEG stream.

AUTHOR
  Dan Kortschak <dan@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package jpeg

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/ausocean/utils/logging"
)

// JPEG marker bytes used to delimit images.
const (
	markerPrefix = 0xff
	markerSOI    = 0xd8 // Start of image.
	markerEOI    = 0xd9 // End of image.
)

// Log is used by Lex for debug output. It may be left nil.
var Log logging.Logger

var noDelay = make(chan time.Time)

func init() {
	close(noDelay)
}

// Lex parses JPEG images read from src into separate writes to dst with
// successive writes being performed not earlier than the specified delay.
// Nested images, such as embedded thumbnails, are kept within their parent.
// Lex returns io.EOF if src ends between images and io.ErrUnexpectedEOF if
// it ends part way through one.
func Lex(dst io.Writer, src io.Reader, delay time.Duration) error {
	if delay < 0 {
		return fmt.Errorf("invalid delay: %v", delay)
	}
	var tick <-chan time.Time
	if delay == 0 {
		tick = noDelay
	} else {
		ticker := time.NewTicker(delay)
		defer ticker.Stop()
		tick = ticker.C
	}

	r := bufio.NewReader(src)
	for {
		img, err := nextImage(r)
		if err != nil {
			return err
		}
		<-tick
		if Log != nil {
			Log.Debug("writing image", "len", len(img))
		}
		_, err = dst.Write(img)
		if err != nil {
			return err
		}
	}
}

// nextImage reads one complete, possibly nested, JPEG image from r.
func nextImage(r *bufio.Reader) ([]byte, error) {
	soi := make([]byte, 2, 4<<10)
	_, err := io.ReadFull(r, soi)
	if err != nil {
		return nil, err
	}
	if soi[0] != markerPrefix || soi[1] != markerSOI {
		return nil, fmt.Errorf("not JPEG image start: %#v", soi)
	}

	buf := soi
	depth := 1
	var last byte
	for depth > 0 {
		b, err := r.ReadByte()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
		if last == markerPrefix {
			switch b {
			case markerSOI:
				depth++
			case markerEOI:
				depth--
			}
		}
		last = b
	}
	return buf, nil
}
