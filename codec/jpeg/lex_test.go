/*
NAME
  lex_test.go

DESCRIPTION
  lex_test.go provides testing for the lexer in lex.go.

AUTHOR
  Dan Kortschak <dan@ausocean.org>

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
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
)

var stream = []byte{
	0xff, 0xd8, 'f', 'u', 'l', 'l', 0xff, 0xd9,
	0xff, 0xd8, 'f', 'r', 'a', 'm', 'e', 0xff, 0xd9,
	0xff, 0xd8, 'w', 'i', 't', 'h', 0xff, 0xd9,
}

var streamImages = [][]byte{
	{0xff, 0xd8, 'f', 'u', 'l', 'l', 0xff, 0xd9},
	{0xff, 0xd8, 'f', 'r', 'a', 'm', 'e', 0xff, 0xd9},
	{0xff, 0xd8, 'w', 'i', 't', 'h', 0xff, 0xd9},
}

var lexTests = []struct {
	name  string
	input []byte
	delay time.Duration
	want  [][]byte
	err   error
}{
	{
		name: "empty",
		err:  io.EOF,
	},
	{
		name:  "null",
		input: []byte{0xff, 0xd8, 0xff, 0xd9},
		want:  [][]byte{{0xff, 0xd8, 0xff, 0xd9}},
		err:   io.EOF,
	},
	{
		name:  "null delayed",
		input: []byte{0xff, 0xd8, 0xff, 0xd9},
		delay: time.Millisecond,
		want:  [][]byte{{0xff, 0xd8, 0xff, 0xd9}},
		err:   io.EOF,
	},
	{
		name:  "stream",
		input: stream,
		want:  streamImages,
		err:   io.EOF,
	},
	{
		name:  "stream delayed",
		input: stream,
		delay: time.Millisecond,
		want:  streamImages,
		err:   io.EOF,
	},
	{
		name: "nested thumbnail",
		input: []byte{
			0xff, 0xd8, 'a', 0xff, 0xd8, 't', 0xff, 0xd9, 'b', 0xff, 0xd9,
		},
		want: [][]byte{
			{0xff, 0xd8, 'a', 0xff, 0xd8, 't', 0xff, 0xd9, 'b', 0xff, 0xd9},
		},
		err: io.EOF,
	},
	{
		name:  "truncated",
		input: append(append([]byte{}, stream...), 0xff, 0xd8, 'c', 'u', 't'),
		want:  streamImages,
		err:   io.ErrUnexpectedEOF,
	},
	{
		name:  "half marker",
		input: []byte{0xff},
		err:   io.ErrUnexpectedEOF,
	},
	{
		name:  "not jpeg",
		input: []byte{'n', 'o'},
		err:   fmt.Errorf("not JPEG image start: %#v", []byte{'n', 'o'}),
	},
	{
		name:  "negative delay",
		delay: -time.Second,
		err:   fmt.Errorf("invalid delay: %v", -time.Second),
	},
}

func TestLex(t *testing.T) {
	Log = (*logging.TestLogger)(t)
	defer func() { Log = nil }()
	for _, test := range lexTests {
		var buf chunkWriter
		err := Lex(&buf, bytes.NewReader(test.input), test.delay)
		if fmt.Sprint(err) != fmt.Sprint(test.err) {
			t.Errorf("unexpected error for %q: got:%v want:%v", test.name, err, test.err)
		}
		if diff := cmp.Diff(test.want, [][]byte(buf)); diff != "" {
			t.Errorf("unexpected result for %q (-want +got):\n%s", test.name, diff)
		}
	}
}

type chunkWriter [][]byte

func (w *chunkWriter) Write(b []byte) (int, error) {
	*w = append(*w, b)
	return len(b), nil
}
