/*
DESCRIPTION
  pipeline_test.go provides testing of the Pipeline API.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pipeline

import (
	"bytes"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/bgsub/codec/jpeg"
	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/device"
	"github.com/ausocean/bgsub/frame"
)

// scene returns a JPEG encoded 160x120 frame of intensity 128, optionally
// with a 50x50 white block.
func scene(t *testing.T, block bool) []byte {
	t.Helper()
	f := frame.New(160, 120)
	f.Fill(128)
	if block {
		f.FillRect(image.Rect(40, 30, 90, 80), 255)
	}
	b, err := jpeg.Encode(f, 95)
	if err != nil {
		t.Fatalf("could not encode scene: %v", err)
	}
	return b
}

type chunkWriter [][]byte

func (w *chunkWriter) Write(b []byte) (int, error) {
	*w = append(*w, b)
	return len(b), nil
}

// masks returns the JPEG images held in the file at path.
func masks(t *testing.T, path string) [][]byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("could not read output: %v", err)
	}
	var w chunkWriter
	err = jpeg.Lex(&w, bytes.NewReader(data), 0)
	if err != io.EOF {
		t.Fatalf("unexpected error lexing output: %v", err)
	}
	return w
}

func subtractVars(in, out string) map[string]string {
	return map[string]string{
		config.KeyInput:           in,
		config.KeyOutputPath:      out,
		config.KeyFilter:          "Subtract",
		config.KeyEstimator:       "MedianOfWindow",
		config.KeyThresholdType:   "Manual",
		config.KeyManualThreshold: "30",
	}
}

func TestManualInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "masks.mjpeg")
	p, err := New(config.Config{Logger: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("did not expect error from New(): %v", err)
	}
	err = p.Update(subtractVars("Manual", out))
	if err != nil {
		t.Fatalf("did not expect error from Update(): %v", err)
	}
	var cov []float64
	err = p.SetCoverage(func(c float64) { cov = append(cov, c) })
	if err != nil {
		t.Fatalf("did not expect error from SetCoverage(): %v", err)
	}

	err = p.Start()
	if err != nil {
		t.Fatalf("did not expect error from Start(): %v", err)
	}
	if !p.Running() {
		t.Error("pipeline not running after start")
	}
	_, err = p.Write([]byte("not a jpeg"))
	if !errors.Is(err, device.ErrNotJPEG) {
		t.Errorf("unexpected error writing non JPEG data: %v", err)
	}
	for i := 0; i < 4; i++ {
		_, err = p.Write(scene(t, false))
		if err != nil {
			t.Fatalf("could not write frame %d: %v", i, err)
		}
	}
	_, err = p.Write(scene(t, true))
	if err != nil {
		t.Fatalf("could not write block frame: %v", err)
	}
	p.Stop()
	if p.Running() {
		t.Error("pipeline running after stop")
	}
	_, err = p.Write(scene(t, false))
	if !errors.Is(err, device.ErrStopped) {
		t.Errorf("unexpected error writing after stop: %v", err)
	}

	got := masks(t, out)
	if len(got) != 5 {
		t.Fatalf("unexpected number of masks: got:%d want:5", len(got))
	}
	m, err := jpeg.Decode(got[4])
	if err != nil {
		t.Fatalf("could not decode mask: %v", err)
	}
	if m.At(65, 55) < 0x80 || m.At(5, 5) >= 0x80 {
		t.Errorf("unexpected mask: centre:%d corner:%d", m.At(65, 55), m.At(5, 5))
	}
	if len(cov) != 5 || cov[0] != 0 || cov[4] == 0 {
		t.Errorf("unexpected coverage: %v", cov)
	}
	if p.Bitrate() < 0 {
		t.Errorf("negative bitrate: %d", p.Bitrate())
	}
}

func TestFileInput(t *testing.T) {
	const n = 6
	dir := t.TempDir()
	in := filepath.Join(dir, "in.mjpeg")
	out := filepath.Join(dir, "out.mjpeg")

	var stream []byte
	for i := 0; i < n; i++ {
		stream = append(stream, scene(t, i == n-1)...)
	}
	err := os.WriteFile(in, stream, 0o644)
	if err != nil {
		t.Fatalf("could not write input: %v", err)
	}

	p, err := New(config.Config{Logger: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("did not expect error from New(): %v", err)
	}
	vars := subtractVars("File", out)
	vars[config.KeyInputPath] = in
	p.Update(vars)

	done := make(chan struct{})
	count := 0
	p.SetCoverage(func(float64) {
		count++
		if count == n {
			close(done)
		}
	})

	err = p.Start()
	if err != nil {
		t.Fatalf("did not expect error from Start(): %v", err)
	}
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for frames")
	}
	p.Stop()

	if got := len(masks(t, out)); got != n {
		t.Errorf("unexpected number of masks: got:%d want:%d", got, n)
	}
}

func TestRestartAppends(t *testing.T) {
	out := filepath.Join(t.TempDir(), "masks.mjpeg")
	p, err := New(config.Config{Logger: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("did not expect error from New(): %v", err)
	}

	for run := 0; run < 2; run++ {
		err = p.Update(subtractVars("Manual", out))
		if err != nil {
			t.Fatalf("did not expect error from Update(): %v", err)
		}
		err = p.Start()
		if err != nil {
			t.Fatalf("run %d: did not expect error from Start(): %v", run, err)
		}
		for i := 0; i < 2; i++ {
			_, err = p.Write(scene(t, false))
			if err != nil {
				t.Fatalf("run %d: could not write frame %d: %v", run, i, err)
			}
		}
		p.Stop()
	}

	if got := len(masks(t, out)); got != 4 {
		t.Errorf("unexpected number of masks: got:%d want:4", got)
	}
}

func TestNoOpFilter(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mjpeg")
	p, err := New(config.Config{Logger: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("did not expect error from New(): %v", err)
	}
	p.Update(map[string]string{
		config.KeyInput:      "Manual",
		config.KeyOutputPath: out,
		config.KeyFilter:     "NoOp",
	})
	err = p.Start()
	if err != nil {
		t.Fatalf("did not expect error from Start(): %v", err)
	}
	want := scene(t, true)
	_, err = p.Write(want)
	if err != nil {
		t.Fatalf("could not write frame: %v", err)
	}
	p.Stop()

	got := masks(t, out)
	if len(got) != 1 || !bytes.Equal(got[0], want) {
		t.Errorf("frame not passed through unchanged")
	}
}

func TestStartErrors(t *testing.T) {
	p, err := New(config.Config{Logger: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("did not expect error from New(): %v", err)
	}
	err = p.Start()
	if !errors.Is(err, errNoOutputPath) {
		t.Errorf("unexpected error: got:%v want:%v", err, errNoOutputPath)
	}
	if p.Running() {
		t.Error("pipeline running after failed start")
	}

	p.Update(map[string]string{
		config.KeyInput:      "File",
		config.KeyInputPath:  filepath.Join(t.TempDir(), "missing.mjpeg"),
		config.KeyOutputPath: filepath.Join(t.TempDir(), "out.mjpeg"),
	})
	err = p.Start()
	if err == nil {
		t.Error("expected error starting with missing input file")
	}
	if _, err := p.Write([]byte{0xff}); err == nil {
		t.Error("expected error writing to non-manual input")
	}
	_, err = New(config.Config{})
	if err == nil {
		t.Error("expected error from New() without logger")
	}
}
