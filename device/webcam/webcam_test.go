/*
DESCRIPTION
  webcam_test.go tests the webcam AVDevice.

AUTHORS
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package webcam

import (
	"bytes"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/bgsub/config"
)

func TestSetDefaults(t *testing.T) {
	l := logging.New(logging.Debug, &bytes.Buffer{}, true) // Discard logs.
	d := New(l)

	err := d.Set(config.Config{Logger: l})
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("unexpected error type: %T", err)
	}
	want := []error{errBadInputPath, errBadWidth, errBadHeight, errBadFrameRate}
	if !cmp.Equal(want, joined.Unwrap(), cmp.Comparer(func(a, b error) bool { return a == b })) {
		t.Errorf("unexpected errors: got:%v want:%v", joined.Unwrap(), want)
	}

	wantArgs := []string{"-i", "/dev/video0", "-r", "25", "-s", "640x480", "-f", "mjpeg", "-"}
	if diff := cmp.Diff(wantArgs, d.args()); diff != "" {
		t.Errorf("unexpected ffmpeg args (-want +got):\n%s", diff)
	}
}

func TestSet(t *testing.T) {
	l := logging.New(logging.Debug, &bytes.Buffer{}, true)
	d := New(l)
	err := d.Set(config.Config{InputPath: "/dev/video2", Width: 320, Height: 240, FrameRate: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantArgs := []string{"-i", "/dev/video2", "-r", "10", "-s", "320x240", "-f", "mjpeg", "-"}
	if diff := cmp.Diff(wantArgs, d.args()); diff != "" {
		t.Errorf("unexpected ffmpeg args (-want +got):\n%s", diff)
	}
}

func TestIsRunning(t *testing.T) {
	const dur = 250 * time.Millisecond

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}
	if _, err := os.Stat(defaultInputPath); err != nil {
		t.Skip("no webcam available")
	}

	l := logging.New(logging.Debug, &bytes.Buffer{}, true) // Discard logs.
	d := New(l)

	// Defaults are substituted for every field, so the error is informational.
	err := d.Set(config.Config{Logger: l})
	if err != nil {
		t.Logf("set with defaults: %v", err)
	}

	err = d.Start()
	if err != nil {
		t.Fatalf("could not start device %v", err)
	}

	time.Sleep(dur)

	if !d.IsRunning() {
		t.Error("device isn't running, when it should be")
	}

	err = d.Stop()
	if err != nil {
		t.Error(err.Error())
	}

	time.Sleep(dur)

	if d.IsRunning() {
		t.Error("device is running, when it should not be")
	}
}
