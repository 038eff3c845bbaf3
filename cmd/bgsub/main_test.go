/*
DESCRIPTION
  main_test.go provides testing for config reading, reload and coverage
  plotting in bgsub.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ausocean/utils/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/pipeline"
)

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bgsub.conf")
	const in = "# bgsub\nInput=File\nInputPath = /tmp/in.mjpeg\n\nThresholdType=Otsu\n"
	err := os.WriteFile(path, []byte(in), 0o644)
	if err != nil {
		t.Fatalf("could not write config: %v", err)
	}
	got, err := readConfig(path)
	if err != nil {
		t.Fatalf("could not read config: %v", err)
	}
	want := map[string]string{
		"Input":         "File",
		"InputPath":     "/tmp/in.mjpeg",
		"ThresholdType": "Otsu",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected config (-want +got):\n%s", diff)
	}

	_, err = readConfig(filepath.Join(t.TempDir(), "missing.conf"))
	if err == nil {
		t.Error("expected error for missing config")
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	p, err := pipeline.New(config.Config{Logger: (*logging.TestLogger)(t)})
	if err != nil {
		t.Fatalf("could not create pipeline: %v", err)
	}
	vars := map[string]string{
		config.KeyInput:      "Manual",
		config.KeyOutputPath: filepath.Join(dir, "a.mjpeg"),
		config.KeyFilter:     "Subtract",
	}
	err = reload(p, vars)
	if err != nil {
		t.Fatalf("could not start pipeline: %v", err)
	}

	vars[config.KeyOutputPath] = filepath.Join(dir, "b.mjpeg")
	vars[config.KeyEstimator] = "ExponentialAverage"
	err = reload(p, vars)
	if err != nil {
		t.Fatalf("could not reload pipeline: %v", err)
	}
	if !p.Running() {
		t.Error("pipeline not running after reload")
	}
	if got := p.Config().Estimator; got != config.EstimatorExponentialAverage {
		t.Errorf("estimator not updated: got:%d", got)
	}
	p.Stop()

	if _, err := os.Stat(vars[config.KeyOutputPath]); err != nil {
		t.Errorf("reloaded output not created: %v", err)
	}
}

func TestCoveragePlot(t *testing.T) {
	var c coverage
	path := filepath.Join(t.TempDir(), "coverage.png")
	if err := c.save(path); err == nil {
		t.Error("expected error saving empty coverage")
	}

	for i := 0; i < 50; i++ {
		c.add(float64(i%10) / 10)
	}
	if len(c.pts) != 50 || c.pts[49].X != 49 {
		t.Fatalf("unexpected points recorded: %d", len(c.pts))
	}
	err := c.save(path)
	if err != nil {
		t.Fatalf("could not save plot: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Errorf("plot not written: %v", err)
	}
}

func TestMetrics(t *testing.T) {
	m := newMetrics(func() int { return 4000 })
	m.observe(0.25)
	m.observe(0.5)

	if got := testutil.ToFloat64(m.frames); got != 2 {
		t.Errorf("unexpected frame count: got:%v want:2", got)
	}
	if got := testutil.ToFloat64(m.coverage); got != 0.5 {
		t.Errorf("unexpected coverage: got:%v want:0.5", got)
	}

	srv := httptest.NewServer(m.handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("could not get metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("could not read metrics: %v", err)
	}
	for _, name := range []string{"bgsub_frames_total 2", "bgsub_output_bitrate 4000", "bgsub_foreground_fraction_distribution_count 2"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics missing %q", name)
		}
	}
}
