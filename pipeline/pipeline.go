/*
NAME
  pipeline.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package pipeline provides an API for reading JPEG frames from an input
// device, subtracting their background and writing the resulting masks out.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ausocean/utils/bitrate"

	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/device"
	"github.com/ausocean/bgsub/filter"
)

// Pipeline provides methods to control a background subtraction session;
// providing methods to start, stop and change the state of an instance using
// the Config struct.
type Pipeline struct {
	// cfg holds the Pipeline configuration, including its logger.
	cfg config.Config

	// input provides the JPEG stream that is lexed into frames.
	input device.AVDevice

	// lexTo splits the input stream into individual JPEG images.
	lexTo func(dest io.Writer, src io.Reader, delay time.Duration) error

	// filter receives each lexed image and writes to output.
	filter filter.Filter

	// output receives masks, or passed through frames, from the filter.
	output io.WriteCloser

	// coverage, if not nil, is called with the foreground fraction of each
	// mask. It is provided through SetCoverage.
	coverage func(float64)

	// running is used to keep track of the running state between methods.
	running bool

	// wg will be used to wait for any processing routines to finish.
	wg sync.WaitGroup

	// err will channel errors from processing routines to the handle errors
	// routine.
	err chan error

	// bitrate is used for output bitrate calculations.
	bitrate bitrate.Calculator
}

// New returns a pointer to a new Pipeline with the desired configuration,
// and/or an error if construction of the new instance was not successful.
func New(c config.Config) (*Pipeline, error) {
	if c.Logger == nil {
		return nil, errors.New("no logger set in config")
	}
	p := Pipeline{err: make(chan error)}
	err := p.setConfig(c)
	if err != nil {
		return nil, fmt.Errorf("could not set config, failed with error: %w", err)
	}
	go p.handleErrors()
	return &p, nil
}

// Config returns a copy of the current config.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Bitrate returns the result of the most recent output bitrate check.
func (p *Pipeline) Bitrate() int {
	return p.bitrate.Bitrate()
}

// Write writes JPEG data to the input when it is a ManualInput.
func (p *Pipeline) Write(b []byte) (int, error) {
	mi, ok := p.input.(*device.ManualInput)
	if !ok {
		return 0, errors.New("cannot write to anything but ManualInput")
	}
	return mi.Write(b)
}

// Start invokes a Pipeline to start processing frames from the configured
// input and writing masks to the configured output.
func (p *Pipeline) Start() error {
	if p.running {
		p.cfg.Logger.Warning("start called, but pipeline already running")
		return nil
	}

	p.cfg.Logger.Debug("resetting pipeline")
	err := p.reset(p.cfg)
	if err != nil {
		p.closeStages()
		return err
	}
	p.cfg.Logger.Info("pipeline reset")

	// Calculate delay between frames if the FileFPS != 0. Otherwise use no delay.
	d := time.Duration(0)
	if p.cfg.Input == config.InputFile && p.cfg.FileFPS != 0 {
		d = time.Second / time.Duration(p.cfg.FileFPS)
	}

	p.cfg.Logger.Debug("starting input processing routine")
	p.wg.Add(1)
	go p.processFrom(d)

	p.running = true
	return nil
}

// Stop closes down the pipeline. The input is stopped first and processing
// allowed to finish before the filter and output are closed.
func (p *Pipeline) Stop() {
	if !p.running {
		p.cfg.Logger.Warning("stop called but pipeline isn't running")
		return
	}

	p.cfg.Logger.Debug("stopping input")
	err := p.input.Stop()
	if err != nil {
		p.cfg.Logger.Error("could not stop input", "error", err.Error())
	} else {
		p.cfg.Logger.Info("input stopped")
	}

	p.cfg.Logger.Debug("waiting for routines to finish")
	p.wg.Wait()
	p.cfg.Logger.Info("routines finished")

	p.closeStages()
	p.running = false
}

// closeStages closes the filter and output, if they exist.
func (p *Pipeline) closeStages() {
	if p.filter != nil {
		err := p.filter.Close()
		if err != nil {
			p.cfg.Logger.Error("failed to close filter", "error", err.Error())
		} else {
			p.cfg.Logger.Info("filter closed")
		}
		p.filter = nil
	}
	if p.output != nil {
		err := p.output.Close()
		if err != nil {
			p.cfg.Logger.Error("failed to close output", "error", err.Error())
		} else {
			p.cfg.Logger.Info("output closed")
		}
		p.output = nil
	}
}

// Running reports whether the pipeline has been started and not stopped.
func (p *Pipeline) Running() bool {
	return p.running
}

// Update takes a map of variables and their values and edits the current config
// if the variables are recognised as valid parameters. A running pipeline is
// stopped and must be started again for the changes to take effect.
func (p *Pipeline) Update(vars map[string]string) error {
	if p.running {
		p.cfg.Logger.Debug("pipeline running; stopping for re-config")
		p.Stop()
		p.cfg.Logger.Info("pipeline was running; stopped for re-config")
	}

	p.cfg.Logger.Debug("checking vars", "vars", vars)
	p.cfg.Update(vars)
	p.cfg.Logger.Info("finished reconfig")
	p.cfg.Logger.Debug("config changed", "config", p.cfg)
	return nil
}

// SetCoverage registers fn to be called with the foreground fraction of each
// mask produced by the subtraction filter.
func (p *Pipeline) SetCoverage(fn func(float64)) error {
	if p.running {
		return errors.New("cannot set coverage callback when pipeline is running")
	}
	p.coverage = fn
	return nil
}
