/*
DESCRIPTION
  setup.go provides functionality for set up of the processing pipeline.

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

package pipeline

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ausocean/bgsub/codec/jpeg"
	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/device"
	"github.com/ausocean/bgsub/device/file"
	"github.com/ausocean/bgsub/device/webcam"
	"github.com/ausocean/bgsub/filter"
)

var errNoOutputPath = errors.New("output path unset")

func (p *Pipeline) handleErrors() {
	for {
		err := <-p.err
		if err != nil {
			p.cfg.Logger.Error("async error", "error", err.Error())
		}
	}
}

// reset swaps the current config of a Pipeline with the passed configuration;
// checking validity and returning errors if not valid. It then sets up the
// data pipeline according to this configuration.
func (p *Pipeline) reset(c config.Config) error {
	p.cfg.Logger.Debug("setting config")
	err := p.setConfig(c)
	if err != nil {
		return fmt.Errorf("could not set config: %w", err)
	}
	p.cfg.Logger.Info("config set")

	p.cfg.Logger.Debug("setting up pipeline")
	err = p.setupPipeline()
	if err != nil {
		return fmt.Errorf("could not set up pipeline: %w", err)
	}
	p.cfg.Logger.Info("finished setting pipeline")
	return nil
}

// setConfig takes a config, checks its validity and then replaces the current
// config.
func (p *Pipeline) setConfig(c config.Config) error {
	p.cfg.Logger = c.Logger
	p.cfg.Logger.Debug("validating config")
	err := c.Validate()
	if err != nil {
		return errors.New("Config struct is bad: " + err.Error())
	}
	p.cfg.Logger.Info("config validated")
	p.cfg = c
	p.cfg.Logger.SetLevel(p.cfg.LogLevel)
	return nil
}

// setupPipeline constructs the output, filter and input of the pipeline based
// on the current config.
func (p *Pipeline) setupPipeline() error {
	if p.cfg.OutputPath == "" {
		return errNoOutputPath
	}
	p.cfg.Logger.Debug("using file output", "path", p.cfg.OutputPath)
	out, err := newFileSender(p.cfg.Logger, p.cfg.OutputPath, p.bitrate.Report)
	if err != nil {
		return fmt.Errorf("could not create file output: %w", err)
	}
	p.output = out

	p.cfg.Logger.Debug("setting up filter", "filter", p.cfg.Filter)
	var opts []func(*filter.Subtractor) error
	if p.coverage != nil {
		opts = append(opts, filter.WithCoverage(p.coverage))
	}
	p.filter, err = filter.New(p.output, p.cfg, opts...)
	if err != nil {
		return fmt.Errorf("could not create filter: %w", err)
	}
	p.cfg.Logger.Info("filter set up")

	switch p.cfg.Input {
	case config.InputFile:
		p.cfg.Logger.Debug("using file input")
		p.input = file.New(p.cfg.Logger)
	case config.InputWebcam:
		p.cfg.Logger.Debug("using webcam input")
		p.input = webcam.New(p.cfg.Logger)
	case config.InputManual:
		p.cfg.Logger.Debug("using manual input")
		p.input = device.NewManualInput()
	default:
		return fmt.Errorf("unrecognised input type: %v", p.cfg.Input)
	}
	p.lexTo = jpeg.Lex
	jpeg.Log = p.cfg.Logger

	// Configure the input device. Devices substitute defaults for bad fields,
	// so errors are only logged.
	p.cfg.Logger.Debug("configuring input device")
	err = p.input.Set(p.cfg)
	if err != nil {
		p.cfg.Logger.Warning("errors from configuring input device", "errors", err)
	}
	p.cfg.Logger.Info("input device configured")

	// Start the input here so a ManualInput can be written to as soon as
	// Start returns.
	err = p.input.Start()
	if err != nil {
		return fmt.Errorf("could not start input device: %w", err)
	}
	return nil
}

// processFrom is run as a routine to read from the input data source, lex and
// then send individual images to the filter.
func (p *Pipeline) processFrom(delay time.Duration) {
	defer p.wg.Done()

	// Lex data from the input device until finished or an error is encountered.
	// For a continuous source e.g. a camera, we should remain in this call
	// indefinitely unless input.Stop() is called.
	p.cfg.Logger.Debug("lexing")
	err := p.lexTo(p.filter, p.input, delay)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		p.cfg.Logger.Info("end of input")
	case errors.Is(err, io.ErrUnexpectedEOF):
		p.cfg.Logger.Info("unexpected EOF from input")
	case errors.Is(err, io.ErrClosedPipe) || !p.input.IsRunning():
		p.cfg.Logger.Info("input closed")
	default:
		p.err <- err
	}
	p.cfg.Logger.Info("finished reading input")
}
