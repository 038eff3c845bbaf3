/*
NAME
  config.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Trek Hopton <trek@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the background
// subtraction engine and the bgsub pipeline around it.
package config

import (
	"github.com/ausocean/utils/logging"
)

// Filters that may sit between the lexer and the output.
const (
	FilterNoOp = iota
	FilterSubtract
)

// Input devices.
const (
	InputFile = iota
	InputWebcam
	InputManual
)

// Background estimators.
const (
	EstimatorMedianOfWindow = iota
	EstimatorWindowOnly
	EstimatorMeanOfWindow
	EstimatorExponentialAverage
)

// Threshold strategies.
const (
	ThresholdAdaptive = iota
	ThresholdManual
	ThresholdOtsu
)

// Config provides parameters relevant to a subtraction engine and the
// pipeline hosting it. Default values are defined in variables.go and are
// applied by Validate.
type Config struct {
	// Logger holds an implementation of the logging.Logger interface.
	// This must be set for the engine to work correctly.
	Logger logging.Logger

	// LogLevel is the logging verbosity level.
	// Valid values are defined by enums from the logger package: logging.Debug,
	// logging.Info, logging.Warning logging.Error, logging.Fatal.
	LogLevel int8

	Suppress bool // Holds logger suppression state.

	// Filter selects the filter used between the lexer and the output, one of
	// FilterNoOp or FilterSubtract.
	Filter uint8

	// Estimator selects the background model. Valid values are defined by the
	// Estimator enums above.
	Estimator uint8

	// HistoryLength is the capacity of the frame history used by the window
	// estimators. ExponentialAverage ignores it.
	HistoryLength uint

	// HistorySample causes only every nth frame to be pushed into history.
	// 1 pushes every frame.
	HistorySample uint

	MedianBlend  bool    // Blend the window statistic with the current frame (0.2 current, 0.8 statistic).
	MedianKernel uint    // Size of the median smoothing applied to the window statistic; 1 disables it.
	Alpha        float64 // Blend weight of the current frame for ExponentialAverage.

	// ThresholdType selects how differences are binarised, one of the Threshold
	// enums above.
	ThresholdType uint8

	// ManualThreshold is the global cutoff used by ThresholdManual. It is held
	// at zero for every other threshold type.
	ManualThreshold uint

	AdaptiveBlockSize uint // Neighbourhood size used by ThresholdAdaptive, must be odd.

	// Input selects the source device, one of the Input enums above.
	Input uint8

	InputPath  string // Location of the MJPEG input file, or the webcam device.
	OutputPath string // Location the MJPEG mask output is written to.
	Loop       bool   // If true will restart reading of input after an io.EOF.
	FileFPS    uint   // Defines the rate at which frames from a file source are processed; 0 is unthrottled.

	Width     uint // Width of webcam frames in pixels.
	Height    uint // Height of webcam frames in pixels.
	FrameRate uint // Webcam frame rate in frames per second.
}

// Validate checks for any errors in the config fields and defaults settings
// if particular parameters have not been defined.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their corresponding
// values, parses the string values and converting into correct type, and then
// sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

// LogInvalidField logs that the named field was bad or unset and is being
// set to def.
func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
