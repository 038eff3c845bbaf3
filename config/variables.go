/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type in
  a string format, a function for updating the variable in the Config struct
  from a string, and finally, a validation function to check the validity of the
  corresponding field value in the Config.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"
)

// Config map Keys.
const (
	KeyAdaptiveBlockSize = "AdaptiveBlockSize"
	KeyAlpha             = "Alpha"
	KeyEstimator         = "Estimator"
	KeyFileFPS           = "FileFPS"
	KeyFilter            = "Filter"
	KeyFrameRate         = "FrameRate"
	KeyHeight            = "Height"
	KeyHistoryLength     = "HistoryLength"
	KeyHistorySample     = "HistorySample"
	KeyInput             = "Input"
	KeyInputPath         = "InputPath"
	KeyLogging           = "logging"
	KeyLoop              = "Loop"
	KeyManualThreshold   = "ManualThreshold"
	KeyMedianBlend       = "MedianBlend"
	KeyMedianKernel      = "MedianKernel"
	KeyOutputPath        = "OutputPath"
	KeySuppress          = "Suppress"
	KeyThresholdType     = "ThresholdType"
	KeyWidth             = "Width"
)

// Config map parameter types.
const (
	typeString = "string"
	typeUint   = "uint"
	typeBool   = "bool"
	typeFloat  = "float"
)

// Default variable values.
const (
	defaultVerbosity = logging.Error

	// Background model defaults.
	defaultHistoryLength = 10
	defaultHistorySample = 1
	defaultMedianKernel  = 1
	defaultAlpha         = 0.1

	// Threshold defaults.
	defaultManualThreshold   = 30
	defaultAdaptiveBlockSize = 11
	maxThreshold             = 255
)

// Variables describes the variables that can be used for bgsub control.
// These structs provide the name and type of variable, a function for updating
// this variable in a Config, and a function for validating the value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name:   KeyAdaptiveBlockSize,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.AdaptiveBlockSize = parseUint(KeyAdaptiveBlockSize, v, c) },
		Validate: func(c *Config) {
			if c.AdaptiveBlockSize < 3 || c.AdaptiveBlockSize%2 == 0 {
				c.LogInvalidField(KeyAdaptiveBlockSize, defaultAdaptiveBlockSize)
				c.AdaptiveBlockSize = defaultAdaptiveBlockSize
			}
		},
	},
	{
		Name:   KeyAlpha,
		Type:   typeFloat,
		Update: func(c *Config, v string) { c.Alpha = parseFloat(KeyAlpha, v, c) },
		Validate: func(c *Config) {
			if c.Alpha <= 0 || c.Alpha > 1 {
				c.LogInvalidField(KeyAlpha, defaultAlpha)
				c.Alpha = defaultAlpha
			}
		},
	},
	{
		Name: KeyEstimator,
		Type: "enum:MedianOfWindow,WindowOnly,MeanOfWindow,ExponentialAverage",
		Update: func(c *Config, v string) {
			c.Estimator = parseEnum(
				KeyEstimator,
				v,
				map[string]uint8{
					"medianofwindow":     EstimatorMedianOfWindow,
					"windowonly":         EstimatorWindowOnly,
					"meanofwindow":       EstimatorMeanOfWindow,
					"exponentialaverage": EstimatorExponentialAverage,
				},
				c,
			)
		},
	},
	{
		Name:   KeyFileFPS,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FileFPS = parseUint(KeyFileFPS, v, c) },
	},
	{
		Name: KeyFilter,
		Type: "enum:NoOp,Subtract",
		Update: func(c *Config, v string) {
			c.Filter = parseEnum(KeyFilter, v, map[string]uint8{"noop": FilterNoOp, "subtract": FilterSubtract}, c)
		},
	},
	{
		Name:   KeyFrameRate,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.FrameRate = parseUint(KeyFrameRate, v, c) },
	},
	{
		Name:   KeyHeight,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Height = parseUint(KeyHeight, v, c) },
	},
	{
		Name:   KeyHistoryLength,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.HistoryLength = parseUint(KeyHistoryLength, v, c) },
		Validate: func(c *Config) {
			c.HistoryLength = lessThanOrEqual(KeyHistoryLength, c.HistoryLength, 0, c, defaultHistoryLength)
		},
	},
	{
		Name:   KeyHistorySample,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.HistorySample = parseUint(KeyHistorySample, v, c) },
		Validate: func(c *Config) {
			c.HistorySample = lessThanOrEqual(KeyHistorySample, c.HistorySample, 0, c, defaultHistorySample)
		},
	},
	{
		Name: KeyInput,
		Type: "enum:File,Webcam,Manual",
		Update: func(c *Config, v string) {
			c.Input = parseEnum(KeyInput, v, map[string]uint8{"file": InputFile, "webcam": InputWebcam, "manual": InputManual}, c)
		},
	},
	{
		Name:   KeyInputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.InputPath = v },
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name:   KeyLoop,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Loop = parseBool(KeyLoop, v, c) },
	},
	{
		Name:   KeyManualThreshold,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.ManualThreshold = parseUint(KeyManualThreshold, v, c) },
		Validate: func(c *Config) {
			switch {
			case c.ThresholdType != ThresholdManual:
				c.ManualThreshold = 0
			case c.ManualThreshold > maxThreshold:
				c.LogInvalidField(KeyManualThreshold, defaultManualThreshold)
				c.ManualThreshold = defaultManualThreshold
			}
		},
	},
	{
		Name:   KeyMedianBlend,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.MedianBlend = parseBool(KeyMedianBlend, v, c) },
	},
	{
		Name:   KeyMedianKernel,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MedianKernel = parseUint(KeyMedianKernel, v, c) },
		Validate: func(c *Config) {
			if c.MedianKernel == 0 || c.MedianKernel%2 == 0 {
				c.LogInvalidField(KeyMedianKernel, defaultMedianKernel)
				c.MedianKernel = defaultMedianKernel
			}
		},
	},
	{
		Name:   KeyOutputPath,
		Type:   typeString,
		Update: func(c *Config, v string) { c.OutputPath = v },
	},
	{
		Name:   KeySuppress,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.Suppress = parseBool(KeySuppress, v, c) },
	},
	{
		Name: KeyThresholdType,
		Type: "enum:Adaptive,Manual,Otsu",
		Update: func(c *Config, v string) {
			c.ThresholdType = parseEnum(
				KeyThresholdType,
				v,
				map[string]uint8{"adaptive": ThresholdAdaptive, "manual": ThresholdManual, "otsu": ThresholdOtsu},
				c,
			)
		},
	},
	{
		Name:   KeyWidth,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.Width = parseUint(KeyWidth, v, c) },
	},
}

// Parse reads Key=Value lines from s into a variable map suitable for Update.
// Blank lines and lines starting with # are ignored.
func Parse(s string) map[string]string {
	vars := make(map[string]string)
	for _, l := range strings.Split(s, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		k, v, ok := strings.Cut(l, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return vars
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseFloat(n, v string, c *Config) float64 {
	_v, err := strconv.ParseFloat(v, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected float for param %s", n), "value", v)
	}
	return _v
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}

func parseEnum(n, v string, enums map[string]uint8, c *Config) uint8 {
	_v, ok := enums[strings.ToLower(v)]
	if !ok {
		c.Logger.Warning(fmt.Sprintf("invalid value for %s param", n), "value", v)
	}
	return _v
}

func lessThanOrEqual(n string, v, cmp uint, c *Config, def uint) uint {
	if v <= cmp {
		c.LogInvalidField(n, def)
		return def
	}
	return v
}
