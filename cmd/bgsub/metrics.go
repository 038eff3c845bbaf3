/*
DESCRIPTION
  metrics.go exposes pipeline statistics for Prometheus.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the Prometheus collectors for a pipeline.
type metrics struct {
	registry *prometheus.Registry
	frames   prometheus.Counter
	coverage prometheus.Gauge
	spread   prometheus.Histogram
}

// newMetrics returns metrics registered with a new registry. bitrate is
// polled for the output bitrate gauge.
func newMetrics(bitrate func() int) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bgsub_frames_total",
			Help: "Number of frames processed by the subtraction filter.",
		}),
		coverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bgsub_foreground_fraction",
			Help: "Fraction of foreground pixels in the most recent mask.",
		}),
		spread: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bgsub_foreground_fraction_distribution",
			Help:    "Distribution of the fraction of foreground pixels per mask.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 10),
		}),
	}
	m.registry.MustRegister(m.frames, m.coverage, m.spread)
	if bitrate != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "bgsub_output_bitrate",
				Help: "Output bitrate in bits per second.",
			},
			func() float64 { return float64(bitrate()) },
		))
	}
	return m
}

// observe records the coverage of one mask.
func (m *metrics) observe(c float64) {
	m.frames.Inc()
	m.coverage.Set(c)
	m.spread.Observe(c)
}

// handler returns the Prometheus HTTP handler.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
