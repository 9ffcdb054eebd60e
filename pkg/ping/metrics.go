// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a completed request, used as metric label values.
const (
	outcomeSuccess = "success"
	outcomeTimeout = "timeout"
	outcomeProto   = "protocol_error"
	outcomeSend    = "send_error"
	outcomeClosed  = "closed"
	outcomeFull    = "too_many_requests"
)

// Metrics defines the metric collectors of ping sessions. A single instance
// may be shared by sessions of different families.
type Metrics struct {
	requests  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	responses *prometheus.CounterVec
	pending   *prometheus.GaugeVec
	rtt       *prometheus.HistogramVec
}

// NewMetrics initializes the metric collectors of ping sessions.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netping_requests_total",
				Help: "Total number of requests issued, including trace hops.",
			},
			[]string{"family"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netping_retries_total",
				Help: "Total number of probes retransmitted after a timeout.",
			},
			[]string{"family"},
		),
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "netping_responses_total",
				Help: "Total number of completed requests by outcome.",
			},
			[]string{"family", "outcome"},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "netping_pending_requests",
				Help: "Number of requests waiting for a response.",
			},
			[]string{"family"},
		),
		rtt: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "netping_rtt_seconds",
				Help:    "Round trip time of answered requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"family"},
		),
	}
}

// GetCollectors returns all metric collectors.
func (m *Metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requests,
		m.retries,
		m.responses,
		m.pending,
		m.rtt,
	}
}

func (m *Metrics) issued(family string) {
	m.requests.WithLabelValues(family).Inc()
}

func (m *Metrics) retried(family string) {
	m.retries.WithLabelValues(family).Inc()
}

func (m *Metrics) setPending(family string, n int) {
	m.pending.WithLabelValues(family).Set(float64(n))
}

// completed records the outcome of a request and, if it was answered, its round trip time.
func (m *Metrics) completed(family string, err error, rtt time.Duration) {
	m.responses.WithLabelValues(family, outcome(err)).Inc()
	if rtt > 0 {
		m.rtt.WithLabelValues(family).Observe(rtt.Seconds())
	}
}

// outcome maps the result of a request to its metric label value.
func outcome(err error) string {
	var pErr *ProtocolError
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, ErrTimeout):
		return outcomeTimeout
	case errors.Is(err, ErrSessionClosed):
		return outcomeClosed
	case errors.Is(err, ErrTooManyRequests):
		return outcomeFull
	case errors.As(err, &pErr):
		return outcomeProto
	default:
		return outcomeSend
	}
}
