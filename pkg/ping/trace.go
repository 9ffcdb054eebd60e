// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Hop is the outcome of probing one TTL of a trace.
type Hop struct {
	// Target is the destination of the trace.
	Target net.IP `json:"target" yaml:"target"`
	// Source is the router or target that answered, nil on timeout.
	Source net.IP `json:"source,omitempty" yaml:"source,omitempty"`
	// Name is the reverse DNS name of Source, if it was resolved.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// TTL is the TTL the probe was sent with.
	TTL int `json:"ttl" yaml:"ttl"`
	// Sent is the time of the first successful transmission.
	Sent time.Time `json:"sent" yaml:"sent"`
	// Received is the time the response arrived.
	Received time.Time `json:"received" yaml:"received"`
	// Err is nil if the target itself answered. Intermediate routers answer
	// with an error matching [ErrTimeExceeded].
	Err error `json:"-" yaml:"-"`
}

// RTT returns the round trip time of the hop, or 0 if no response arrived.
func (h Hop) RTT() time.Duration {
	return Result{Sent: h.Sent, Received: h.Received}.RTT()
}

// Reached reports whether the target itself answered this hop.
func (h Hop) Reached() bool {
	return h.Err == nil
}

func (h Hop) String() string {
	switch {
	case h.Source == nil:
		return fmt.Sprintf("%2d  *", h.TTL)
	case h.Name != "":
		return fmt.Sprintf("%2d  %s (%s)  %s", h.TTL, h.Name, h.Source, h.RTT())
	default:
		return fmt.Sprintf("%2d  %s  %s", h.TTL, h.Source, h.RTT())
	}
}

// FeedFunc receives every hop of a trace in TTL order. Returning true stops
// the trace with [ErrTraceStopped]. It runs on the session's goroutine.
type FeedFunc func(hop Hop) (stop bool)

// DoneFunc is called exactly once when a trace ends. err is nil if the
// target answered. It runs on the session's goroutine.
type DoneFunc func(target net.IP, err error)

// traceRun is the state of one trace.
type traceRun struct {
	target net.IP
	opts   TraceOptions
	// timeouts counts consecutive hops that timed out.
	timeouts int
	feed     FeedFunc
	done     DoneFunc
	ctx      context.Context
	span     trace.Span
	finished bool
}

// TraceRoute probes target with increasing TTLs, reporting each hop to feed,
// until the target answers or opts limit the trace. done is called exactly
// once with the outcome. It returns an error without calling done if target
// or opts are invalid or the session is closed.
func (s *Session) TraceRoute(target net.IP, opts TraceOptions, feed FeedFunc, done DoneFunc) error {
	target, err := s.checkTarget(target)
	if err != nil {
		return err
	}
	opts = opts.withDefaults()
	if err = opts.Validate(); err != nil {
		return fmt.Errorf("invalid trace options: %w", err)
	}
	if feed == nil {
		feed = func(Hop) bool { return false }
	}
	if done == nil {
		done = func(net.IP, error) {}
	}

	if !s.mbox.post(func() { s.startTrace(target, opts, feed, done) }) {
		return ErrSessionClosed
	}
	return nil
}

// Trace runs a trace to target and returns its hops in TTL order.
// Cancelling ctx stops the trace at the next hop.
func (s *Session) Trace(ctx context.Context, target net.IP, opts TraceOptions) ([]Hop, error) {
	var hops []Hop
	hopCh := make(chan Hop)
	errCh := make(chan error, 1)

	err := s.TraceRoute(target, opts,
		func(h Hop) bool {
			select {
			case hopCh <- h:
				return false
			case <-ctx.Done():
				return true
			}
		},
		func(_ net.IP, err error) { errCh <- err },
	)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case h := <-hopCh:
			hops = append(hops, h)
		case err := <-errCh:
			return hops, err
		case <-ctx.Done():
			return hops, ctx.Err()
		}
	}
}

func (s *Session) startTrace(target net.IP, opts TraceOptions, feed FeedFunc, done DoneFunc) {
	ctx, span := s.tracer.Start(s.ctx, "trace "+target.String(), trace.WithAttributes(
		attribute.Stringer("traceroute.target.address", target),
		attribute.Int("traceroute.start_ttl", opts.StartTTL),
		attribute.Int("traceroute.max_ttl", opts.MaxTTL),
	))
	t := &traceRun{
		target: target,
		opts:   opts,
		feed:   feed,
		done:   done,
		ctx:    ctx,
		span:   span,
	}
	s.log.DebugContext(ctx, "Starting trace", "target", target, "startTtl", opts.StartTTL, "maxTtl", opts.MaxTTL)
	s.probeHop(t, opts.StartTTL)
}

// probeHop issues the probe of t at ttl.
func (s *Session) probeHop(t *traceRun, ttl int) {
	req, err := s.newRequest(t.ctx, t.target, ttl, func(res Result) { s.onHop(t, res) })
	if err != nil {
		s.endTrace(t, err)
		return
	}
	s.transmit(req)
}

// onHop reports a completed probe to the feed and decides how t continues.
func (s *Session) onHop(t *traceRun, res Result) {
	hop := Hop{
		Target:   t.target,
		Source:   res.Source,
		TTL:      res.TTL,
		Sent:     res.Sent,
		Received: res.Received,
		Err:      res.Err,
	}
	t.span.AddEvent("Hop completed", trace.WithAttributes(
		attribute.Int("traceroute.target.ttl", hop.TTL),
		attribute.Stringer("traceroute.hop.address", hop.Source),
		attribute.String("traceroute.hop.outcome", outcome(hop.Err)),
	))

	if t.feed(hop) {
		s.endTrace(t, ErrTraceStopped)
		return
	}
	if res.Err == nil {
		s.endTrace(t, nil)
		return
	}
	if errors.Is(res.Err, ErrSessionClosed) || res.TTL >= t.opts.MaxTTL {
		s.endTrace(t, res.Err)
		return
	}

	if IsTimeout(res.Err) {
		t.timeouts++
		if t.timeouts >= t.opts.MaxHopTimeouts {
			s.endTrace(t, ErrTooManyTimeouts)
			return
		}
	} else {
		t.timeouts = 0
	}
	s.probeHop(t, res.TTL+1)
}

func (s *Session) endTrace(t *traceRun, err error) {
	if t.finished {
		return
	}
	t.finished = true
	s.log.DebugContext(t.ctx, "Trace finished", "target", t.target, "error", err)
	endSpan(t.span, err)
	t.done(t.target, err)
}
