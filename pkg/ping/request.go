// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"net"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Result is the outcome of a single echo request.
type Result struct {
	// Target is the address the request was sent to.
	Target net.IP `json:"target" yaml:"target"`
	// Source is the address the response came from. It is nil if no
	// response arrived.
	Source net.IP `json:"source,omitempty" yaml:"source,omitempty"`
	// TTL is the TTL the request was sent with.
	TTL int `json:"ttl" yaml:"ttl"`
	// Sent is the time of the first successful transmission.
	Sent time.Time `json:"sent" yaml:"sent"`
	// Received is the time the response arrived.
	Received time.Time `json:"received" yaml:"received"`
	// Err is nil if the target answered with an echo reply.
	Err error `json:"-" yaml:"-"`
}

// RTT returns the round trip time, or 0 if no response arrived.
func (r Result) RTT() time.Duration {
	if r.Sent.IsZero() || r.Received.IsZero() {
		return 0
	}
	return r.Received.Sub(r.Sent)
}

// Callback receives the result of a request. It runs on the session's
// goroutine and must not block or call [Session.Close].
type Callback func(Result)

// state is the position of a request in its lifecycle.
type state int

const (
	// stateAwaitingSend means a transmission was initiated but not yet confirmed.
	stateAwaitingSend state = iota
	// stateAwaitingReply means the probe is on the wire and its timer is armed.
	stateAwaitingReply
	// stateDone means the request completed and its callback ran.
	stateDone
)

// request is an echo request pending in a session's table.
type request struct {
	id      uint16
	target  net.IP
	ttl     int
	retries int
	timeout time.Duration
	buf     []byte

	state state
	// attempt counts transmissions. Send confirmations and timer firings
	// carrying an older attempt are stale.
	attempt int
	sent    time.Time
	timer   *time.Timer
	span    trace.Span

	complete Callback
}

// stopTimer disarms the retransmission timer, if any.
func (r *request) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// EventKind tells the events of a session apart.
type EventKind int

const (
	// EventError reports a socket level failure. Pending requests are unaffected.
	EventError EventKind = iota + 1
	// EventClose reports that the session's socket was closed.
	EventClose
)

func (k EventKind) String() string {
	switch k {
	case EventError:
		return "error"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// Event is a session level notification.
type Event struct {
	Kind EventKind
	// Err is set for [EventError].
	Err error
}
