// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/netping/internal/tracker"
	"github.com/telekom/netping/test"
)

// traceOutcome collects what a trace reported through its callbacks.
type traceOutcome struct {
	hops []Hop
	err  error
}

// runTrace starts a trace and waits for its done callback. stopAfter > 0
// makes the feed stop the trace after that many hops.
func runTrace(t *testing.T, s *Session, target net.IP, opts TraceOptions, stopAfter int) traceOutcome {
	t.Helper()
	var hops []Hop
	done := make(chan traceOutcome, 1)
	calls := 0

	err := s.TraceRoute(target, opts,
		func(h Hop) bool {
			hops = append(hops, h)
			return stopAfter > 0 && len(hops) >= stopAfter
		},
		func(got net.IP, err error) {
			calls++
			assert.True(t, got.Equal(target), "done reported for %s, want %s", got, target)
			done <- traceOutcome{hops: hops, err: err}
		},
	)
	require.NoError(t, err)
	out := wait(t, done)

	// done must not run again, even for late events.
	time.Sleep(20 * time.Millisecond)
	inLoop(t, s, func() { assert.Equal(t, 1, calls) })
	return out
}

func hopTTLs(hops []Hop) []int {
	ttls := make([]int, 0, len(hops))
	for _, h := range hops {
		ttls = append(ttls, h.TTL)
	}
	return ttls
}

func TestSession_TraceRoute(t *testing.T) {
	router := routerV4(t)
	other := net.IPv4(198, 51, 100, 2).To4()

	tests := []struct {
		name     string
		respond  func(t *testing.T) responder
		opts     TraceOptions
		stop     int
		wantTTLs []int
		wantErr  error
	}{
		{
			name:     "target reached behind two routers",
			respond:  func(t *testing.T) responder { return hopsAway(t, router, other) },
			opts:     TraceOptions{},
			wantTTLs: []int{1, 2, 3},
		},
		{
			name:     "start ttl skips near hops",
			respond:  func(t *testing.T) responder { return hopsAway(t, router, other) },
			opts:     TraceOptions{StartTTL: 2},
			wantTTLs: []int{2, 3},
		},
		{
			name:     "every hop times out",
			respond:  func(*testing.T) responder { return nil },
			opts:     TraceOptions{MaxHopTimeouts: 3},
			wantTTLs: []int{1, 2, 3},
			wantErr:  ErrTooManyTimeouts,
		},
		{
			name:     "max ttl reached before timeout budget",
			respond:  func(*testing.T) responder { return nil },
			opts:     TraceOptions{MaxTTL: 2, MaxHopTimeouts: 5},
			wantTTLs: []int{1, 2},
			wantErr:  ErrTimeout,
		},
		{
			name:     "max ttl reached while every hop times out",
			respond:  func(*testing.T) responder { return nil },
			opts:     TraceOptions{StartTTL: 1, MaxTTL: 3, MaxHopTimeouts: 3},
			wantTTLs: []int{1, 2, 3},
			wantErr:  ErrTimeout,
		},
		{
			name:     "max ttl reached on a router",
			respond:  func(t *testing.T) responder { return hopsAway(t, router, router, router) },
			opts:     TraceOptions{MaxTTL: 2},
			wantTTLs: []int{1, 2},
			wantErr:  ErrTimeExceeded,
		},
		{
			name:     "answered hop resets the timeout count",
			respond:  func(t *testing.T) responder { return hopsAway(t, nil, router, nil, nil, nil) },
			opts:     TraceOptions{MaxHopTimeouts: 2},
			wantTTLs: []int{1, 2, 3, 4},
			wantErr:  ErrTooManyTimeouts,
		},
		{
			name:     "feed stops the trace",
			respond:  func(t *testing.T) responder { return hopsAway(t, router, other) },
			opts:     TraceOptions{},
			stop:     1,
			wantTTLs: []int{1},
			wantErr:  ErrTraceStopped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeNet()
			f.setResponder(tt.respond(t))
			s := newTestSession(t, f, Options{Retries: 0, Timeout: 30 * time.Millisecond})
			target := targetV4(t)

			out := runTrace(t, s, target, tt.opts, tt.stop)

			if tt.wantErr != nil {
				assert.ErrorIs(t, out.err, tt.wantErr)
			} else {
				assert.NoError(t, out.err)
			}
			assert.Equal(t, tt.wantTTLs, hopTTLs(out.hops))

			var probeTTLs []int
			for _, p := range f.sent() {
				probeTTLs = append(probeTTLs, p.ttl)
			}
			assert.Equal(t, tt.wantTTLs, probeTTLs, "probes were not sent with increasing TTLs")

			for _, h := range out.hops {
				assert.True(t, h.Target.Equal(target))
			}
		})
	}
}

func TestSession_TraceRoute_hops(t *testing.T) {
	f := newFakeNet()
	router := routerV4(t)
	f.setResponder(hopsAway(t, router, nil))
	s := newTestSession(t, f, Options{Retries: 1, Timeout: 30 * time.Millisecond})
	target := targetV4(t)

	out := runTrace(t, s, target, TraceOptions{}, 0)
	require.NoError(t, out.err)
	require.Len(t, out.hops, 3)

	assert.True(t, out.hops[0].Source.Equal(router))
	assert.ErrorIs(t, out.hops[0].Err, ErrTimeExceeded)
	assert.False(t, out.hops[0].Reached())
	assert.False(t, out.hops[0].Received.IsZero())

	assert.Nil(t, out.hops[1].Source)
	assert.ErrorIs(t, out.hops[1].Err, ErrTimeout)
	assert.Equal(t, " 2  *", out.hops[1].String())

	assert.True(t, out.hops[2].Source.Equal(target))
	assert.True(t, out.hops[2].Reached())

	// Every hop gets a fresh identifier; the timed out hop was retried once.
	ids := map[uint16]int{}
	for _, p := range f.sent() {
		ids[p.id]++
	}
	assert.Len(t, ids, 3)
	assert.Len(t, f.sent(), 4)
}

func TestSession_TraceRoute_tooManyRequests(t *testing.T) {
	f := newFakeNet()
	s := newTestSession(t, f, Options{})

	inLoop(t, s, func() {
		for id := 1; id <= tracker.MaxID; id++ {
			s.reqs.Insert(uint16(id), &request{id: uint16(id), complete: func(Result) {}}) // #nosec G115
		}
	})

	out := runTrace(t, s, targetV4(t), TraceOptions{}, 0)
	assert.ErrorIs(t, out.err, ErrTooManyRequests)
	assert.Empty(t, out.hops)
	assert.Empty(t, f.sent())
}

func TestSession_TraceRoute_closed(t *testing.T) {
	f := newFakeNet()
	s := newTestSession(t, f, Options{Retries: 0, Timeout: time.Minute})

	done := make(chan error, 1)
	require.NoError(t, s.TraceRoute(targetV4(t), TraceOptions{}, nil, func(_ net.IP, err error) { done <- err }))
	f.nextProbe(t)

	require.NoError(t, s.Close())
	err := wait(t, done)
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Len(t, f.sent(), 1, "trace continued on a closed session")
}

func TestSession_TraceRoute_invalid(t *testing.T) {
	f := newFakeNet()
	s := newTestSession(t, f, Options{})

	tests := []struct {
		name   string
		target net.IP
		opts   TraceOptions
	}{
		{name: "start beyond max", target: targetV4(t), opts: TraceOptions{StartTTL: 10, MaxTTL: 5}},
		{name: "max ttl too large", target: targetV4(t), opts: TraceOptions{MaxTTL: 300}},
		{name: "foreign family", target: test.ToIPOrFail(t, test.TargetV6)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.TraceRoute(tt.target, tt.opts, nil, func(net.IP, error) {
				t.Error("done ran for a rejected trace")
			})
			assert.Error(t, err)
		})
	}
}

func TestSession_Trace(t *testing.T) {
	f := newFakeNet()
	router := routerV4(t)
	f.setResponder(hopsAway(t, router))
	s := newTestSession(t, f, Options{Retries: 0, Timeout: time.Second})

	hops, err := s.Trace(context.Background(), targetV4(t), TraceOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, hopTTLs(hops))
	assert.True(t, hops[0].Source.Equal(router))
}

func TestSession_Trace_contextCancelled(t *testing.T) {
	f := newFakeNet()
	s := newTestSession(t, f, Options{Retries: 0, Timeout: time.Minute})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	hops, err := s.Trace(ctx, targetV4(t), TraceOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, hops)
}
