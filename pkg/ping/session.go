// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/telekom/netping/internal/icmp"
	"github.com/telekom/netping/internal/logger"
	"github.com/telekom/netping/internal/tracker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the name of the OpenTelemetry tracer of this package.
const tracerName = "github.com/telekom/netping/pkg/ping"

// eventBufferSize is the number of events kept for a slow reader of [Session.Events].
const eventBufferSize = 16

// Session sends ICMP echo requests over one raw socket and correlates the
// responses with the requests that caused them.
//
// All bookkeeping happens on a single goroutine owned by the session. The
// socket, the retransmission timers and the callers only post work to it, so
// callbacks never run concurrently with each other.
type Session struct {
	opts   Options
	tag    uint16
	family string

	socket  Socket
	reqs    *tracker.Table[*request]
	metrics *Metrics
	tracer  trace.Tracer
	ctx     context.Context
	log     *slog.Logger
	now     func() time.Time

	// appliedTTL caches the TTL last set on the socket. It is only touched
	// from beforeSend, which the socket runs serially.
	appliedTTL atomic.Int64

	mbox   *mailbox
	events chan Event
	done   chan struct{}

	// Owned by the loop.
	closed        bool
	closeNotified bool
	closeErr      error

	closeOnce sync.Once
}

// SessionOption configures optional collaborators of a [Session].
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	opener  SocketOpener
	metrics *Metrics
}

// WithSocketOpener replaces the raw socket a session sends through.
func WithSocketOpener(opener SocketOpener) SessionOption {
	return func(c *sessionConfig) {
		c.opener = opener
	}
}

// WithMetrics makes the session record into m instead of private collectors.
func WithMetrics(m *Metrics) SessionOption {
	return func(c *sessionConfig) {
		c.metrics = m
	}
}

// New opens the socket of a session and starts its goroutine.
// ctx carries the logger and the parent span of the session's requests.
func New(ctx context.Context, opts Options, options ...SessionOption) (*Session, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session options: %w", err)
	}

	cfg := sessionConfig{opener: OpenRawSocket}
	for _, o := range options {
		o(&cfg)
	}
	if cfg.metrics == nil {
		cfg.metrics = NewMetrics()
	}

	s := &Session{
		opts:    opts,
		tag:     icmp.SessionTag(opts.SessionID),
		family:  opts.Family.String(),
		reqs:    tracker.New[*request](),
		metrics: cfg.metrics,
		tracer:  otel.Tracer(tracerName),
		ctx:     ctx,
		log:     logger.FromContext(ctx).With("family", opts.Family.String()),
		now:     time.Now,
		mbox:    newMailbox(),
		events:  make(chan Event, eventBufferSize),
		done:    make(chan struct{}),
	}
	s.reqs.OnIdle(s.onIdle)

	sock, err := cfg.opener(opts.Family, &socketEvents{session: s})
	if err != nil {
		return nil, wrapError(ctx, err, "failed to open %s socket", opts.Family)
	}
	s.socket = sock

	go s.run()
	s.log.DebugContext(ctx, "Session opened", "tag", s.tag, "packetSize", opts.PacketSize, "retries", opts.Retries, "timeout", opts.Timeout)
	return s, nil
}

// Family returns the address family of the session.
func (s *Session) Family() icmp.Family {
	return s.opts.Family
}

// Events returns the session level notifications. The channel is closed once
// the session is closed. Events are dropped while the buffer is full.
func (s *Session) Events() <-chan Event {
	return s.events
}

// PingHost sends an echo request to target and calls cb exactly once with
// its outcome. It returns an error without calling cb if target is not an
// address of the session's family or the session is closed.
func (s *Session) PingHost(target net.IP, cb Callback) error {
	target, err := s.checkTarget(target)
	if err != nil {
		return err
	}
	if cb == nil {
		cb = func(Result) {}
	}
	if !s.mbox.post(func() { s.startPing(target, cb) }) {
		return ErrSessionClosed
	}
	return nil
}

// Ping sends an echo request to target and waits for its outcome.
// The returned error equals the result's Err unless ctx ended first.
func (s *Session) Ping(ctx context.Context, target net.IP) (Result, error) {
	ch := make(chan Result, 1)
	if err := s.PingHost(target, func(r Result) { ch <- r }); err != nil {
		return Result{Target: target}, err
	}
	select {
	case <-ctx.Done():
		return Result{Target: target}, ctx.Err()
	case r := <-ch:
		return r, r.Err
	}
}

// Close fails every pending request, closes the socket and stops the
// session's goroutine. It waits for the callbacks of the failed requests, so
// it must not be called from a [Callback], [FeedFunc] or [DoneFunc].
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mbox.post(s.shutdown)
		s.mbox.close()
	})
	<-s.done
	return s.closeErr
}

// checkTarget returns target in the representation of the session's family.
func (s *Session) checkTarget(target net.IP) (net.IP, error) {
	if s.opts.Family == icmp.IPv4 {
		if ip := target.To4(); ip != nil {
			return ip, nil
		}
	} else if target.To4() == nil && target.To16() != nil {
		return target.To16(), nil
	}
	return nil, fmt.Errorf("%w: %q is not an %s address", ErrFamilyMismatch, target, s.opts.Family)
}

func (s *Session) run() {
	defer close(s.done)
	defer close(s.events)
	for {
		fns, ok := s.mbox.wait()
		if !ok {
			return
		}
		for _, fn := range fns {
			fn()
		}
	}
}

func (s *Session) startPing(target net.IP, cb Callback) {
	req, err := s.newRequest(s.ctx, target, s.opts.TTL, cb)
	if err != nil {
		s.metrics.completed(s.family, err, 0)
		cb(Result{Target: target, TTL: s.opts.TTL, Err: err})
		return
	}
	s.transmit(req)
}

// newRequest allocates an identifier for a probe to target and registers it.
func (s *Session) newRequest(ctx context.Context, target net.IP, ttl int, cb Callback) (*request, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	id, ok := s.reqs.Allocate()
	if !ok {
		s.log.WarnContext(ctx, "Request identifiers exhausted", "pending", s.reqs.Len())
		return nil, ErrTooManyRequests
	}

	_, span := s.tracer.Start(ctx, "ping "+target.String(), trace.WithAttributes(
		attribute.Stringer("ping.target.address", target),
		attribute.Int("ping.target.ttl", ttl),
		attribute.Int("ping.request.id", int(id)),
	))

	req := &request{
		id:       id,
		target:   target,
		ttl:      ttl,
		retries:  s.opts.Retries,
		timeout:  s.opts.Timeout,
		buf:      icmp.Encode(id, s.tag, s.opts.Family, s.opts.PacketSize),
		span:     span,
		complete: cb,
	}
	s.reqs.Insert(id, req)
	s.metrics.issued(s.family)
	s.metrics.setPending(s.family, s.reqs.Len())
	return req, nil
}

// transmit hands the probe of req to the socket.
func (s *Session) transmit(req *request) {
	if s.socket.ReceivePaused() {
		s.socket.ResumeReceive()
	}

	req.attempt++
	req.state = stateAwaitingSend
	attempt, ttl := req.attempt, req.ttl
	s.socket.Send(req.buf, req.target,
		func() error { return s.applyTTL(ttl) },
		func(_ int, err error) {
			s.mbox.post(func() { s.onSent(req, attempt, err) })
		},
	)
}

// applyTTL sets ttl on the socket unless it is already in effect.
func (s *Session) applyTTL(ttl int) error {
	if s.appliedTTL.Load() == int64(ttl) {
		return nil
	}
	if err := s.socket.SetTTL(ttl); err != nil {
		return err
	}
	s.appliedTTL.Store(int64(ttl))
	return nil
}

func (s *Session) onSent(req *request, attempt int, err error) {
	if req.state != stateAwaitingSend || req.attempt != attempt {
		return
	}
	if err != nil {
		s.remove(req)
		s.log.DebugContext(s.ctx, "Failed to send echo request", "target", req.target, "id", req.id, "error", err)
		s.finish(req, Result{Err: &TransportError{Op: "send", Err: err}})
		return
	}

	if req.sent.IsZero() {
		req.sent = s.now()
	}
	req.state = stateAwaitingReply
	req.timer = time.AfterFunc(req.timeout, func() {
		s.mbox.post(func() { s.onTimeout(req, attempt) })
	})
}

func (s *Session) onTimeout(req *request, attempt int) {
	if req.state != stateAwaitingReply || req.attempt != attempt {
		return
	}
	req.timer = nil
	if req.retries > 0 {
		req.retries--
		s.metrics.retried(s.family)
		s.log.DebugContext(s.ctx, "Retrying echo request", "target", req.target, "id", req.id, "retriesLeft", req.retries)
		s.transmit(req)
		return
	}
	s.remove(req)
	s.finish(req, Result{Err: ErrTimeout})
}

func (s *Session) onMessage(b []byte, src net.IP) {
	h, ok := icmp.Decode(b, s.opts.Family, s.tag)
	if !ok {
		return
	}
	// Our own probes show up when pinging a local address.
	if h.Type == s.opts.Family.EchoRequest() {
		return
	}
	req, ok := s.reqs.Lookup(h.ID)
	if !ok {
		s.log.DebugContext(s.ctx, "Ignoring response without pending request", "id", h.ID, "source", src)
		return
	}

	s.remove(req)
	now := s.now()
	if req.sent.IsZero() {
		req.sent = now
	}
	s.finish(req, Result{Source: src, Received: now, Err: classify(s.opts.Family, h, src)})
}

func (s *Session) onSocketError(err error) {
	s.log.WarnContext(s.ctx, "Socket reported an error", "error", err)
	s.emit(Event{Kind: EventError, Err: err})
}

func (s *Session) onSocketClose() {
	s.notifyClose()
	if !s.closed {
		s.closed = true
		s.log.WarnContext(s.ctx, "Socket closed unexpectedly", "pending", s.reqs.Len())
		s.flush(errSocketClosed)
	}
}

// shutdown runs on the loop as the last function posted by Close.
func (s *Session) shutdown() {
	if !s.closed {
		s.closed = true
		s.flush(errSocketForciblyClosed)
	}
	s.closeErr = s.socket.Close()
	s.notifyClose()
	s.log.DebugContext(s.ctx, "Session closed")
}

// onIdle pauses reception once no request is pending.
func (s *Session) onIdle() {
	s.socket.PauseReceive()
}

// remove deletes req from the table if it is still registered there.
func (s *Session) remove(req *request) {
	if cur, ok := s.reqs.Lookup(req.id); ok && cur == req {
		s.reqs.Remove(req.id)
	}
	s.metrics.setPending(s.family, s.reqs.Len())
}

// flush fails every pending request with err.
func (s *Session) flush(err error) {
	s.reqs.Flush(func(_ uint16, req *request) {
		s.finish(req, Result{Err: err})
	})
	s.metrics.setPending(s.family, s.reqs.Len())
}

// finish completes req with res. It must be called at most once per request
// after req left the table.
func (s *Session) finish(req *request, res Result) {
	if req.state == stateDone {
		return
	}
	req.state = stateDone
	req.stopTimer()

	res.Target = req.target
	res.TTL = req.ttl
	res.Sent = req.sent
	s.metrics.completed(s.family, res.Err, res.RTT())
	endSpan(req.span, res.Err)
	req.complete(res)
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.DebugContext(s.ctx, "Dropping session event", "kind", ev.Kind.String())
	}
}

func (s *Session) notifyClose() {
	if s.closeNotified {
		return
	}
	s.closeNotified = true
	s.emit(Event{Kind: EventClose})
}

// socketEvents forwards the events of the socket into the session's loop.
type socketEvents struct {
	session *Session
}

func (e *socketEvents) OnMessage(b []byte, src net.IP) {
	e.session.mbox.post(func() { e.session.onMessage(b, src) })
}

func (e *socketEvents) OnError(err error) {
	e.session.mbox.post(func() { e.session.onSocketError(err) })
}

func (e *socketEvents) OnClose() {
	e.session.mbox.post(e.session.onSocketClose)
}
