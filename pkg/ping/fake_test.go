// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"context"
	"encoding/binary"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/require"
	"github.com/telekom/netping/internal/icmp"
	"github.com/telekom/netping/internal/logger"
	"github.com/telekom/netping/test"
)

const (
	testSessionID = 4242
	// waitTimeout bounds every wait for an asynchronous outcome.
	waitTimeout = 2 * time.Second
)

var localV4 = net.IPv4(192, 168, 1, 10).To4()

// probe is a datagram a session handed to the fake socket.
type probe struct {
	b   []byte
	dst net.IP
	ttl int
	tag uint16
	id  uint16
}

// responder decides how the network answers a probe. A nil reply drops it.
type responder func(p probe) (reply []byte, src net.IP)

// fakeNet is a socket whose network is simulated by a responder.
type fakeNet struct {
	mock    *SocketMock
	handler SocketHandler

	paused atomic.Bool
	ttl    atomic.Int64

	mu       sync.Mutex
	respond  responder
	sendErr  error
	ttlErr   error
	probes   []probe
	sentCh   chan probe
	closedCh chan struct{}
}

func newFakeNet() *fakeNet {
	f := &fakeNet{
		sentCh:   make(chan probe, 1024),
		closedCh: make(chan struct{}),
	}
	f.mock = &SocketMock{
		SendFunc: f.send,
		SetTTLFunc: func(ttl int) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.ttlErr != nil {
				return f.ttlErr
			}
			f.ttl.Store(int64(ttl))
			return nil
		},
		PauseReceiveFunc:  func() { f.paused.Store(true) },
		ResumeReceiveFunc: func() { f.paused.Store(false) },
		ReceivePausedFunc: f.paused.Load,
		CloseFunc: func() error {
			select {
			case <-f.closedCh:
			default:
				close(f.closedCh)
			}
			return nil
		},
	}
	return f
}

func (f *fakeNet) open(_ icmp.Family, h SocketHandler) (Socket, error) {
	f.handler = h
	return f.mock, nil
}

func (f *fakeNet) send(b []byte, dst net.IP, beforeSend func() error, done func(int, error)) {
	if err := beforeSend(); err != nil {
		done(0, err)
		return
	}

	p := probe{
		b:   append([]byte(nil), b...),
		dst: dst,
		ttl: int(f.ttl.Load()),
		tag: binary.BigEndian.Uint16(b[4:6]),
		id:  binary.BigEndian.Uint16(b[6:8]),
	}

	f.mu.Lock()
	f.probes = append(f.probes, p)
	sendErr, respond := f.sendErr, f.respond
	f.mu.Unlock()

	f.sentCh <- p
	if sendErr != nil {
		done(0, sendErr)
		return
	}
	done(len(b), nil)

	if respond == nil {
		return
	}
	if reply, src := respond(p); reply != nil {
		f.handler.OnMessage(reply, src)
	}
}

func (f *fakeNet) setResponder(r responder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respond = r
}

func (f *fakeNet) setSendErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

func (f *fakeNet) setTTLErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ttlErr = err
}

func (f *fakeNet) sent() []probe {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]probe(nil), f.probes...)
}

// nextProbe waits for the next datagram handed to the socket.
func (f *fakeNet) nextProbe(t *testing.T) probe {
	t.Helper()
	select {
	case p := <-f.sentCh:
		return p
	case <-time.After(waitTimeout):
		t.Fatal("no probe was sent")
		return probe{}
	}
}

// newTestSession opens a session on f and closes it when the test ends.
func newTestSession(t *testing.T, f *fakeNet, opts Options, options ...SessionOption) *Session {
	t.Helper()
	ctx, cancel := logger.NewContextWithLogger(context.Background())
	t.Cleanup(cancel)

	opts.SessionID = testSessionID
	s, err := New(ctx, opts, append([]SessionOption{WithSocketOpener(f.open)}, options...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// inLoop runs fn on the session's goroutine and waits for it.
func inLoop(t *testing.T, s *Session, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.True(t, s.mbox.post(func() {
		defer close(done)
		fn()
	}), "session is closed")
	wait(t, done)
}

func wait[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting")
		var zero T
		return zero
	}
}

func serialize(t testing.TB, ls ...gopacket.SerializableLayer) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}, ls...)
	require.NoError(t, err, "failed to serialize layers")
	return buf.Bytes()
}

// ipv4Wrap prepends an IPv4 header to payload, as a raw IPv4 socket delivers it.
func ipv4Wrap(t testing.TB, src, dst net.IP, payload []byte) []byte {
	t.Helper()
	return serialize(t,
		&layers.IPv4{Version: 4, TTL: 64, Protocol: layers.IPProtocolICMPv4, SrcIP: src, DstIP: dst},
		gopacket.Payload(payload),
	)
}

// echoReply answers p as its target would.
func echoReply(t testing.TB, p probe) []byte {
	t.Helper()
	msg := append([]byte(nil), p.b...)
	if p.dst.To4() == nil {
		msg[0] = byte(layers.ICMPv6TypeEchoReply)
		return msg
	}
	msg[0] = layers.ICMPv4TypeEchoReply
	return ipv4Wrap(t, p.dst, localV4, msg)
}

// icmpError answers p with an ICMPv4 error from router quoting the probe.
func icmpError(t testing.TB, p probe, router net.IP, typ, code uint8) []byte {
	t.Helper()
	quoted := ipv4Wrap(t, localV4, p.dst, p.b)
	msg := serialize(t,
		&layers.ICMPv4{TypeCode: layers.CreateICMPv4TypeCode(typ, code)},
		gopacket.Payload(quoted),
	)
	return ipv4Wrap(t, router, localV4, msg)
}

// replyFromTarget is a responder for a reachable target.
func replyFromTarget(t testing.TB) responder {
	return func(p probe) ([]byte, net.IP) {
		return echoReply(t, p), p.dst
	}
}

// hopsAway is a responder for a target behind routers. Probes with a TTL
// below the target's distance are answered by the router at that TTL, a
// nil router drops them.
func hopsAway(t testing.TB, routers ...net.IP) responder {
	return func(p probe) ([]byte, net.IP) {
		if p.ttl > len(routers) {
			return echoReply(t, p), p.dst
		}
		r := routers[p.ttl-1]
		if r == nil {
			return nil, nil
		}
		return icmpError(t, p, r, layers.ICMPv4TypeTimeExceeded, 0), r
	}
}

func targetV4(t testing.TB) net.IP {
	return test.ToIPOrFail(t, test.TargetV4).To4()
}

func routerV4(t testing.TB) net.IP {
	return test.ToIPOrFail(t, test.RouterV4).To4()
}
