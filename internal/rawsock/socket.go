// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package rawsock provides a raw ICMP socket with pausable reception.
//
// Inbound datagrams are read on a dedicated goroutine and handed to a
// [Handler]. IPv4 datagrams are delivered with their IP header, IPv6
// datagrams start with the ICMPv6 header. Outbound datagrams are written in
// order by a second goroutine.
package rawsock

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"syscall"

	"github.com/telekom/netping/internal/icmp"
	"golang.org/x/sys/unix"
)

const (
	// recvBufSize is large enough for any ICMP message that fits a standard MTU.
	recvBufSize = 4096
	// sendQueueLen is the number of datagrams that may wait for the writer.
	sendQueueLen = 64
)

// ErrPermission is returned by [Open] when the process may not open raw sockets.
var ErrPermission = errors.New("raw ICMP sockets require NET_RAW capabilities")

// Handler receives the events of a [Socket]. Its methods are called from the
// socket's goroutines.
type Handler interface {
	// OnMessage delivers an inbound datagram. b is not reused by the socket.
	OnMessage(b []byte, src net.IP)
	// OnError reports a failed read.
	OnError(err error)
	// OnClose is called once after the socket was closed and its reader stopped.
	OnClose()
}

// sendReq is a datagram waiting for the writer goroutine.
type sendReq struct {
	b      []byte
	dst    net.IP
	before func() error
	done   func(int, error)
}

// Socket is a raw ICMP socket.
type Socket struct {
	family  icmp.Family
	file    *os.File
	rc      syscall.RawConn
	handler Handler

	// pauseMu guards paused and stopped.
	pauseMu sync.Mutex
	resumed *sync.Cond
	paused  bool
	stopped bool

	// sendMu guards closed against concurrent enqueues.
	sendMu sync.RWMutex
	closed bool
	sendq  chan sendReq
	done   chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Open opens a raw socket of the given family and starts delivering inbound
// datagrams to h.
func Open(family icmp.Family, h Handler) (*Socket, error) {
	domain := unix.AF_INET
	if family == icmp.IPv6 {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, unix.SOCK_RAW|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, family.Protocol())
	if err != nil {
		if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
			return nil, fmt.Errorf("%w: %w", ErrPermission, err)
		}
		return nil, fmt.Errorf("failed to create raw %s socket: %w", family, err)
	}

	file := os.NewFile(uintptr(fd), fmt.Sprintf("icmp-%s", family))
	rc, err := file.SyscallConn()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to get RawConn: %w", err)
	}

	s := &Socket{
		family:  family,
		file:    file,
		rc:      rc,
		handler: h,
		sendq:   make(chan sendReq, sendQueueLen),
		done:    make(chan struct{}),
	}
	s.resumed = sync.NewCond(&s.pauseMu)

	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
	return s, nil
}

// Send queues b for transmission to dst. The socket works on a copy of b.
func (s *Socket) Send(b []byte, dst net.IP, beforeSend func() error, done func(n int, err error)) {
	req := sendReq{b: append([]byte(nil), b...), dst: dst, before: beforeSend, done: done}

	s.sendMu.RLock()
	defer s.sendMu.RUnlock()
	if s.closed {
		done(0, net.ErrClosed)
		return
	}
	s.sendq <- req
}

// SetTTL sets the unicast TTL or hop limit of subsequent datagrams.
func (s *Socket) SetTTL(ttl int) error {
	var opErr error
	err := s.rc.Control(func(fd uintptr) {
		if s.family == icmp.IPv6 {
			opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, ttl)
			return
		}
		opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TTL, ttl)
	})
	if err != nil {
		return fmt.Errorf("failed to access socket: %w", err)
	}
	if opErr != nil {
		return fmt.Errorf("failed to set ttl %d: %w", ttl, opErr)
	}
	return nil
}

// PauseReceive stops delivering inbound datagrams. They queue up in the
// kernel until reception resumes.
//
// The pause is checked before each read. A read that is already blocked
// when PauseReceive is called still completes, so at most one more
// datagram can reach the handler after the call returns.
func (s *Socket) PauseReceive() {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	s.paused = true
}

// ResumeReceive restarts delivery of inbound datagrams.
func (s *Socket) ResumeReceive() {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	s.paused = false
	s.resumed.Broadcast()
}

// ReceivePaused reports whether delivery is paused.
func (s *Socket) ReceivePaused() bool {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	return s.paused
}

// Close closes the socket. Queued datagrams fail with [net.ErrClosed].
// The handler's OnClose runs once both goroutines have stopped.
func (s *Socket) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.sendMu.Lock()
		s.closed = true
		close(s.done)
		s.sendMu.Unlock()

		s.pauseMu.Lock()
		s.stopped = true
		s.resumed.Broadcast()
		s.pauseMu.Unlock()

		err = s.file.Close()
		go func() {
			s.wg.Wait()
			s.handler.OnClose()
		}()
	})
	return err
}

// waitResumed blocks while reception is paused. It returns false once the
// socket is closed.
func (s *Socket) waitResumed() bool {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	for s.paused && !s.stopped {
		s.resumed.Wait()
	}
	return !s.stopped
}

func (s *Socket) isStopped() bool {
	s.pauseMu.Lock()
	defer s.pauseMu.Unlock()
	return s.stopped
}

func (s *Socket) readLoop() {
	defer s.wg.Done()
	buf := make([]byte, recvBufSize)
	for s.waitResumed() {
		n, src, err := s.recvFrom(buf)
		if err != nil {
			if s.isStopped() || errors.Is(err, os.ErrClosed) {
				return
			}
			s.handler.OnError(fmt.Errorf("failed to read from raw socket: %w", err))
			continue
		}
		s.handler.OnMessage(append([]byte(nil), buf[:n]...), src)
	}
}

func (s *Socket) recvFrom(buf []byte) (int, net.IP, error) {
	var (
		n     int
		from  unix.Sockaddr
		opErr error
	)
	err := s.rc.Read(func(fd uintptr) bool {
		n, from, opErr = unix.Recvfrom(int(fd), buf, 0)
		return !errors.Is(opErr, unix.EAGAIN)
	})
	if err != nil {
		return 0, nil, err
	}
	if opErr != nil {
		return 0, nil, opErr
	}
	return n, addrIP(from), nil
}

func (s *Socket) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case req := <-s.sendq:
			s.write(req)
		case <-s.done:
			for {
				select {
				case req := <-s.sendq:
					req.done(0, net.ErrClosed)
				default:
					return
				}
			}
		}
	}
}

func (s *Socket) write(req sendReq) {
	if req.before != nil {
		if err := req.before(); err != nil {
			req.done(0, err)
			return
		}
	}
	if s.family == icmp.IPv4 {
		setChecksum(req.b)
	}

	sa, err := sockaddr(req.dst)
	if err != nil {
		req.done(0, err)
		return
	}

	var opErr error
	err = s.rc.Write(func(fd uintptr) bool {
		opErr = unix.Sendto(int(fd), req.b, 0, sa)
		return !errors.Is(opErr, unix.EAGAIN)
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		req.done(0, err)
		return
	}
	req.done(len(req.b), nil)
}

// sockaddr converts dst to the socket address Sendto expects.
func sockaddr(dst net.IP) (unix.Sockaddr, error) {
	if ip4 := dst.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{}
		copy(sa.Addr[:], ip4)
		return sa, nil
	}
	if ip6 := dst.To16(); ip6 != nil {
		sa := &unix.SockaddrInet6{}
		copy(sa.Addr[:], ip6)
		return sa, nil
	}
	return nil, fmt.Errorf("invalid destination address %q", dst)
}

// addrIP returns the address of a socket address reported by Recvfrom.
func addrIP(sa unix.Sockaddr) net.IP {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IPv4(a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3])
	case *unix.SockaddrInet6:
		return append(net.IP(nil), a.Addr[:]...)
	}
	return nil
}
