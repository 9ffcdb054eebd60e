// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"net"

	"github.com/telekom/netping/internal/icmp"
	"github.com/telekom/netping/internal/rawsock"
)

//go:generate go tool moq -out socket_moq.go . Socket

// Socket is the raw ICMP endpoint a [Session] sends its probes through.
type Socket interface {
	// Send queues b for transmission to dst. beforeSend runs immediately
	// before the datagram is written; if it fails the datagram is not sent
	// and done receives its error. done is called exactly once, from any
	// goroutine, with the number of bytes written or the failure.
	Send(b []byte, dst net.IP, beforeSend func() error, done func(n int, err error))
	// SetTTL sets the unicast TTL (IPv4) or hop limit (IPv6) used for
	// subsequent datagrams.
	SetTTL(ttl int) error
	// PauseReceive stops delivery of inbound datagrams.
	PauseReceive()
	// ResumeReceive restarts delivery of inbound datagrams.
	ResumeReceive()
	// ReceivePaused reports whether delivery is currently paused.
	ReceivePaused() bool
	// Close closes the socket. The handler's OnClose is called once afterwards.
	Close() error
}

// SocketHandler receives the events of a [Socket]. Its methods may be called
// from any goroutine.
type SocketHandler interface {
	// OnMessage delivers an inbound datagram and the address it came from.
	// The handler owns b.
	OnMessage(b []byte, src net.IP)
	// OnError reports a socket level failure.
	OnError(err error)
	// OnClose reports that the socket was closed.
	OnClose()
}

// SocketOpener opens a [Socket] of the given family that reports to h.
type SocketOpener func(family icmp.Family, h SocketHandler) (Socket, error)

// OpenRawSocket is the default [SocketOpener]. It opens a raw ICMP socket,
// which usually requires elevated privileges.
func OpenRawSocket(family icmp.Family, h SocketHandler) (Socket, error) {
	s, err := rawsock.Open(family, h)
	if err != nil {
		return nil, err
	}
	return s, nil
}
