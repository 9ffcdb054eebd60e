// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTimeout is returned when no reply arrived before the request's
	// timeout expired on the last allowed attempt.
	ErrTimeout = errors.New("request timed out")
	// ErrTooManyRequests is returned when every request identifier of the
	// session is in use.
	ErrTooManyRequests = errors.New("too many requests outstanding")
	// ErrSessionClosed is returned for requests that were still pending when
	// the session or its socket was closed, and for requests issued afterwards.
	ErrSessionClosed = errors.New("session closed")
	// ErrTooManyTimeouts is returned when a trace exceeded its hop timeout budget.
	ErrTooManyTimeouts = errors.New("too many timeouts")
	// ErrTraceStopped is returned when a trace's feed asked it to stop.
	ErrTraceStopped = errors.New("trace stopped by caller")
	// ErrFamilyMismatch is returned when a target is not of the session's address family.
	ErrFamilyMismatch = errors.New("target address family does not match session")
)

// Kinds of [ProtocolError]. Match them with [errors.Is].
var (
	ErrDestinationUnreachable = errors.New("destination unreachable")
	ErrSourceQuench           = errors.New("source quench")
	ErrRedirectReceived       = errors.New("redirect received")
	ErrTimeExceeded           = errors.New("time exceeded")
	ErrPacketTooBig           = errors.New("packet too big")
	ErrParameterProblem       = errors.New("parameter problem")
	ErrUnknownResponseType    = errors.New("unknown response type")
)

var (
	errSocketForciblyClosed = fmt.Errorf("socket forcibly closed: %w", ErrSessionClosed)
	errSocketClosed         = fmt.Errorf("socket closed: %w", ErrSessionClosed)
)

// ProtocolError is the outcome of a request that was answered with an ICMP
// message other than an echo reply.
type ProtocolError struct {
	// Kind is one of the ErrXxx kind errors of this package.
	Kind error
	// Type is the ICMP type of the response.
	Type uint8
	// Code is the ICMP code of the response.
	Code uint8
	// Source is the address the response came from.
	Source net.IP
}

func (e *ProtocolError) Error() string {
	if errors.Is(e.Kind, ErrUnknownResponseType) {
		return fmt.Sprintf("%v '%d' from %s", e.Kind, e.Type, e.Source)
	}
	return fmt.Sprintf("%v (code %d) from %s", e.Kind, e.Code, e.Source)
}

func (e *ProtocolError) Unwrap() error {
	return e.Kind
}

// TransportError is the outcome of a request whose probe could not be handed
// to the network. It is fatal to the request, not to the session.
type TransportError struct {
	// Op is the socket operation that failed.
	Op string
	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("socket %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// SourceOf returns the address a [ProtocolError] originated from, or nil.
func SourceOf(err error) net.IP {
	var pErr *ProtocolError
	if errors.As(err, &pErr) {
		return pErr.Source
	}
	return nil
}
