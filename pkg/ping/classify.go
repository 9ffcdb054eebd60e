// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"net"

	"github.com/telekom/netping/internal/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// classify maps the type of a matched response to the outcome of its
// request. A nil error means the target answered.
func classify(family icmp.Family, h icmp.Header, src net.IP) error {
	var kind error
	switch family {
	case icmp.IPv6:
		kind = classifyIPv6(h.Type)
	default:
		kind = classifyIPv4(h.Type)
	}
	if kind == nil {
		return nil
	}
	return &ProtocolError{Kind: kind, Type: h.Type, Code: h.Code, Source: src}
}

func classifyIPv4(typ uint8) error {
	switch ipv4.ICMPType(typ) {
	case ipv4.ICMPTypeEchoReply:
		return nil
	case ipv4.ICMPTypeDestinationUnreachable:
		return ErrDestinationUnreachable
	case icmp.ICMPTypeSourceQuench:
		return ErrSourceQuench
	case ipv4.ICMPTypeRedirect:
		return ErrRedirectReceived
	case ipv4.ICMPTypeTimeExceeded:
		return ErrTimeExceeded
	default:
		return ErrUnknownResponseType
	}
}

func classifyIPv6(typ uint8) error {
	switch ipv6.ICMPType(typ) {
	case ipv6.ICMPTypeEchoReply:
		return nil
	case ipv6.ICMPTypeDestinationUnreachable:
		return ErrDestinationUnreachable
	case ipv6.ICMPTypePacketTooBig:
		return ErrPacketTooBig
	case ipv6.ICMPTypeTimeExceeded:
		return ErrTimeExceeded
	case ipv6.ICMPTypeParameterProblem:
		return ErrParameterProblem
	default:
		return ErrUnknownResponseType
	}
}
