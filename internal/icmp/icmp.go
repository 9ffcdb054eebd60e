// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package icmp encodes ICMP echo requests and decodes the responses to them.
//
// A probe carries two 16-bit values in the echo identifier and sequence
// fields: the session tag, which tells replies to this process apart from
// other ICMP traffic on the same raw socket type, and the request identifier,
// which correlates a reply with its pending request.
//
// Decoding never fails loudly. Anything truncated, of the wrong IP version or
// carrying a foreign session tag is reported as "no match".
package icmp

import (
	"fmt"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// Family is the address family a session probes with.
type Family int

const (
	IPv4 Family = 4
	IPv6 Family = 6
)

// Protocol numbers of ICMP and ICMPv6.
const (
	ProtocolICMP     = 1
	ProtocolIPv6ICMP = 58
)

// ICMPTypeSourceQuench is the deprecated ICMPv4 Source Quench type (RFC 6633).
// x/net/ipv4 no longer defines it, but routers may still send it.
const ICMPTypeSourceQuench ipv4.ICMPType = 4

const (
	// HeaderLen is the length of the ICMP header an echo request carries.
	HeaderLen = 8
	// MinPacketSize is the smallest probe that is ever encoded.
	MinPacketSize = 12
	// DefaultPacketSize is the probe size used when none is configured.
	DefaultPacketSize = 16
)

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// IsValid returns true for [IPv4] and [IPv6].
func (f Family) IsValid() bool {
	return f == IPv4 || f == IPv6
}

// Protocol returns the IP protocol number of the family's ICMP flavour.
func (f Family) Protocol() int {
	if f == IPv6 {
		return ProtocolIPv6ICMP
	}
	return ProtocolICMP
}

// EchoRequest returns the echo request message type of the family.
func (f Family) EchoRequest() uint8 {
	if f == IPv6 {
		return uint8(ipv6.ICMPTypeEchoRequest)
	}
	return uint8(ipv4.ICMPTypeEcho)
}

// EchoReply returns the echo reply message type of the family.
func (f Family) EchoReply() uint8 {
	if f == IPv6 {
		return uint8(ipv6.ICMPTypeEchoReply)
	}
	return uint8(ipv4.ICMPTypeEchoReply)
}

// Header is the part of an inbound ICMP message needed to correlate it.
type Header struct {
	// Type is the ICMP type of the outer message.
	Type uint8
	// Code is the ICMP code of the outer message.
	Code uint8
	// Tag is the session tag found in the (possibly embedded) echo header.
	Tag uint16
	// ID is the request identifier found in the (possibly embedded) echo header.
	ID uint16
}

// SessionTag reduces a caller supplied session seed to the 16-bit tag
// carried by every probe of a session.
func SessionTag(seed int) uint16 {
	tag := seed % 65535
	if tag < 0 {
		tag = -tag
	}
	return uint16(tag) // #nosec G115 // always below 65535
}
