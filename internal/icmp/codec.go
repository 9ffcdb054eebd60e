// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package icmp

import (
	"encoding/binary"

	"golang.org/x/net/ipv4"
)

const (
	// ipVersionMask selects the version nibble of the first IPv4 header byte.
	ipVersionMask = 0xF0
	// ipHeaderLengthMask selects the header length nibble of the first IPv4 header byte.
	ipHeaderLengthMask = 0x0F
	// byteMultiplier converts the header length from 4-byte words to bytes.
	byteMultiplier = 4
	// ipv4VersionBits is the version nibble of an IPv4 header, in place.
	ipv4VersionBits = 0x40
)

// Encode builds an echo request of the given size carrying the session tag
// and request identifier. The checksum field is left zero: IPv4 checksums are
// filled in by the socket, IPv6 checksums by the kernel.
// Sizes below [MinPacketSize] are raised to it. The payload is zero-filled.
func Encode(id, tag uint16, family Family, size int) []byte {
	if size < MinPacketSize {
		size = MinPacketSize
	}

	b := make([]byte, size)
	b[0] = family.EchoRequest()
	b[1] = 0
	binary.BigEndian.PutUint16(b[2:4], 0)
	binary.BigEndian.PutUint16(b[4:6], tag)
	binary.BigEndian.PutUint16(b[6:8], id)
	return b
}

// Decode locates the echo header of an inbound message and returns it if it
// carries the given session tag.
//
// IPv4 buffers start with the IP header. For destination unreachable, source
// quench, redirect and time exceeded messages the identifiers are read from
// the original request quoted in the payload.
// IPv6 buffers start with the ICMPv6 header, the kernel strips the IPv6
// header. Identifiers are never recovered from quoted IPv6 requests and
// extension headers are not walked.
func Decode(b []byte, family Family, tag uint16) (Header, bool) {
	var (
		h  Header
		ok bool
	)
	switch family {
	case IPv4:
		h, ok = decodeIPv4(b)
	case IPv6:
		h, ok = decodeEcho(b, 0)
	}
	if !ok || h.Tag != tag {
		return Header{}, false
	}
	return h, true
}

func decodeIPv4(b []byte) (Header, bool) {
	offset, ok := skipIPv4Header(b, 0)
	if !ok {
		return Header{}, false
	}

	h, ok := decodeEcho(b, offset)
	if !ok {
		return Header{}, false
	}

	if !quotesRequest(h.Type) {
		return h, true
	}

	// The quoted original datagram follows the 8 byte error header.
	inner, ok := skipIPv4Header(b, offset+HeaderLen)
	if !ok {
		return Header{}, false
	}
	embedded, ok := decodeEcho(b, inner)
	if !ok {
		return Header{}, false
	}

	h.Tag = embedded.Tag
	h.ID = embedded.ID
	return h, true
}

// skipIPv4Header validates the IPv4 header starting at offset and returns
// the offset of its payload.
func skipIPv4Header(b []byte, offset int) (int, bool) {
	if offset < 0 || len(b)-offset < ipv4.HeaderLen {
		return 0, false
	}
	if b[offset]&ipVersionMask != ipv4VersionBits {
		return 0, false
	}

	headerLen := int(b[offset]&ipHeaderLengthMask) * byteMultiplier
	if headerLen < ipv4.HeaderLen || len(b)-offset < headerLen {
		return 0, false
	}
	return offset + headerLen, true
}

// decodeEcho reads the 8 byte echo header starting at offset.
func decodeEcho(b []byte, offset int) (Header, bool) {
	if offset < 0 || len(b)-offset < HeaderLen {
		return Header{}, false
	}
	return Header{
		Type: b[offset],
		Code: b[offset+1],
		Tag:  binary.BigEndian.Uint16(b[offset+4 : offset+6]),
		ID:   binary.BigEndian.Uint16(b[offset+6 : offset+8]),
	}, true
}

// quotesRequest reports whether an ICMPv4 message of the given type quotes
// the datagram that caused it.
func quotesRequest(typ uint8) bool {
	switch ipv4.ICMPType(typ) {
	case ipv4.ICMPTypeDestinationUnreachable,
		ICMPTypeSourceQuench,
		ipv4.ICMPTypeRedirect,
		ipv4.ICMPTypeTimeExceeded:
		return true
	default:
		return false
	}
}
