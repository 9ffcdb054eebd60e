// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package rawsock

import "encoding/binary"

// checksumOffset is the position of the checksum field in an ICMP header.
const checksumOffset = 2

// checksum returns the RFC 1071 internet checksum of b.
func checksum(b []byte) uint16 {
	var sum uint32
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if len(b)&1 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = sum&0xffff + sum>>16
	}
	return ^uint16(sum) // #nosec G115 // folded into 16 bits above
}

// setChecksum zeroes the checksum field of the ICMP message in b and stores
// the checksum of the whole message there.
func setChecksum(b []byte) {
	if len(b) < checksumOffset+2 {
		return
	}
	b[checksumOffset], b[checksumOffset+1] = 0, 0
	binary.BigEndian.PutUint16(b[checksumOffset:], checksum(b))
}
