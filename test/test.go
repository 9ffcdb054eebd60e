// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test holds helpers shared by the tests of this module.
package test

import (
	"net"
	"os"
	"testing"
)

// Addresses from the documentation ranges, safe to use as probe targets in tests.
const (
	TargetV4 = "192.0.2.1"
	RouterV4 = "198.51.100.1"
	TargetV6 = "2001:db8::1"
)

// MarkAsShort marks the test as one that also runs with the "-short" flag.
// Long running tests call [MarkAsLong] instead.
func MarkAsShort(t testing.TB) {
	t.Helper()
}

// MarkAsLong skips the test when the "-short" flag is set.
func MarkAsLong(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping long running test in short mode")
	}
}

// MarkAsRoot skips the test unless it runs with the privileges needed to
// open raw sockets.
func MarkAsRoot(t testing.TB) {
	t.Helper()
	MarkAsLong(t)
	if os.Geteuid() != 0 {
		t.Skip("skipping test that needs raw socket privileges")
	}
}

// ToIPOrFail parses an IP address and fails the test if it is invalid.
func ToIPOrFail(t testing.TB, s string) net.IP {
	t.Helper()
	ip := net.ParseIP(s)
	if ip == nil {
		t.Fatalf("failed to parse IP %q", s)
	}
	return ip
}
