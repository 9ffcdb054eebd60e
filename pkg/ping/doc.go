// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package ping sends ICMP echo requests and traces routes over raw sockets.
//
// A [Session] owns one raw socket of a single address family. Every request
// it issues carries the session tag and a 16-bit identifier that is unique
// among the session's pending requests. Inbound messages are matched back to
// their request by that identifier, including ICMP errors that quote the
// original probe. Unanswered probes are retransmitted until their retries
// are used up and then fail with [ErrTimeout].
//
// Requests complete through callbacks that run on the session's goroutine.
// [Session.Ping] and [Session.Trace] wrap them for callers that prefer to block.
//
//	s, err := ping.New(ctx, ping.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	res, err := s.Ping(ctx, net.ParseIP("192.0.2.1"))
package ping
