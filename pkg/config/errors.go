// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidOutput is returned when the output format is not supported
	ErrInvalidOutput = errors.New("invalid output format")
	// ErrInvalidPingOptions is returned when the session options are invalid
	ErrInvalidPingOptions = errors.New("invalid ping options")
	// ErrInvalidTraceOptions is returned when the trace options are invalid
	ErrInvalidTraceOptions = errors.New("invalid trace options")
	// ErrInvalidNameserver is returned when the nameserver is not a host:port pair
	ErrInvalidNameserver = errors.New("invalid nameserver")
	// ErrInvalidRounds is returned when the count or interval is negative
	ErrInvalidRounds = errors.New("invalid ping rounds")
	// ErrInvalidResolveTimeout is returned when the lookup timeout is negative
	ErrInvalidResolveTimeout = errors.New("invalid resolve timeout")
)
