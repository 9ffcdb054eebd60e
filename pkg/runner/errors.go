// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTargets is returned when neither the arguments nor the targets
	// file name a target.
	ErrNoTargets = errors.New("no targets given")
	// ErrNoAddress is returned when a host name has no address of the
	// configured family.
	ErrNoAddress = errors.New("no address of the requested family")
)

// ErrFailed is returned when at least one target could not be reached.
type ErrFailed struct {
	// Failed is the number of failed pings or traces
	Failed int
	// Total is the number of pings or traces run
	Total int
}

func (e *ErrFailed) Error() string {
	return fmt.Sprintf("%d of %d probes failed", e.Failed, e.Total)
}

// ErrShutdown holds any errors that may
// have occurred during shutdown of the runner
type ErrShutdown struct {
	errSessions error
	errMetrics  error
	errServer   error
}

// HasError returns true if any of the errors are set
func (e ErrShutdown) HasError() bool {
	return e.errSessions != nil || e.errMetrics != nil || e.errServer != nil
}

func (e ErrShutdown) Error() string {
	return errors.Join(e.errSessions, e.errMetrics, e.errServer).Error()
}
