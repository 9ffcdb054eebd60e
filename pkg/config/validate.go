// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/telekom/netping/internal/logger"
)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if !c.Output.IsValid() {
		log.Error("The output format must be one of text, json or yaml", "output", c.Output)
		err = errors.Join(err, fmt.Errorf("%w: %q", ErrInvalidOutput, c.Output))
	}

	if c.Count < 0 || c.Interval < 0 {
		log.Error("The count and interval should be equal or above 0", "count", c.Count, "interval", c.Interval)
		err = errors.Join(err, fmt.Errorf("%w: count %d, interval %s", ErrInvalidRounds, c.Count, c.Interval))
	}

	if vErr := c.Ping.Validate(); vErr != nil {
		log.Error("The ping configuration is invalid", "error", vErr)
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidPingOptions, vErr))
	}

	if vErr := c.Trace.Validate(); vErr != nil {
		log.Error("The trace configuration is invalid", "error", vErr)
		err = errors.Join(err, fmt.Errorf("%w: %w", ErrInvalidTraceOptions, vErr))
	}

	if vErr := c.Resolve.Validate(ctx); vErr != nil {
		log.Error("The resolve configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if vErr := c.Telemetry.Validate(ctx); vErr != nil {
		log.Error("The telemetry configuration is invalid")
		err = errors.Join(err, vErr)
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// Validate validates the resolve configuration
func (c *ResolveConfig) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if c.Timeout < 0 {
		log.Error("The resolve timeout should be equal or above 0", "timeout", c.Timeout)
		return ErrInvalidResolveTimeout
	}

	if c.Nameserver != "" {
		if _, _, err := net.SplitHostPort(c.Nameserver); err != nil {
			log.Error("The nameserver must be a host:port pair", "nameserver", c.Nameserver)
			return fmt.Errorf("%w: %w", ErrInvalidNameserver, err)
		}
	}

	return nil
}
