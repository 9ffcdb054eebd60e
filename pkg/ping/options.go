// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/telekom/netping/internal/icmp"
)

const (
	// DefaultRetries is the number of retransmissions after the first probe.
	DefaultRetries = 1
	// DefaultTimeout is how long to wait for a reply to a single probe.
	DefaultTimeout = 2 * time.Second
	// DefaultTTL is the TTL of echo requests sent by [Session.PingHost].
	DefaultTTL = 128
	// DefaultStartTTL is the TTL of the first hop probed by a trace.
	DefaultStartTTL = 1
	// DefaultMaxTTL is the highest TTL a trace probes.
	DefaultMaxTTL = 64
	// DefaultMaxHopTimeouts is the number of consecutive timed out hops after
	// which a trace gives up.
	DefaultMaxHopTimeouts = 3
	// maxTTL is the highest TTL representable in the IP header.
	maxTTL = 255
)

// Address families of a session.
const (
	IPv4 = icmp.IPv4
	IPv6 = icmp.IPv6
)

// Options configures a [Session].
type Options struct {
	// Family is the address family of the session. Defaults to [IPv4].
	Family icmp.Family `json:"family" yaml:"family" mapstructure:"family"`
	// PacketSize is the size of the echo request in bytes, ICMP header
	// included. Defaults to 16, values below 12 are raised to 12.
	PacketSize int `json:"packetSize" yaml:"packetSize" mapstructure:"packetSize"`
	// Retries is the number of retransmissions after a timed out probe.
	// Zero disables retries.
	Retries int `json:"retries" yaml:"retries" mapstructure:"retries"`
	// Timeout is how long to wait for a reply to each probe. Defaults to 2s.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// TTL is the TTL of echo requests sent by [Session.PingHost]. Defaults to 128.
	TTL int `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
	// SessionID seeds the tag that tells this session's probes apart from
	// those of other processes. Defaults to the process id.
	SessionID int `json:"sessionId" yaml:"sessionId" mapstructure:"sessionId"`
}

// DefaultOptions returns the options a session uses when none are given.
func DefaultOptions() Options {
	return Options{
		Family:     IPv4,
		PacketSize: icmp.DefaultPacketSize,
		Retries:    DefaultRetries,
		Timeout:    DefaultTimeout,
		TTL:        DefaultTTL,
		SessionID:  os.Getpid(),
	}
}

// withDefaults fills every unset field that has no meaningful zero value.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Family == 0 {
		o.Family = d.Family
	}
	if o.PacketSize == 0 {
		o.PacketSize = d.PacketSize
	}
	if o.PacketSize < icmp.MinPacketSize {
		o.PacketSize = icmp.MinPacketSize
	}
	if o.Timeout == 0 {
		o.Timeout = d.Timeout
	}
	if o.TTL == 0 {
		o.TTL = d.TTL
	}
	if o.SessionID == 0 {
		o.SessionID = d.SessionID
	}
	return o
}

// Validate checks the options after defaults have been applied.
func (o Options) Validate() error {
	var errs []error
	if !o.Family.IsValid() {
		errs = append(errs, fmt.Errorf("unsupported address family %d", o.Family))
	}
	if o.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", o.Retries))
	}
	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", o.Timeout))
	}
	if o.TTL < 1 || o.TTL > maxTTL {
		errs = append(errs, fmt.Errorf("ttl must be within 1 and %d, got %d", maxTTL, o.TTL))
	}
	return errors.Join(errs...)
}

// TraceOptions configures a single trace.
type TraceOptions struct {
	// StartTTL is the TTL of the first hop probed. Defaults to 1.
	StartTTL int `json:"startTtl" yaml:"startTtl" mapstructure:"startTtl"`
	// MaxTTL is the highest TTL probed. Defaults to 64.
	MaxTTL int `json:"maxTtl" yaml:"maxTtl" mapstructure:"maxTtl"`
	// MaxHopTimeouts is the number of consecutive timed out hops after which
	// the trace fails with [ErrTooManyTimeouts]. Defaults to 3.
	MaxHopTimeouts int `json:"maxHopTimeouts" yaml:"maxHopTimeouts" mapstructure:"maxHopTimeouts"`
}

// DefaultTraceOptions returns the trace options used when none are given.
func DefaultTraceOptions() TraceOptions {
	return TraceOptions{
		StartTTL:       DefaultStartTTL,
		MaxTTL:         DefaultMaxTTL,
		MaxHopTimeouts: DefaultMaxHopTimeouts,
	}
}

func (o TraceOptions) withDefaults() TraceOptions {
	d := DefaultTraceOptions()
	if o.StartTTL == 0 {
		o.StartTTL = d.StartTTL
	}
	if o.MaxTTL == 0 {
		o.MaxTTL = d.MaxTTL
	}
	if o.MaxHopTimeouts == 0 {
		o.MaxHopTimeouts = d.MaxHopTimeouts
	}
	return o
}

// Validate checks the trace options after defaults have been applied.
func (o TraceOptions) Validate() error {
	var errs []error
	if o.StartTTL < 1 || o.StartTTL > maxTTL {
		errs = append(errs, fmt.Errorf("start ttl must be within 1 and %d, got %d", maxTTL, o.StartTTL))
	}
	if o.MaxTTL < 1 || o.MaxTTL > maxTTL {
		errs = append(errs, fmt.Errorf("max ttl must be within 1 and %d, got %d", maxTTL, o.MaxTTL))
	}
	if o.StartTTL > o.MaxTTL {
		errs = append(errs, fmt.Errorf("start ttl %d exceeds max ttl %d", o.StartTTL, o.MaxTTL))
	}
	if o.MaxHopTimeouts < 0 {
		errs = append(errs, fmt.Errorf("max hop timeouts must not be negative, got %d", o.MaxHopTimeouts))
	}
	return errors.Join(errs...)
}
