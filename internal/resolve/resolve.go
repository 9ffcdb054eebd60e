// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package resolve looks up the names of hop addresses.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
	"github.com/telekom/netping/internal/helper"
	"github.com/telekom/netping/internal/logger"
)

const (
	// DefaultTimeout bounds a single exchange with the nameserver.
	DefaultTimeout = 2 * time.Second
	// DefaultResolvConf is where the nameserver is read from if none is set.
	DefaultResolvConf = "/etc/resolv.conf"
)

var (
	// ErrNoNameserver is returned when no nameserver is configured or found.
	ErrNoNameserver = errors.New("no nameserver configured")
	// ErrNotFound is returned when the address has no PTR record.
	ErrNotFound = errors.New("no name found")
)

// Resolver maps addresses to host names.
//
//go:generate go tool moq -out resolve_moq.go . Resolver
type Resolver interface {
	// LookupAddr returns the name of ip without the trailing dot.
	LookupAddr(ctx context.Context, ip net.IP) (string, error)
}

// Config configures a [DNS] resolver.
type Config struct {
	// Nameserver is the host:port of the server queried. If it is empty the
	// first nameserver of /etc/resolv.conf is used.
	Nameserver string
	// Network is udp or tcp. Defaults to udp.
	Network string
	// Timeout bounds a single exchange. Defaults to 2s.
	Timeout time.Duration
	// Retry configures retransmissions of failed exchanges.
	Retry helper.RetryConfig
}

// DNS resolves PTR records against a single nameserver and caches the
// answers for its lifetime.
type DNS struct {
	client     *dns.Client
	nameserver string
	retry      helper.RetryConfig

	mu    sync.Mutex
	cache map[string]string
}

// New creates a PTR resolver for the given configuration.
func New(cfg Config) (*DNS, error) {
	ns := cfg.Nameserver
	if ns == "" {
		cc, err := dns.ClientConfigFromFile(DefaultResolvConf)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoNameserver, err)
		}
		if len(cc.Servers) == 0 {
			return nil, ErrNoNameserver
		}
		ns = net.JoinHostPort(cc.Servers[0], cc.Port)
	} else if net.ParseIP(ns) != nil {
		ns = net.JoinHostPort(ns, "53")
	}

	if cfg.Network == "" {
		cfg.Network = "udp"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &DNS{
		client:     &dns.Client{Net: cfg.Network, Timeout: cfg.Timeout},
		nameserver: ns,
		retry:      cfg.Retry,
		cache:      map[string]string{},
	}, nil
}

// LookupAddr returns the first PTR name of ip.
func (d *DNS) LookupAddr(ctx context.Context, ip net.IP) (string, error) {
	log := logger.FromContext(ctx).With("address", ip.String())
	key := ip.String()

	d.mu.Lock()
	name, ok := d.cache[key]
	d.mu.Unlock()
	if ok {
		if name == "" {
			return "", ErrNotFound
		}
		return name, nil
	}

	arpa, err := dns.ReverseAddr(key)
	if err != nil {
		return "", fmt.Errorf("invalid address %q: %w", key, err)
	}

	m := new(dns.Msg)
	m.SetQuestion(arpa, dns.TypePTR)

	var resp *dns.Msg
	err = helper.Retry(func(ctx context.Context) error {
		r, _, err := d.client.ExchangeContext(ctx, m, d.nameserver)
		if err != nil {
			return err
		}
		if r.Rcode == dns.RcodeNameError {
			resp = r
			return nil
		}
		if r.Rcode == dns.RcodeRefused || r.Rcode == dns.RcodeNotImplemented {
			return &helper.Permanent{Err: fmt.Errorf("nameserver answered %s", dns.RcodeToString[r.Rcode])}
		}
		if r.Rcode != dns.RcodeSuccess {
			return fmt.Errorf("failed to get a valid answer %v %s", r.Rcode, dns.RcodeToString[r.Rcode])
		}
		resp = r
		return nil
	}, d.retry)(ctx)
	if err != nil {
		log.DebugContext(ctx, "Reverse lookup failed", "error", err)
		return "", fmt.Errorf("reverse lookup of %s failed: %w", key, err)
	}

	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			name = strings.TrimSuffix(ptr.Ptr, ".")
			break
		}
	}

	d.mu.Lock()
	d.cache[key] = name
	d.mu.Unlock()

	if name == "" {
		return "", ErrNotFound
	}
	return name, nil
}
