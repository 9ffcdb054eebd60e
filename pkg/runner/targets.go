// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/telekom/netping/internal/icmp"
	"github.com/telekom/netping/internal/logger"
	"github.com/telekom/netping/pkg/config"
)

// target is a destination as given by the user and the address it resolved to.
type target struct {
	name string
	ip   net.IP
}

func (t target) family() icmp.Family {
	if t.ip.To4() != nil {
		return icmp.IPv4
	}
	return icmp.IPv6
}

func (t target) String() string {
	if t.name == t.ip.String() {
		return t.name
	}
	return fmt.Sprintf("%s (%s)", t.name, t.ip)
}

// LookupFunc returns the addresses of a host name.
type LookupFunc func(ctx context.Context, host string) ([]net.IP, error)

func defaultLookup(ctx context.Context, host string) ([]net.IP, error) {
	r := &net.Resolver{PreferGo: true}
	return r.LookupIP(ctx, "ip", host)
}

// collectTargets merges the arguments with the targets file and resolves
// every host name to an address. Address literals keep their own family,
// host names resolve to an address of the configured family.
func (r *Runner) collectTargets(ctx context.Context, args []string) ([]target, error) {
	log := logger.FromContext(ctx)

	names := append([]string(nil), args...)
	if r.config.TargetsFile != "" {
		fromFile, err := config.NewFileLoader(r.config.TargetsFile).Load(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, fromFile...)
	}
	if len(names) == 0 {
		return nil, ErrNoTargets
	}

	var (
		targets []target
		errs    []error
	)
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		if ip := net.ParseIP(name); ip != nil {
			targets = append(targets, target{name: name, ip: ip})
			continue
		}

		ips, err := r.lookup(ctx, name)
		if err != nil {
			log.ErrorContext(ctx, "Failed to resolve target", "target", name, "error", err)
			errs = append(errs, fmt.Errorf("failed to resolve %s: %w", name, err))
			continue
		}
		ip := pickAddress(ips, r.config.Ping.Family)
		if ip == nil {
			log.ErrorContext(ctx, "Target has no address of the requested family", "target", name, "family", r.config.Ping.Family)
			errs = append(errs, fmt.Errorf("%w: %s has no %s address", ErrNoAddress, name, r.config.Ping.Family))
			continue
		}
		targets = append(targets, target{name: name, ip: ip})
	}
	return targets, errors.Join(errs...)
}

// pickAddress returns the first address of family.
func pickAddress(ips []net.IP, family icmp.Family) net.IP {
	for _, ip := range ips {
		if (ip.To4() != nil) == (family != icmp.IPv6) {
			return ip
		}
	}
	return nil
}
