// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package runner pings or traces a set of targets with one session per
// address family and prints what it finds.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/telekom/netping/internal/helper"
	"github.com/telekom/netping/internal/icmp"
	"github.com/telekom/netping/internal/logger"
	"github.com/telekom/netping/internal/resolve"
	"github.com/telekom/netping/pkg/config"
	"github.com/telekom/netping/pkg/ping"
	"github.com/telekom/netping/pkg/telemetry"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	// maxHops bounds the hops of a single trace.
	maxHops = 256
)

// Runner is the main struct of a netping run
type Runner struct {
	// config is the startup configuration of the run
	config *config.Config
	// telemetry holds the registry and the tracer provider
	telemetry telemetry.Provider
	// metrics is shared by every session of the run
	metrics *ping.Metrics
	// resolver looks up hop names, nil if disabled
	resolver resolve.Resolver
	// lookup resolves target host names
	lookup LookupFunc
	// opener opens the sockets of new sessions
	opener ping.SocketOpener
	// out prints the results
	out *printer

	mu       sync.Mutex
	sessions map[icmp.Family]*ping.Session
	// events drains the notifications of every session
	events   sync.WaitGroup
	shutOnce sync.Once
}

// Option configures a [Runner].
type Option func(*Runner)

// WithOutput makes the runner print to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = newPrinter(w, r.config.Output)
	}
}

// WithSocketOpener makes the sessions of the runner use opener.
func WithSocketOpener(opener ping.SocketOpener) Option {
	return func(r *Runner) {
		r.opener = opener
	}
}

// WithResolver replaces the reverse DNS resolver of hop names.
func WithResolver(res resolve.Resolver) Option {
	return func(r *Runner) {
		r.resolver = res
	}
}

// WithLookup replaces the resolution of target host names.
func WithLookup(lookup LookupFunc) Option {
	return func(r *Runner) {
		r.lookup = lookup
	}
}

// New creates a runner from a validated configuration
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	tel := telemetry.New(cfg.Telemetry)
	m := ping.NewMetrics()
	for _, c := range m.GetCollectors() {
		if err := tel.GetRegistry().Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	r := &Runner{
		config:    cfg,
		telemetry: tel,
		metrics:   m,
		lookup:    defaultLookup,
		opener:    ping.OpenRawSocket,
		out:       newPrinter(os.Stdout, cfg.Output),
		sessions:  map[icmp.Family]*ping.Session{},
	}

	if cfg.Resolve.Enabled {
		res, err := resolve.New(resolve.Config{
			Nameserver: cfg.Resolve.Nameserver,
			Timeout:    cfg.Resolve.Timeout,
			Retry:      helper.RetryConfig{Count: 1, Delay: 100 * time.Millisecond},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create resolver: %w", err)
		}
		r.resolver = res
	}

	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Ping sends rounds of echo requests to every target until the configured
// count is reached or ctx is done.
func (r *Runner) Ping(ctx context.Context, args []string) error {
	return r.run(ctx, args, r.pingRounds)
}

// Trace traces the route to every target concurrently.
func (r *Runner) Trace(ctx context.Context, args []string) error {
	return r.run(ctx, args, r.traceAll)
}

// run sets up telemetry, resolves the targets and hands them to probe.
func (r *Runner) run(ctx context.Context, args []string, probe func(context.Context, []target) error) (err error) {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()
	log := logger.FromContext(ctx)

	if err = r.telemetry.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	srvCtx, stopServer := context.WithCancel(ctx)
	cErr := make(chan error, 1)
	if r.config.HasMetricsServer() {
		srv := telemetry.NewServer(srvCtx, r.config.Telemetry.MetricsAddress, r.telemetry.GetRegistry())
		go func() { cErr <- srv.Run(srvCtx) }()
	} else {
		cErr <- nil
	}

	defer func() {
		stopServer()
		sErr := r.shutdown(ctx, <-cErr)
		if err == nil && sErr != nil {
			err = sErr
		}
	}()

	targets, err := r.collectTargets(ctx, args)
	if err != nil {
		return err
	}
	log.DebugContext(ctx, "Probing targets", "count", len(targets))
	return probe(ctx, targets)
}

// session returns the session of family, opening it on first use.
func (r *Runner) session(ctx context.Context, family icmp.Family) (*ping.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[family]; ok {
		return s, nil
	}

	opts := r.config.Ping
	opts.Family = family
	s, err := ping.New(ctx, opts, ping.WithMetrics(r.metrics), ping.WithSocketOpener(r.opener))
	if err != nil {
		return nil, err
	}
	r.sessions[family] = s

	r.events.Add(1)
	go func() {
		defer r.events.Done()
		r.watch(ctx, s)
	}()
	return s, nil
}

// watch logs the notifications of s until it is closed.
func (r *Runner) watch(ctx context.Context, s *ping.Session) {
	log := logger.FromContext(ctx).With("family", s.Family())
	for ev := range s.Events() {
		switch ev.Kind {
		case ping.EventError:
			log.WarnContext(ctx, "Socket error", "error", ev.Err)
		case ping.EventClose:
			log.DebugContext(ctx, "Session closed")
		}
	}
}

// pingRounds runs the configured number of ping rounds.
func (r *Runner) pingRounds(ctx context.Context, targets []target) error {
	failed, total := 0, 0
	for round := 1; r.config.Count == 0 || round <= r.config.Count; round++ {
		f, err := r.pingRound(ctx, targets)
		failed += f
		total += len(targets)
		if err != nil {
			return err
		}
		if round == r.config.Count {
			break
		}

		select {
		case <-ctx.Done():
			return r.summary(failed, total)
		case <-time.After(r.config.Interval):
		}
	}
	return r.summary(failed, total)
}

// pingRound pings every target once and prints the results as they arrive.
func (r *Runner) pingRound(ctx context.Context, targets []target) (failed int, err error) {
	type outcome struct {
		target target
		res    ping.Result
	}
	results := make(chan outcome, len(targets))

	for _, t := range targets {
		s, err := r.session(ctx, t.family())
		if err != nil {
			return 0, err
		}
		if err := s.PingHost(t.ip, func(res ping.Result) {
			results <- outcome{target: t, res: res}
		}); err != nil {
			results <- outcome{target: t, res: ping.Result{Target: t.ip, Err: err}}
		}
	}

	for range targets {
		select {
		case <-ctx.Done():
			return failed, nil
		case o := <-results:
			if o.res.Err != nil {
				failed++
			}
			if err := r.out.result(o.target, o.res); err != nil {
				return failed, fmt.Errorf("failed to print result: %w", err)
			}
		}
	}
	return failed, nil
}

// traceAll traces every target concurrently, printing each hop as it is fed.
func (r *Runner) traceAll(ctx context.Context, targets []target) error {
	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range targets {
		s, err := r.session(ctx, t.family())
		if err != nil {
			return err
		}

		hops := make(chan ping.Hop, maxHops)
		done := make(chan error, 1)
		feed := func(h ping.Hop) bool {
			hops <- h
			return false
		}
		finish := func(_ net.IP, err error) {
			close(hops)
			done <- err
		}
		if err := s.TraceRoute(t.ip, r.config.Trace, feed, finish); err != nil {
			close(hops)
			done <- err
		}

		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case h, ok := <-hops:
					if ok {
						r.name(gctx, &h)
						if err := r.out.hop(t, h); err != nil {
							return fmt.Errorf("failed to print hop: %w", err)
						}
						continue
					}
					err := <-done
					if err != nil {
						mu.Lock()
						failed++
						mu.Unlock()
					}
					return r.out.traceDone(t, err)
				}
			}
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return r.summary(failed, len(targets))
}

// name fills the name of the hop's source if lookups are enabled.
func (r *Runner) name(ctx context.Context, h *ping.Hop) {
	if r.resolver == nil || h.Source == nil {
		return
	}
	name, err := r.resolver.LookupAddr(ctx, h.Source)
	if err != nil {
		logger.FromContext(ctx).DebugContext(ctx, "No name for hop", "source", h.Source, "error", err)
		return
	}
	h.Name = name
}

func (r *Runner) summary(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return &ErrFailed{Failed: failed, Total: total}
}

// shutdown closes every session and flushes the telemetry.
// serverErr is the outcome of the metrics server.
func (r *Runner) shutdown(ctx context.Context, serverErr error) error {
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var sErrs ErrShutdown
	r.shutOnce.Do(func() {
		r.mu.Lock()
		var errs []error
		for family, s := range r.sessions {
			if err := s.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s session: %w", family, err))
			}
		}
		r.mu.Unlock()
		r.events.Wait()

		sErrs.errSessions = errors.Join(errs...)
		sErrs.errMetrics = r.telemetry.Shutdown(ctx)
		sErrs.errServer = serverErr
	})

	if sErrs.HasError() {
		log.ErrorContext(ctx, "Failed to shutdown gracefully", "errors", sErrs)
		return sErrs
	}
	return nil
}
