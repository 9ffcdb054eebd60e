// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/netping/internal/logger"
	"github.com/telekom/netping/pkg/config"
	"github.com/telekom/netping/pkg/ping"
	"github.com/telekom/netping/pkg/runner"
)

// probeFunc selects what a command does with the runner.
type probeFunc func(r *runner.Runner) func(ctx context.Context, targets []string) error

// run loads the config and probes the targets given as arguments
// until done or interrupted.
func run(probe probeFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		log := logger.NewLogger()
		ctx = logger.IntoContext(ctx, log)

		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		r, err := runner.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to set up run: %w", err)
		}

		err = probe(r)(ctx, args)
		if errors.Is(err, context.Canceled) {
			log.InfoContext(ctx, "Run interrupted")
			return nil
		}
		return err
	}
}

// loadConfig reads the config from viper and validates it.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg := &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if viper.GetBool("ipv6") {
		cfg.Ping.Family = ping.IPv6
	} else if cfg.Ping.Family == 0 {
		cfg.Ping.Family = ping.IPv4
	}
	if cfg.Ping.SessionID == 0 {
		cfg.Ping.SessionID = os.Getpid()
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("error while validating the config: %w", err)
	}
	return cfg, nil
}
