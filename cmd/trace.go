// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/telekom/netping/pkg/ping"
	"github.com/telekom/netping/pkg/runner"
)

// NewCmdTrace creates the command tracing the route to targets
func NewCmdTrace() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace [flags] <target>...",
		Short: "Trace the route to targets",
		Long: "Probes every target with increasing TTLs and prints each hop as it answers.\n" +
			"A trace ends when the target answers, the max TTL is reached or too many hops in a row stay silent.",
		RunE: run(func(r *runner.Runner) func(context.Context, []string) error { return r.Trace }),
	}

	opts := ping.DefaultTraceOptions()
	NewFlag("trace.startTtl", "start-ttl").Int(cmd.Flags(), opts.StartTTL, "TTL of the first hop probed")
	NewFlag("trace.maxTtl", "max-ttl").Short("m").Int(cmd.Flags(), opts.MaxTTL, "highest TTL probed")
	NewFlag("trace.maxHopTimeouts", "max-hop-timeouts").Int(cmd.Flags(), opts.MaxHopTimeouts, "consecutive silent hops after which the trace gives up")

	return cmd
}
