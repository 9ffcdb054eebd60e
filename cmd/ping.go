// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/telekom/netping/pkg/runner"
)

// NewCmdPing creates the command pinging targets
func NewCmdPing() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping [flags] <target>...",
		Short: "Send ICMP echo requests to targets",
		Long: "Sends an echo request to every target per round and prints one result per target.\n" +
			"Targets are pinged concurrently, one session per address family.",
		RunE: run(func(r *runner.Runner) func(context.Context, []string) error { return r.Ping }),
	}

	NewFlag("count", "count").Short("n").Int(cmd.Flags(), 1, "number of rounds, 0 pings until interrupted")
	NewFlag("interval", "interval").Short("i").Duration(cmd.Flags(), time.Second, "pause between two rounds")

	return cmd
}
