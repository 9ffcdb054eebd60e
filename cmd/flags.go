// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/telekom/netping/pkg/config"
	"github.com/telekom/netping/pkg/ping"
	"github.com/telekom/netping/pkg/telemetry"
)

// Flag binds a command line flag to a viper key.
type Flag struct {
	key  string
	name string
	sh   string
}

// NewFlag returns a flag named name bound to the config key.
func NewFlag(key, name string) *Flag {
	return &Flag{key: key, name: name}
}

// Short sets the one letter shorthand of the flag.
func (f *Flag) Short(sh string) *Flag {
	f.sh = sh
	return f
}

func (f *Flag) bind(flags *pflag.FlagSet) {
	cobra.CheckErr(viper.BindPFlag(f.key, flags.Lookup(f.name)))
}

// String defines and binds a string flag.
func (f *Flag) String(flags *pflag.FlagSet, value, usage string) {
	flags.StringP(f.name, f.sh, value, usage)
	f.bind(flags)
}

// Int defines and binds an int flag.
func (f *Flag) Int(flags *pflag.FlagSet, value int, usage string) {
	flags.IntP(f.name, f.sh, value, usage)
	f.bind(flags)
}

// Bool defines and binds a bool flag.
func (f *Flag) Bool(flags *pflag.FlagSet, value bool, usage string) {
	flags.BoolP(f.name, f.sh, value, usage)
	f.bind(flags)
}

// Duration defines and binds a duration flag.
func (f *Flag) Duration(flags *pflag.FlagSet, value time.Duration, usage string) {
	flags.DurationP(f.name, f.sh, value, usage)
	f.bind(flags)
}

// registerProbeFlags defines the flags shared by every probing command.
func registerProbeFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	opts := ping.DefaultOptions()

	NewFlag("ipv6", "ipv6").Short("6").Bool(flags, false, "probe over IPv6; host names resolve to IPv6 addresses")
	NewFlag("ping.packetSize", "packet-size").Short("s").Int(flags, opts.PacketSize, "size of the echo request in bytes, ICMP header included")
	NewFlag("ping.retries", "retries").Short("r").Int(flags, opts.Retries, "retransmissions after a timed out probe")
	NewFlag("ping.timeout", "timeout").Short("t").Duration(flags, opts.Timeout, "time to wait for a reply to each probe")
	NewFlag("ping.ttl", "ttl").Int(flags, opts.TTL, "TTL of echo requests")
	NewFlag("ping.sessionId", "session-id").Int(flags, 0, "session identifier tagging every probe (default is the process id)")

	NewFlag("output", "output").Short("o").String(flags, string(config.OutputText), "output format: text, json or yaml")
	NewFlag("targetsFile", "targets-file").Short("f").String(flags, "", "yaml file listing additional targets")

	NewFlag("resolve.enabled", "resolve").Bool(flags, false, "resolve the names of hop addresses")
	NewFlag("resolve.nameserver", "nameserver").String(flags, "", "host:port of the nameserver (default is the first of /etc/resolv.conf)")
	NewFlag("resolve.timeout", "resolve-timeout").Duration(flags, 0, "timeout of a single reverse lookup")

	NewFlag("telemetry.metricsAddress", "metrics-addr").String(flags, "", "address to serve prometheus metrics on, e.g. :9090")
	NewFlag("telemetry.enabled", "tracing").Bool(flags, false, "export OpenTelemetry traces")
	NewFlag("telemetry.exporter", "tracing-exporter").String(flags, telemetry.STDOUT.String(), "trace exporter: http, grpc or stdout")
	NewFlag("telemetry.url", "tracing-url").String(flags, "", "url of the trace collector")
}
