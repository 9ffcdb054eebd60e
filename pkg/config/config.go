// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/telekom/netping/pkg/ping"
	"github.com/telekom/netping/pkg/telemetry"
)

// Output is the format results are printed in.
type Output string

const (
	// OutputText prints one human readable line per result.
	OutputText Output = "text"
	// OutputJSON prints one JSON document per result.
	OutputJSON Output = "json"
	// OutputYAML prints one YAML document per result.
	OutputYAML Output = "yaml"
)

// IsValid returns true for the supported output formats.
func (o Output) IsValid() bool {
	switch o {
	case OutputText, OutputJSON, OutputYAML:
		return true
	default:
		return false
	}
}

type Config struct {
	// Ping configures the sessions probes are sent through
	Ping ping.Options `yaml:"ping" mapstructure:"ping"`
	// Trace configures traces run by the trace command
	Trace ping.TraceOptions `yaml:"trace" mapstructure:"trace"`
	// Telemetry is the configuration for metrics and tracing
	Telemetry telemetry.Config `yaml:"telemetry" mapstructure:"telemetry"`
	// Output is the format results are printed in
	Output Output `yaml:"output" mapstructure:"output"`
	// Resolve configures reverse lookups of hop addresses
	Resolve ResolveConfig `yaml:"resolve" mapstructure:"resolve"`
	// TargetsFile is an optional file listing additional targets
	TargetsFile string `yaml:"targetsFile" mapstructure:"targetsFile"`
	// Count is the number of ping rounds. Zero pings until interrupted.
	Count int `yaml:"count" mapstructure:"count"`
	// Interval is the pause between two ping rounds
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ResolveConfig is the configuration for reverse DNS lookups
type ResolveConfig struct {
	// Enabled turns reverse lookups of hop addresses on
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Nameserver is the host:port of the DNS server to query.
	// The first nameserver of /etc/resolv.conf is used if it is empty.
	Nameserver string `yaml:"nameserver" mapstructure:"nameserver"`
	// Timeout bounds a single lookup
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// HasTelemetry returns true if the config has tracing enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasMetricsServer returns true if the prometheus endpoint should be served
func (c *Config) HasMetricsServer() bool {
	return c.Telemetry.MetricsAddress != ""
}
