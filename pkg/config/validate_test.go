// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/telekom/netping/pkg/ping"
	"github.com/telekom/netping/pkg/telemetry"
)

func validConfig() Config {
	return Config{
		Ping:   ping.DefaultOptions(),
		Trace:  ping.DefaultTraceOptions(),
		Output: OutputText,
		Count:  1,
		Resolve: ResolveConfig{
			Enabled:    true,
			Nameserver: "192.0.2.53:53",
			Timeout:    time.Second,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []error
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "unknown output",
			mutate:  func(c *Config) { c.Output = "xml" },
			wantErr: []error{ErrInvalidOutput},
		},
		{
			name:    "ttl out of range",
			mutate:  func(c *Config) { c.Ping.TTL = 0 },
			wantErr: []error{ErrInvalidPingOptions},
		},
		{
			name:    "start ttl beyond max ttl",
			mutate:  func(c *Config) { c.Trace.StartTTL = 65 },
			wantErr: []error{ErrInvalidTraceOptions},
		},
		{
			name:    "negative count",
			mutate:  func(c *Config) { c.Count = -1 },
			wantErr: []error{ErrInvalidRounds},
		},
		{
			name:    "negative interval",
			mutate:  func(c *Config) { c.Interval = -time.Second },
			wantErr: []error{ErrInvalidRounds},
		},
		{
			name:    "nameserver without port",
			mutate:  func(c *Config) { c.Resolve.Nameserver = "192.0.2.53" },
			wantErr: []error{ErrInvalidNameserver},
		},
		{
			name:    "negative resolve timeout",
			mutate:  func(c *Config) { c.Resolve.Timeout = -time.Second },
			wantErr: []error{ErrInvalidResolveTimeout},
		},
		{
			name: "every error is reported",
			mutate: func(c *Config) {
				c.Output = ""
				c.Ping.Retries = -1
				c.Trace.MaxTTL = 0
			},
			wantErr: []error{ErrInvalidOutput, ErrInvalidPingOptions, ErrInvalidTraceOptions},
		},
		{
			name: "otlp exporter without url",
			mutate: func(c *Config) {
				c.Telemetry = telemetry.Config{Enabled: true, Exporter: telemetry.GRPC}
			},
			wantErr: []error{errors.New("any")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)

			err := c.Validate(ctx)
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			for _, want := range tt.wantErr {
				if want.Error() == "any" {
					continue
				}
				if !errors.Is(err, want) {
					t.Errorf("Validate() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestConfig_Has(t *testing.T) {
	c := validConfig()
	if c.HasTelemetry() || c.HasMetricsServer() {
		t.Error("telemetry reported enabled on a default config")
	}

	c.Telemetry = telemetry.Config{Enabled: true, MetricsAddress: ":9090"}
	if !c.HasTelemetry() || !c.HasMetricsServer() {
		t.Error("telemetry reported disabled")
	}
}
