// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/netping/pkg/config"
	"github.com/telekom/netping/pkg/ping"
)

func TestBuildCmd(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	c := BuildCmd("1.2.3")
	assert.Equal(t, "netping", c.Use)
	assert.Equal(t, "1.2.3", c.Version)

	names := map[string]bool{}
	for _, sub := range c.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["ping"])
	assert.True(t, names["trace"])

	for _, f := range []string{"config", "ipv6", "timeout", "retries", "ttl", "packet-size", "output", "resolve", "metrics-addr"} {
		assert.NotNil(t, c.PersistentFlags().Lookup(f), "flag %s missing", f)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		want    func(t *testing.T, cfg *config.Config)
		wantErr bool
	}{
		{
			name: "flag defaults",
			want: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, ping.IPv4, cfg.Ping.Family)
				assert.Equal(t, ping.DefaultTimeout, cfg.Ping.Timeout)
				assert.Equal(t, ping.DefaultRetries, cfg.Ping.Retries)
				assert.Equal(t, os.Getpid(), cfg.Ping.SessionID)
				assert.Equal(t, ping.DefaultTraceOptions(), cfg.Trace)
				assert.Equal(t, config.OutputText, cfg.Output)
				assert.Equal(t, 1, cfg.Count)
			},
		},
		{
			name: "ipv6 and overrides",
			set: map[string]any{
				"ipv6":                     true,
				"ping.timeout":             "500ms",
				"ping.retries":             0,
				"ping.sessionId":           99,
				"output":                   "json",
				"telemetry.metricsAddress": ":9090",
			},
			want: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, ping.IPv6, cfg.Ping.Family)
				assert.Equal(t, 500*time.Millisecond, cfg.Ping.Timeout)
				assert.Equal(t, 0, cfg.Ping.Retries)
				assert.Equal(t, 99, cfg.Ping.SessionID)
				assert.Equal(t, config.OutputJSON, cfg.Output)
				assert.True(t, cfg.HasMetricsServer())
			},
		},
		{
			name:    "invalid output",
			set:     map[string]any{"output": "xml"},
			wantErr: true,
		},
		{
			name:    "invalid trace",
			set:     map[string]any{"trace.startTtl": 10, "trace.maxTtl": 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			_ = BuildCmd("")
			for k, v := range tt.set {
				viper.Set(k, v)
			}

			cfg, err := loadConfig(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}
