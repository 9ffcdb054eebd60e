// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package ping

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/telekom/netping/internal/icmp"
)

func TestOptions_withDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Options
	}{
		{
			name: "zero value",
			opts: Options{},
			want: Options{Family: IPv4, PacketSize: 16, Retries: 0, Timeout: 2 * time.Second, TTL: 128, SessionID: os.Getpid()},
		},
		{
			name: "small packets are raised",
			opts: Options{Family: IPv6, PacketSize: 4, Retries: 3, Timeout: time.Second, TTL: 1, SessionID: 7},
			want: Options{Family: IPv6, PacketSize: icmp.MinPacketSize, Retries: 3, Timeout: time.Second, TTL: 1, SessionID: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.withDefaults()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("withDefaults() mismatch (-want +got):\n%s", diff)
			}
			assert.NoError(t, got.Validate())
		})
	}
}

func TestDefaultOptions(t *testing.T) {
	d := DefaultOptions()
	assert.Equal(t, DefaultRetries, d.Retries)
	assert.NoError(t, d.Validate())
	assert.Equal(t, d, d.withDefaults())
}

func TestTraceOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    TraceOptions
		want    TraceOptions
		wantErr bool
	}{
		{name: "defaults", want: TraceOptions{StartTTL: 1, MaxTTL: 64, MaxHopTimeouts: 3}},
		{name: "custom", opts: TraceOptions{StartTTL: 3, MaxTTL: 30, MaxHopTimeouts: 1}, want: TraceOptions{StartTTL: 3, MaxTTL: 30, MaxHopTimeouts: 1}},
		{name: "start beyond max", opts: TraceOptions{StartTTL: 70}, want: TraceOptions{StartTTL: 70, MaxTTL: 64, MaxHopTimeouts: 3}, wantErr: true},
		{name: "negative budget", opts: TraceOptions{MaxHopTimeouts: -1}, want: TraceOptions{StartTTL: 1, MaxTTL: 64, MaxHopTimeouts: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.withDefaults()
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, got.Validate())
			} else {
				assert.NoError(t, got.Validate())
			}
		})
	}
}
