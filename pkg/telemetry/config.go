// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"fmt"
	"net"

	"github.com/telekom/netping/internal/logger"
)

// Config holds the configuration for metrics and tracing.
type Config struct {
	// Enabled is a flag to enable or disable the OpenTelemetry tracing
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Exporter is the otlp exporter used to export the traces
	Exporter Exporter `yaml:"exporter" mapstructure:"exporter"`
	// Url is the Url of the collector to which the traces are exported
	Url string `yaml:"url" mapstructure:"url"`
	// Token is the token used to authenticate with the collector
	Token string `yaml:"token" mapstructure:"token"`
	// TLS holds the tls configuration
	TLS TLSConfig `yaml:"tls" mapstructure:"tls"`
	// MetricsAddress is the address the prometheus endpoint listens on.
	// The endpoint is disabled if it is empty.
	MetricsAddress string `yaml:"metricsAddress" mapstructure:"metricsAddress"`
}

type TLSConfig struct {
	// Enabled is a flag to enable or disable the tls
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// CertPath is the path to the tls certificate file.
	// This is only required if the otel backend uses custom TLS certificates.
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
}

// Validate checks the telemetry configuration.
func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if c.MetricsAddress != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddress); err != nil {
			log.ErrorContext(ctx, "Invalid metrics address", "address", c.MetricsAddress, "error", err)
			return fmt.Errorf("invalid metrics address %q: %w", c.MetricsAddress, err)
		}
	}
	if !c.Enabled {
		return nil
	}

	if err := c.Exporter.Validate(); err != nil {
		log.ErrorContext(ctx, "Invalid exporter", "error", err)
		return err
	}

	if c.Exporter.IsExporting() && c.Url == "" {
		log.ErrorContext(ctx, "Url is required for otlp exporter", "exporter", c.Exporter)
		return fmt.Errorf("url is required for otlp exporter %q", c.Exporter)
	}
	return nil
}
