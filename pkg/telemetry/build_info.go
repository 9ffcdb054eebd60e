// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	buildInfoMetricName = "netping_build_info"
	buildInfoHelp       = "Build metadata of this netping binary. Always 1."
	// devVersion is reported when no version was set at build time.
	devVersion = "dev"
)

// newBuildInfo returns the info-style netping_build_info gauge, set to 1
// with the version and Go runtime labels.
func newBuildInfo(v string) prometheus.Collector {
	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: buildInfoMetricName,
			Help: buildInfoHelp,
		},
		[]string{"version", "goversion"},
	)
	info.WithLabelValues(version(v), runtime.Version()).Set(1)
	return info
}

func version(v string) string {
	if v == "" {
		return devVersion
	}
	return v
}
