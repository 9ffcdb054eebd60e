// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package pkg contains metadata about netping.
package pkg

// Version is the current version of netping.
// It is set at startup from the version linked into the binary.
var Version string
