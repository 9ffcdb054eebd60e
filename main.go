// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/telekom/netping/cmd"
	"github.com/telekom/netping/pkg"
)

// Version is the current version of netping
// It is set at build time by using -ldflags "-X main.version=x.x.x"
var version string

func main() {
	pkg.Version = version
	cmd.Execute(version)
}
