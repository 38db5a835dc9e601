// Package main is the entry point for swiftc-shim.
package main

import (
	"fmt"
	"os"

	"github.com/zjrosen/swiftcshim/cmd"
)

// Build information injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	versionString := fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	cmd.SetVersion(versionString)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "swiftc-shim: %v\n", err)
		os.Exit(1)
	}
}
