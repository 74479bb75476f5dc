// Package main is the entry point for the observatory CLI.
package main

import (
	"os"

	"observatory/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
