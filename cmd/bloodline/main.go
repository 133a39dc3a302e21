// Package main is the entry point of the bloodline CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/bloodline/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
