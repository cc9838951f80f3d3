// Package main is the simtrace command.
package main

import (
	"os"

	"github.com/leapstack-labs/simtrace/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
