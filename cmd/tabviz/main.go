// Package main provides the tabviz CLI entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/tabviz/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
