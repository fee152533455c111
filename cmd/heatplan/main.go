// Package main provides the heatplan CLI.
package main

import (
	"os"

	"github.com/heatstack/heatplan/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
