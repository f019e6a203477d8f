// Package main provides the payjar command.
package main

import (
	"os"

	"github.com/leapstack-labs/payjar/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
