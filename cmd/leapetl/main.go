// Package main provides the leapetl command.
package main

import (
	"os"

	"github.com/leapstack-labs/leapetl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
