// Package main provides the mlabgo command.
package main

import (
	"os"

	"github.com/leapstack-labs/mlabgo/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
