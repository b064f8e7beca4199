// Package main provides the dbcleaner command.
package main

import (
	"os"

	"github.com/leapstack-labs/dbcleaner/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
