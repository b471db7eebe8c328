// Package main provides the thanosql command-line client.
package main

import (
	"os"

	"github.com/smartmind-team/thanosql-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
