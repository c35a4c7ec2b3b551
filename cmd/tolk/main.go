// Package main is the entry point for the tolk CLI.
package main

import (
	"os"

	"github.com/f3rmion/tolk/cmd/tolk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
