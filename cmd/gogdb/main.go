// Package main provides the entry point for the gogdb CLI.
package main

import (
	"os"

	"github.com/gogdb/gogdb/cmd/gogdb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
