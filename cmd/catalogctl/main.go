// Package main is the entry point for the catalogctl operator tool.
package main

import (
	"os"

	"github.com/pricofy/product-catalog/internal/cli"
)

func main() {
	rootCmd := cli.CreateRootCommand(cli.NewFlags())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
