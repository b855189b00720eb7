// Package main is the entry point for the duck-sheets CLI binary.
package main

import (
	"os"

	cli "duck-sheets/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
