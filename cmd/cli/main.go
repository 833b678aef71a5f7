// Package main is the entry point for the refinery CLI binary.
package main

import (
	"os"

	"refinery-modeler/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
