package main

import (
	"os"

	"github.com/gavelworks/gavel-stack/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
