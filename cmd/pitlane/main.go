package main

import (
	"os"

	"github.com/rustyeddy/pitlane/cmd/pitlane/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
