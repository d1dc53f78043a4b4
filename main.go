package main

import (
	"fmt"
	"os"

	"github.com/miosa/osa-transcript/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "osa-transcript: %v\n", err)
		os.Exit(1)
	}
}
