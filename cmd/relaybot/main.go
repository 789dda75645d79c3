// Package main is the entrypoint of the relaybot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/edgard/relaybot/cmd/relaybot/commands"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// A missing .env is fine; real environment variables always win.
	_ = godotenv.Load()

	if err := commands.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
