package main

import (
	_ "embed"
	"os"
	"strings"

	"phonecleaner/pkg/cli"
	"phonecleaner/pkg/log"
)

//go:embed VERSION
var Version string

func main() {
	// Initialize logger first
	_ = log.Logger

	if err := cli.Execute(strings.TrimSpace(Version)); err != nil {
		log.Fatal().Err(err).Msg("storaged failed")
	}

	os.Exit(0)
}
