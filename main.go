package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/memberimport/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	root := cli.NewRootCommand(Version)
	root.SetVersionTemplate(fmt.Sprintf("memberimport %s (%s)\n", Version, Commit))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
