package main

import (
	"fmt"
	"os"

	"github.com/openslx/slotctl/internal/cli"
	"github.com/openslx/slotctl/internal/version"
	"github.com/spf13/cobra/doc"
)

func main() {
	header := &doc.GenManHeader{
		Title:   "SLOTCTL",
		Section: "8",
		Source:  "slotctl " + version.Version,
		Manual:  "slotctl manual",
	}

	if err := doc.GenMan(cli.NewRootCmd(), header, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
