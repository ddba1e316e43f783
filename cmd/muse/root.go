package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var preamble = `muse — an adaptive recommendation engine for a local music
library, layered on top of MPD. It learns which songs lead into which
from how you actually listen, and builds queues from that graph instead
of a fixed playlist.`

var rootCmd = &cobra.Command{
	Use:           "muse",
	Short:         "adaptive music recommendation engine",
	Long:          preamble,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var debugLog bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
