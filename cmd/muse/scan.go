package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// init-db and update perform the filesystem scan and metadata
// extraction that builds/refreshes the catalogue from disk. That scan
// is an out-of-scope external collaborator for this engine (no audio
// tag parsing lives here) — these commands exist so the CLI surface
// matches the documented command table, but they report that plainly
// instead of silently doing nothing.
var initDBCmd = &cobra.Command{
	Use:   "init-db <path>",
	Short: "build a fresh catalogue from a music directory (external scanner required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("init-db: no filesystem scanner is wired into this engine; populate the catalogue out-of-band and set address under [mpd] in config.toml to your MPD instance")
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <path>",
	Short: "incrementally refresh the catalogue from a music directory (external scanner required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("update: no filesystem scanner is wired into this engine; populate the catalogue out-of-band")
	},
}

func init() {
	initDBCmd.Flags().Bool("force", false, "overwrite an existing catalogue")
	initDBCmd.Flags().Bool("no-metadata", false, "skip metadata extraction")
	updateCmd.Flags().Int("scan-depth", 0, "limit recursion depth (0 = unlimited)")
	updateCmd.Flags().Bool("remove-missing", false, "drop catalogued songs no longer on disk")

	rootCmd.AddCommand(initDBCmd, updateCmd)
}
