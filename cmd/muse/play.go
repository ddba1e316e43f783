package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:       "play {algorithm|shuffle}",
	Short:     "load and play the whole catalogue, ranked or shuffled",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"algorithm", "shuffle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		switch args[0] {
		case "algorithm":
			return a.engine.PlayAlgorithm(cmd.Context())
		case "shuffle":
			return a.engine.PlayShuffle(cmd.Context())
		default:
			return fmt.Errorf("play: mode must be %q or %q", "algorithm", "shuffle")
		}
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}
