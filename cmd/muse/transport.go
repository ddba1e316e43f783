package main

import "github.com/spf13/cobra"

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "classify the current song's playback, then advance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.engine.Next(cmd.Context())
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip",
	Short: "unconditionally record the current song as skipped, then advance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.engine.Skip(cmd.Context())
	},
}

var loveCmd = &cobra.Command{
	Use:   "love",
	Short: "mark the current song as loved",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.engine.Love(cmd.Context())
	},
}

var unloveCmd = &cobra.Command{
	Use:   "unlove",
	Short: "clear the loved flag on the current song",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.engine.Unlove(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(nextCmd, skipCmd, loveCmd, unloveCmd)
}
