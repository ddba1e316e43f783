package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "print the catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		songs, err := a.cat.AllSongs(cmd.Context())
		if err != nil {
			return err
		}
		for _, s := range songs {
			loved := ""
			if s.Loved {
				loved = " [loved]"
			}
			fmt.Printf("%s — %s (touches=%d listens=%d skips=%d)%s\n", s.Artist, s.Title, s.Touches, s.Listens, s.Skips, loved)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
