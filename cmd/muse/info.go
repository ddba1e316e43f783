package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "print the current song's stats, score, and top outgoing edges",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.engine.Info(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%s — %s\n", info.Song.Artist, info.Song.Title)
		fmt.Printf("score: %.2f\n", info.Score)
		fmt.Printf("%s touches, %s listens, %s skips\n",
			humanize.Comma(int64(info.Song.Touches)),
			humanize.Comma(int64(info.Song.Listens)),
			humanize.Comma(int64(info.Song.Skips)))
		if info.Song.Loved {
			fmt.Println("loved")
		}
		if len(info.TopOutgoing) == 0 {
			fmt.Println("no outgoing connections yet")
			return nil
		}
		fmt.Println("top connections:")
		for _, edge := range info.TopOutgoing {
			fmt.Printf("  %s — %s (%s)\n", edge.Song.Artist, edge.Song.Title, humanize.Comma(int64(edge.Count)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
