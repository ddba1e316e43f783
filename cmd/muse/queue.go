package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fennec-audio/muse/internal/queue"
)

var verbose bool

func reportQueue(q queue.Queue) {
	if !verbose {
		return
	}
	if q.DiversityWarning {
		fmt.Println("note: this queue leans heavily on a small number of artists")
	}
	for i, s := range q.Songs {
		fmt.Printf("%2d. %s — %s\n", i+1, s.Artist, s.Title)
	}
}

func buildCmd(use, short string, build func(ctx context.Context, eng *app, seed string) (queue.Queue, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <seed>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			q, err := build(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			reportQueue(q)
			return nil
		},
	}
}

var currentCmd = buildCmd("current", "build the Current queue (two anchors from the seed, interleaved) and play it",
	func(ctx context.Context, a *app, seed string) (queue.Queue, error) { return a.engine.Current(ctx, seed) })

var threadCmd = buildCmd("thread", "build the Thread queue (a single chain from the seed) and play it",
	func(ctx context.Context, a *app, seed string) (queue.Queue, error) { return a.engine.Thread(ctx, seed) })

var streamCmd = buildCmd("stream", "build the Stream queue (an exploratory random walk from the seed) and play it",
	func(ctx context.Context, a *app, seed string) (queue.Queue, error) { return a.engine.Stream(ctx, seed) })

func init() {
	for _, c := range []*cobra.Command{currentCmd, threadCmd, streamCmd} {
		c.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the built queue")
	}
	rootCmd.AddCommand(currentCmd, threadCmd, streamCmd)
}
