package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "control the BehaviorTracker daemon",
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "start the tracker daemon if it isn't already running",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		binary, err := os.Executable()
		if err != nil {
			return err
		}
		already, err := a.engine.DaemonStart(binary, []string{"daemon", "run"})
		if err != nil {
			return err
		}
		if already {
			fmt.Println("daemon already running")
		} else {
			fmt.Println("daemon started")
		}
		return nil
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "stop the running tracker daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.engine.DaemonStop(); err != nil {
			return err
		}
		fmt.Println("daemon stopped")
		return nil
	},
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "report whether the tracker daemon is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		running, pid, err := a.engine.DaemonStatus()
		if err != nil {
			return err
		}
		if running {
			fmt.Printf("running (pid %d)\n", pid)
		} else {
			fmt.Println("not running")
		}
		return nil
	},
}

// daemonRunCmd is the body of the detached daemon process itself: it
// writes its own identity, reconciles against whatever is currently
// playing, then blocks in the tracker's event loop until signaled.
var daemonRunCmd = &cobra.Command{
	Use:    "run",
	Short:  "run the tracker event loop in the foreground (internal; used by `daemon start`)",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.engine.Supervisor.MarkRunning(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		if err := a.engine.Tracker.Reconcile(ctx); err != nil {
			return err
		}
		return a.engine.Tracker.Run(ctx)
	},
}

func init() {
	daemonCmd.AddCommand(daemonStartCmd, daemonStopCmd, daemonStatusCmd, daemonRunCmd)
	rootCmd.AddCommand(daemonCmd)
}
