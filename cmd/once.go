/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kareigu/sceawian/internal/scheduler"
	"github.com/spf13/cobra"
)

// onceCmd runs a single cycle and reports through the exit status
var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single synchronization cycle",
	Long: `Discover job definitions, synchronize each of them once and exit.
The exit status is non-zero when discovery failed or any job failed
or timed out.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		sched, err := a.scheduler()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return reportError(sched.RunCycle(ctx))
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
}

// reportError turns a failed cycle into an error for the exit status
func reportError(report *scheduler.Report) error {
	if report.DiscoveryErr != nil {
		return fmt.Errorf("cycle %s: %w", report.CycleID, report.DiscoveryErr)
	}
	if !report.Failed() {
		return nil
	}
	return fmt.Errorf("cycle %s: %d failed, %d timed out",
		report.CycleID,
		report.Counts[scheduler.StatusFailed],
		report.Counts[scheduler.StatusTimedOut])
}
