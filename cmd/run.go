/*
Copyright © 2026 ソニーレベル <c7kali3@gmail.com>

*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mirror every job on a fixed interval",
	Long: `Discover job definitions and synchronize them every update interval
until interrupted. A cycle starts immediately; later cycles are skipped
while the previous one is still running.

Examples:
  sceawian run
  sceawian run --interval 60 --task-count 8
  sceawian run --backend native -v`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// executeRun drives the scheduler until SIGINT or SIGTERM
func executeRun(cmd *cobra.Command) error {
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

	a.logger.Info("mirror loop started",
		zap.String("repos", a.cfg.Repos),
		zap.String("workspace", a.root.String()),
		zap.Duration("interval", a.cfg.Interval()))

	if err := sched.Run(ctx); err != nil {
		return err
	}

	a.logger.Info("mirror loop stopped")
	return nil
}
