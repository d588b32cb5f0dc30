/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd synchronizes a single definition without the scheduler
var syncCmd = &cobra.Command{
	Use:   "sync <job-file>",
	Short: "Synchronize one job definition now",
	Long: `Load a single job definition file and mirror it immediately, bounded
by the configured job timeout.

Examples:
  sceawian sync repos/alpha.toml
  sceawian sync repos/beta.yaml --backend native`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := jobs.Load(args[0])
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout())
		defer cancel()

		logger := a.logger.With(zap.String("job", def.Name))
		start := time.Now()
		if err := a.syncer.Synchronize(ctx, def); err != nil {
			logger.Error("job failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			return err
		}
		logger.Info("job synced", zap.Duration("duration", time.Since(start)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
