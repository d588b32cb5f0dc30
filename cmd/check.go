/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/kareigu/sceawian/internal/config"
	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/kareigu/sceawian/internal/prereq"
	"github.com/spf13/cobra"
)

// checkCmd validates the setup without touching any repository
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration, job definitions and prerequisites",
	Long: `Load the global configuration, scan the jobs directory and verify that
the tools the selected backend shells out to are installed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		out := cmd.OutOrStdout()
		printConfig(out, cfg)

		fmt.Fprintln(out, "\n"+headingStyle.Render("[2/3] Job definitions"))
		result, err := jobs.Discover(cmd.Context(), cfg.Repos, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  → %d valid, %d skipped\n", len(result.Definitions), len(result.Skipped))

		fmt.Fprintln(out, "\n"+headingStyle.Render("[3/3] Prerequisites"))
		return checkTools(cmd.Context(), out, prereq.NewChecker(), prereq.RequiredTools(cfg.Backend, cfg.Auth.Method))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, headingStyle.Render("[1/3] Configuration"))
	fmt.Fprintf(w, "  Repos:       %s\n", cfg.Repos)
	fmt.Fprintf(w, "  Workspace:   %s\n", cfg.Workspace)
	fmt.Fprintf(w, "  Backend:     %s\n", cfg.Backend)
	fmt.Fprintf(w, "  Auth:        %s\n", cfg.Auth.Method)
	fmt.Fprintf(w, "  Interval:    %v\n", cfg.Interval())
	fmt.Fprintf(w, "  Job timeout: %v\n", cfg.Timeout())
	fmt.Fprintf(w, "  Task count:  %d\n", cfg.TaskCount)
	fmt.Fprintf(w, "  Prune:       %v\n", cfg.Prune)
}

func checkTools(ctx context.Context, w io.Writer, checker *prereq.Checker, names []string) error {
	if len(names) == 0 {
		fmt.Fprintln(w, "  → none required")
		return nil
	}

	summary := checker.CheckMultiple(ctx, names)
	for _, r := range summary.Results {
		if r.Found {
			fmt.Fprintf(w, "  %s %s %s\n", okStyle.Render("✓"), r.Name, mutedStyle.Render(r.Version))
		} else {
			fmt.Fprintf(w, "  %s %s\n", badStyle.Render("✗"), r.Name)
		}
	}

	if !summary.AllFound {
		fmt.Fprintf(w, "\n%s", checker.FormatMissing(summary))
		return fmt.Errorf("missing prerequisites: %v", summary.MissingTools)
	}
	return nil
}
