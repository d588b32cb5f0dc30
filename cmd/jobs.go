/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/spf13/cobra"
)

// jobsCmd lists what the next cycle would synchronize
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List discovered job definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		result, err := jobs.Discover(cmd.Context(), cfg.Repos, logger)
		if err != nil {
			return err
		}
		printJobs(cmd.OutOrStdout(), cfg.Repos, result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

// printJobs writes definitions and skipped files found in dir
func printJobs(w io.Writer, dir string, result *jobs.Result) {
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Jobs in %s: %d", dir, len(result.Definitions))))
	for _, def := range result.Definitions {
		fmt.Fprintf(w, "  %s\n", okStyle.Render(def.Name))
		fmt.Fprintf(w, "    File:    %s\n", filepath.Base(def.Path))
		fmt.Fprintf(w, "    Source:  %s\n", def.Source)
		fmt.Fprintf(w, "    Target:  %s\n", def.Target)
	}

	if len(result.Skipped) == 0 {
		return
	}
	fmt.Fprintln(w, "\n"+headingStyle.Render(fmt.Sprintf("Skipped: %d", len(result.Skipped))))
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  %s: %s\n", badStyle.Render(filepath.Base(s.Path)), mutedStyle.Render(s.Err.Error()))
	}
}
