/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/kareigu/sceawian/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// v holds defaults, environment and bound flags
	v = config.New()
)

// flagKeys maps persistent flag names to configuration keys
var flagKeys = map[string]string{
	"repos":      "repos",
	"workspace":  "workspace",
	"task-count": "task_count",
	"interval":   "update_interval",
	"backend":    "backend",
}

// rootCmd represents the base command - runs the mirror loop without subcommand
var rootCmd = &cobra.Command{
	Use:   "sceawian",
	Short: "Keep mirrors of git repositories in sync",
	Long: `sceawian periodically mirrors git repositories from a source remote
to a target remote. Each job is a small TOML or YAML file in the jobs
directory naming a source and a target; every cycle the job's local
mirror is brought up to date with the source and pushed to the target.

Examples:
  sceawian
  sceawian --config /etc/sceawian/config.toml
  sceawian once --verbose
  sceawian sync repos/alpha.toml
  sceawian check --backend native`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeRun(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// registerConfigFlags defines the flags that override configuration keys
func registerConfigFlags(fs *pflag.FlagSet) {
	fs.String("repos", config.DefaultReposDir, "Directory holding job definitions")
	fs.String("workspace", config.DefaultWorkspaceDir, "Directory holding local mirrors")
	fs.Int("task-count", config.DefaultTaskCount, "Maximum number of jobs synchronized at once")
	fs.Int("interval", config.DefaultUpdateInterval, "Seconds between cycles")
	fs.String("backend", config.DefaultBackend, "Git backend: exec or native")
}

// bindFlags lets set flags take precedence over environment and file values
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag --%s not defined", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

func init() {
	// Persistent flags - available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "Global configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	registerConfigFlags(rootCmd.PersistentFlags())

	cobra.CheckErr(bindFlags(v, rootCmd.PersistentFlags()))
}
