// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Tests for flag binding and command output

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/kareigu/sceawian/internal/config"
	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/kareigu/sceawian/internal/prereq"
	"github.com/kareigu/sceawian/internal/scheduler"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagsOverrideConfiguration(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerConfigFlags(fs)

	v := config.New()
	require.NoError(t, bindFlags(v, fs))
	require.NoError(t, fs.Parse([]string{"--task-count", "9", "--backend", "native", "--interval", "45"}))

	cfg, warning, err := config.Load(v, filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Error(t, warning)

	assert.Equal(t, 9, cfg.TaskCount)
	assert.Equal(t, config.BackendNative, cfg.Backend)
	assert.Equal(t, 45, cfg.UpdateInterval)
	assert.Equal(t, config.DefaultReposDir, cfg.Repos)
	assert.Equal(t, config.DefaultWorkspaceDir, cfg.Workspace)
}

func TestUnsetFlagsKeepDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerConfigFlags(fs)

	v := config.New()
	require.NoError(t, bindFlags(v, fs))
	require.NoError(t, fs.Parse(nil))

	cfg, _, err := config.Load(v, filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTaskCount, cfg.TaskCount)
	assert.Equal(t, config.DefaultUpdateInterval, cfg.UpdateInterval)
}

func TestBindFlagsUndefined(t *testing.T) {
	err := bindFlags(config.New(), pflag.NewFlagSet("empty", pflag.ContinueOnError))
	assert.Error(t, err)
}

func TestPrintJobs(t *testing.T) {
	result := &jobs.Result{
		Definitions: []jobs.Definition{
			{Name: "alpha", Source: "/srv/a", Target: "/srv/b", Path: "/etc/repos/alpha.toml"},
		},
		Skipped: []jobs.Skipped{
			{Path: "/etc/repos/broken.toml", Err: jobs.ErrMissingField},
		},
	}

	var buf bytes.Buffer
	printJobs(&buf, "/etc/repos", result)

	out := buf.String()
	assert.Contains(t, out, "Jobs in /etc/repos: 1")
	assert.Contains(t, out, "alpha.toml")
	assert.Contains(t, out, "/srv/a")
	assert.Contains(t, out, "Skipped: 1")
	assert.Contains(t, out, "broken.toml")
	assert.Contains(t, out, "missing required field")
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name    string
		report  *scheduler.Report
		wantErr bool
	}{
		{
			name:   "all synced",
			report: &scheduler.Report{Counts: map[scheduler.Status]int{scheduler.StatusSynced: 2}},
		},
		{
			name:   "skipped only",
			report: &scheduler.Report{Counts: map[scheduler.Status]int{scheduler.StatusSkipped: 1}},
		},
		{
			name:    "failed",
			report:  &scheduler.Report{Counts: map[scheduler.Status]int{scheduler.StatusFailed: 1}},
			wantErr: true,
		},
		{
			name:    "timed out",
			report:  &scheduler.Report{Counts: map[scheduler.Status]int{scheduler.StatusTimedOut: 1}},
			wantErr: true,
		},
		{
			name:    "discovery",
			report:  &scheduler.Report{Counts: map[scheduler.Status]int{}, DiscoveryErr: errors.New("gone")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reportError(tt.report)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckToolsReportsMissing(t *testing.T) {
	checker := prereq.NewCheckerWithTools(map[string]*prereq.Tool{
		"nope": {Name: "nope", Command: "sceawian-definitely-missing", InstallGuide: "install nope"},
	})

	var buf bytes.Buffer
	err := checkTools(context.Background(), &buf, checker, []string{"nope"})
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗")
	assert.Contains(t, buf.String(), "nope")
	assert.Contains(t, buf.String(), "install nope")
}

func TestCheckToolsNoneRequired(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, checkTools(context.Background(), &buf, prereq.NewChecker(), nil))
	assert.Contains(t, buf.String(), "none required")
}
