/*
Copyright © 2026 ソニーレベル <C7kali3@gmail.com>

*/
package cmd

import (
	"context"
	"fmt"

	"github.com/kareigu/sceawian/internal/auth"
	"github.com/kareigu/sceawian/internal/config"
	"github.com/kareigu/sceawian/internal/exec"
	"github.com/kareigu/sceawian/internal/git"
	"github.com/kareigu/sceawian/internal/git/gitexec"
	"github.com/kareigu/sceawian/internal/git/gogit"
	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/kareigu/sceawian/internal/logging"
	"github.com/kareigu/sceawian/internal/mirror"
	"github.com/kareigu/sceawian/internal/scheduler"
	"github.com/kareigu/sceawian/internal/workspace"
	"go.uber.org/zap"
)

// app is the wired process: configuration, logger and synchronizer
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	root   *workspace.Root
	syncer *mirror.Synchronizer
}

// loadConfig reads the global configuration and builds the logger
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, warning, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	if warning != nil {
		logger.Warn("configuration file not used", zap.Error(warning))
	}

	return cfg, logger, nil
}

// newApp wires the workspace, credentials and backend for cfg
func newApp() (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	root, err := workspace.New(cfg.Workspace)
	if err != nil {
		return nil, err
	}
	if err := root.EnsureRoot(); err != nil {
		return nil, err
	}

	provider, err := auth.New(cfg.Auth.Method, auth.Options{
		User:                cfg.Auth.User,
		KeyFile:             cfg.Auth.KeyFile,
		PassphraseEnv:       cfg.Auth.PassphraseEnv,
		TokenEnv:            cfg.Auth.TokenEnv,
		InsecureSkipHostKey: cfg.Auth.InsecureSkipHostKey,
	})
	if err != nil {
		return nil, err
	}

	backend := newBackend(cfg.Backend, provider, logger)
	logger.Debug("process wired",
		zap.String("workspace", root.String()),
		zap.String("repos", cfg.Repos),
		zap.String("backend", backend.Name()),
		zap.String("auth", cfg.Auth.Method),
		zap.Duration("interval", cfg.Interval()),
		zap.Duration("job_timeout", cfg.Timeout()),
		zap.Int("task_count", cfg.TaskCount))

	return &app{
		cfg:    cfg,
		logger: logger,
		root:   root,
		syncer: mirror.New(backend, root, mirror.Options{Prune: cfg.Prune}, logger),
	}, nil
}

func newBackend(name string, provider auth.Provider, logger *zap.Logger) git.Backend {
	if name == config.BackendNative {
		return gogit.New(provider, logger)
	}
	return gitexec.New(exec.NewRunner(logger), provider, logger)
}

func (a *app) discover(ctx context.Context) (*jobs.Result, error) {
	return jobs.Discover(ctx, a.cfg.Repos, a.logger)
}

func (a *app) scheduler() (*scheduler.Scheduler, error) {
	return scheduler.New(scheduler.Config{
		Interval:   a.cfg.Interval(),
		JobTimeout: a.cfg.Timeout(),
		TaskCount:  a.cfg.TaskCount,
	}, a.discover, a.syncer, a.logger)
}

// close flushes buffered log entries
func (a *app) close() {
	_ = a.logger.Sync()
}
