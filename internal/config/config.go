// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Global configuration loading: flags > env > config file > defaults

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix is the prefix for environment overrides (SCEAWIAN_TASK_COUNT, ...)
const EnvPrefix = "SCEAWIAN"

// DefaultPath is where the global configuration is looked up
const DefaultPath = "config.toml"

// Defaults
const (
	DefaultUpdateInterval = 20
	DefaultReposDir       = "repos"
	DefaultWorkspaceDir   = "workspace"
	DefaultTaskCount      = 4
	DefaultBackend        = BackendExec
	DefaultAuthMethod     = "agent"
	DefaultAuthUser       = "git"
	DefaultTokenEnv       = "SCEAWIAN_TOKEN"
)

// Version-control backends
const (
	BackendExec   = "exec"
	BackendNative = "native"
)

// ErrInvalid is returned when configuration values cannot be used
var ErrInvalid = errors.New("invalid configuration")

// Config is the global configuration
type Config struct {
	UpdateInterval int        `mapstructure:"update_interval"` // seconds
	Repos          string     `mapstructure:"repos"`
	TaskCount      int        `mapstructure:"task_count"`
	Workspace      string     `mapstructure:"workspace"`
	JobTimeout     int        `mapstructure:"job_timeout"` // seconds, 0 means the interval
	Backend        string     `mapstructure:"backend"`
	Prune          bool       `mapstructure:"prune"`
	Auth           AuthConfig `mapstructure:"auth"`
	Log            LogConfig  `mapstructure:"log"`
}

// AuthConfig selects how credentials are resolved at connection time
type AuthConfig struct {
	Method              string `mapstructure:"method"` // agent, key, token, none
	User                string `mapstructure:"user"`
	KeyFile             string `mapstructure:"key_file"`
	PassphraseEnv       string `mapstructure:"passphrase_env"`
	TokenEnv            string `mapstructure:"token_env"`
	InsecureSkipHostKey bool   `mapstructure:"insecure_skip_host_key"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Interval returns the scheduling period
func (c *Config) Interval() time.Duration {
	return time.Duration(c.UpdateInterval) * time.Second
}

// Timeout returns the per-job deadline; never longer than the interval
func (c *Config) Timeout() time.Duration {
	if c.JobTimeout <= 0 {
		return c.Interval()
	}
	return time.Duration(c.JobTimeout) * time.Second
}

// New returns a viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("update_interval", DefaultUpdateInterval)
	v.SetDefault("repos", DefaultReposDir)
	v.SetDefault("task_count", DefaultTaskCount)
	v.SetDefault("workspace", DefaultWorkspaceDir)
	v.SetDefault("job_timeout", 0)
	v.SetDefault("backend", DefaultBackend)
	v.SetDefault("prune", true)
	v.SetDefault("auth.method", DefaultAuthMethod)
	v.SetDefault("auth.user", DefaultAuthUser)
	v.SetDefault("auth.key_file", "")
	v.SetDefault("auth.passphrase_env", "")
	v.SetDefault("auth.token_env", DefaultTokenEnv)
	v.SetDefault("auth.insecure_skip_host_key", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg, _ := decode(New())
	return cfg
}

// Load reads the file at path into v. A missing or malformed file is not
// fatal: the returned warning explains why defaults were used instead.
// Only invalid values produce an error.
func Load(v *viper.Viper, path string) (cfg *Config, warning error, err error) {
	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)

	if readErr := v.ReadInConfig(); readErr != nil {
		warning = fmt.Errorf("couldn't load %s, using defaults: %w", path, readErr)
	}

	cfg, err = decode(v)
	if err != nil {
		return nil, warning, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, warning, err
	}

	return cfg, warning, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Auth.Method = strings.ToLower(strings.TrimSpace(cfg.Auth.Method))
	return &cfg, nil
}

// Validate checks values the scheduler depends on
func (c *Config) Validate() error {
	var errs error

	if c.UpdateInterval <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("update_interval must be positive, got %d", c.UpdateInterval))
	}
	if c.TaskCount <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("task_count must be positive, got %d", c.TaskCount))
	}
	if strings.TrimSpace(c.Repos) == "" {
		errs = multierr.Append(errs, errors.New("repos directory is required"))
	}
	if strings.TrimSpace(c.Workspace) == "" {
		errs = multierr.Append(errs, errors.New("workspace directory is required"))
	}
	if c.JobTimeout < 0 {
		errs = multierr.Append(errs, fmt.Errorf("job_timeout must not be negative, got %d", c.JobTimeout))
	}
	if c.UpdateInterval > 0 && c.JobTimeout > c.UpdateInterval {
		errs = multierr.Append(errs, fmt.Errorf("job_timeout (%ds) must not exceed update_interval (%ds)", c.JobTimeout, c.UpdateInterval))
	}

	switch c.Backend {
	case BackendExec, BackendNative:
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown backend %q", c.Backend))
	}

	switch c.Auth.Method {
	case "agent", "none", "token":
	case "key":
		if strings.TrimSpace(c.Auth.KeyFile) == "" {
			errs = multierr.Append(errs, errors.New("auth.key_file is required for auth method \"key\""))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("unknown auth method %q", c.Auth.Method))
	}

	if errs != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, errs)
	}
	return nil
}

// String renders the effective settings for the startup log
func (c *Config) String() string {
	return fmt.Sprintf("update_interval=%ds repos=%s workspace=%s task_count=%d job_timeout=%s backend=%s auth=%s",
		c.UpdateInterval, c.Repos, c.Workspace, c.TaskCount, c.Timeout(), c.Backend, c.Auth.Method)
}
