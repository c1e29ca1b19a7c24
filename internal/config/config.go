// Package config loads apiary's TOML configuration file, layering a decoded
// document over compiled-in defaults and validating every field so a bad
// value degrades to its default with a warning rather than aborting startup.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Polling holds the per-state pane-polling cadence, in milliseconds.
type Polling struct {
	FocusedIntervalMs    int `toml:"focused_interval_ms"`
	PermissionIntervalMs int `toml:"permission_interval_ms"`
	WorkingIntervalMs    int `toml:"working_interval_ms"`
	IdleIntervalMs       int `toml:"idle_interval_ms"`
	ErrorIntervalMs      int `toml:"error_interval_ms"`
}

// Notification controls desktop-notification delivery on state transitions.
type Notification struct {
	Enabled bool `toml:"enabled"`
	Sound   bool `toml:"sound"`
}

// Detection holds user-supplied regex patterns appended to the built-in
// classification rule sets.
type Detection struct {
	PermissionPatterns []string `toml:"permission_patterns"`
	ErrorPatterns      []string `toml:"error_patterns"`
	IdlePatterns       []string `toml:"idle_patterns"`
}

// Discovery controls how newly recognized panes are folded into Sessions.
type Discovery struct {
	// PromoteTeammates splits Members beyond a Session's first into sibling
	// child Sessions ("<parent>/<role>") sharing the parent's tmux session,
	// so each teammate renders as its own dashboard card instead of being
	// buried in the parent's member list. Off by default: most Sessions are
	// solo, and turning this on changes what `list`/`status` count as a
	// Session.
	PromoteTeammates bool `toml:"promote_teammates"`
}

// Config is the fully-resolved, validated configuration.
type Config struct {
	Polling      Polling      `toml:"polling"`
	Notification Notification `toml:"notification"`
	Detection    Detection    `toml:"detection"`
	Discovery    Discovery    `toml:"discovery"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Polling: Polling{
			FocusedIntervalMs:    1000,
			PermissionIntervalMs: 1000,
			WorkingIntervalMs:    3000,
			IdleIntervalMs:       10000,
			ErrorIntervalMs:      5000,
		},
		Notification: Notification{
			Enabled: true,
			Sound:   false,
		},
	}
}

// DefaultDir returns <user-config>/apiary, honoring APIARY_CONFIG as a
// full directory override.
func DefaultDir() (string, error) {
	if dir := os.Getenv("APIARY_CONFIG"); dir != "" {
		return dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine config directory: %w", err)
	}
	return filepath.Join(dir, "apiary"), nil
}

// DefaultPath returns <user-config>/apiary/config.toml.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads and validates the config file at path. A missing file yields
// Default() with no error, matching apiary's "absent means defaults"
// convention. Parse errors are non-fatal: they log a warning and fall back
// to Default(), since a broken config file should never keep the dashboard
// from starting.
func Load(path string) *Config {
	logger := slog.Default()
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read config file, using defaults", "path", path, "error", err)
		}
		return cfg
	}

	var decoded Config
	// Start from defaults so omitted sections keep their built-in values.
	decoded = *cfg
	if _, err := toml.Decode(string(data), &decoded); err != nil {
		logger.Warn("could not parse config file, using defaults", "path", path, "error", err)
		return cfg
	}

	validate(&decoded, cfg, logger)
	return &decoded
}

// validate rejects non-positive durations and unparseable regex patterns
// per-field, falling each back to the corresponding field in defaults and
// logging a warning, rather than aborting.
func validate(cfg, defaults *Config, logger *slog.Logger) {
	fields := []struct {
		name string
		val  *int
		def  int
	}{
		{"polling.focused_interval_ms", &cfg.Polling.FocusedIntervalMs, defaults.Polling.FocusedIntervalMs},
		{"polling.permission_interval_ms", &cfg.Polling.PermissionIntervalMs, defaults.Polling.PermissionIntervalMs},
		{"polling.working_interval_ms", &cfg.Polling.WorkingIntervalMs, defaults.Polling.WorkingIntervalMs},
		{"polling.idle_interval_ms", &cfg.Polling.IdleIntervalMs, defaults.Polling.IdleIntervalMs},
		{"polling.error_interval_ms", &cfg.Polling.ErrorIntervalMs, defaults.Polling.ErrorIntervalMs},
	}
	for _, f := range fields {
		if *f.val <= 0 {
			logger.Warn("invalid config value, falling back to default", "field", f.name, "value", *f.val, "default", f.def)
			*f.val = f.def
		}
	}

	cfg.Detection.PermissionPatterns = validRegexes("detection.permission_patterns", cfg.Detection.PermissionPatterns, logger)
	cfg.Detection.ErrorPatterns = validRegexes("detection.error_patterns", cfg.Detection.ErrorPatterns, logger)
	cfg.Detection.IdlePatterns = validRegexes("detection.idle_patterns", cfg.Detection.IdlePatterns, logger)
}

func validRegexes(field string, patterns []string, logger *slog.Logger) []string {
	out := patterns[:0]
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			logger.Warn("invalid regex in config, dropping", "field", field, "pattern", p, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

// Interval returns the configured cadence as a time.Duration.
func (p Polling) Interval(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
