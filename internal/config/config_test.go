package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	want := Default()
	if cfg.Polling != want.Polling || cfg.Notification != want.Notification {
		t.Errorf("got %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadOverridesSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`
[polling]
working_interval_ms = 9000

[notification]
enabled = false
`), 0600)

	cfg := Load(path)
	if cfg.Polling.WorkingIntervalMs != 9000 {
		t.Errorf("WorkingIntervalMs = %d, want 9000", cfg.Polling.WorkingIntervalMs)
	}
	if cfg.Polling.IdleIntervalMs != Default().Polling.IdleIntervalMs {
		t.Errorf("expected untouched field to keep its default, got %d", cfg.Polling.IdleIntervalMs)
	}
	if cfg.Notification.Enabled {
		t.Errorf("expected notification.enabled = false")
	}
}

func TestLoadInvalidValueFallsBackToDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`
[polling]
error_interval_ms = -5
`), 0600)

	cfg := Load(path)
	if cfg.Polling.ErrorIntervalMs != Default().Polling.ErrorIntervalMs {
		t.Errorf("expected fallback to default for invalid value, got %d", cfg.Polling.ErrorIntervalMs)
	}
}

func TestLoadDropsInvalidRegex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`
[detection]
error_patterns = ["valid.*pattern", "(unclosed"]
`), 0600)

	cfg := Load(path)
	if len(cfg.Detection.ErrorPatterns) != 1 || cfg.Detection.ErrorPatterns[0] != "valid.*pattern" {
		t.Errorf("expected only the valid pattern to survive, got %v", cfg.Detection.ErrorPatterns)
	}
}

func TestLoadDiscoverySectionDefaultsOff(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if cfg.Discovery.PromoteTeammates {
		t.Error("expected promote_teammates to default to false")
	}
}

func TestLoadDiscoverySectionOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`
[discovery]
promote_teammates = true
`), 0600)

	cfg := Load(path)
	if !cfg.Discovery.PromoteTeammates {
		t.Error("expected promote_teammates = true")
	}
}

func TestLoadMalformedTOMLFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte(`not = [valid toml`), 0600)

	cfg := Load(path)
	want := Default()
	if cfg.Polling != want.Polling {
		t.Errorf("got %+v, want defaults", cfg.Polling)
	}
}
