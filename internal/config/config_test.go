package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.General.RefreshSeconds != 15 {
		t.Errorf("default refresh = %d, want 15", cfg.General.RefreshSeconds)
	}
	if cfg.General.Timezone != "local" {
		t.Errorf("default timezone = %q, want local", cfg.General.Timezone)
	}
	if !cfg.Providers.Codex.Enabled || !cfg.Providers.Claude.Enabled {
		t.Error("codex and claude should be enabled by default")
	}
	if cfg.Providers.Gemini.Enabled {
		t.Error("gemini should be disabled by default")
	}
	if cfg.Providers.Gemini.ParserMode != core.ParserModeManual {
		t.Errorf("gemini parser mode = %q, want manual", cfg.Providers.Gemini.ParserMode)
	}
	if len(cfg.Paths.ClaudeProjects) == 0 {
		t.Error("expected default claude project dirs")
	}
}

func TestDefaultPaths_CodexHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CODEX_HOME", dir)

	paths := DefaultPaths()
	if paths.CodexHistory != filepath.Join(dir, "history.jsonl") {
		t.Errorf("codex history = %q", paths.CodexHistory)
	}
	if paths.CodexSessions != filepath.Join(dir, "sessions") {
		t.Errorf("codex sessions = %q", paths.CodexSessions)
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.General.RefreshSeconds != 15 {
		t.Error("should return defaults for missing file")
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[general]
refresh_seconds = 5
timezone = "UTC"

[paths]
codex_history = "/data/codex/history.jsonl"

[providers.gemini]
enabled = true

[providers.gemini.manual]
session_used_pct = 42.5
weekly_reset_at = 2026-03-09T10:00:00Z
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.General.RefreshSeconds != 5 {
		t.Errorf("refresh = %d, want 5", cfg.General.RefreshSeconds)
	}
	if cfg.Paths.CodexHistory != "/data/codex/history.jsonl" {
		t.Errorf("codex history = %q", cfg.Paths.CodexHistory)
	}
	if cfg.Paths.CodexSessions == "" {
		t.Error("unset paths should fall back to defaults")
	}
	if !cfg.Providers.Codex.Enabled {
		t.Error("codex enabled default should survive a partial file")
	}

	gemini := cfg.Provider(core.ProviderGemini)
	if !gemini.Enabled {
		t.Error("gemini should be enabled")
	}
	if gemini.ParserMode != core.ParserModeManual {
		t.Errorf("gemini parser mode = %q, want manual default", gemini.ParserMode)
	}
	if gemini.Manual.SessionUsedPct == nil || *gemini.Manual.SessionUsedPct != 42.5 {
		t.Errorf("manual session pct = %v, want 42.5", gemini.Manual.SessionUsedPct)
	}
	want := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	if gemini.Manual.WeeklyResetAt == nil || !gemini.Manual.WeeklyResetAt.Equal(want) {
		t.Errorf("manual weekly reset = %v, want %v", gemini.Manual.WeeklyResetAt, want)
	}
	if gemini.Manual.WeeklyUsedPct != nil {
		t.Errorf("unset manual weekly pct = %v, want nil", gemini.Manual.WeeklyUsedPct)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("{{invalid toml}}"), 0o644)

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestLoadOrInit_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrInit(path)
	if err != nil {
		t.Fatalf("LoadOrInit: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}

	again, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom after init: %v", err)
	}
	if again.General.StateFile != cfg.General.StateFile {
		t.Errorf("state file = %q, want %q", again.General.StateFile, cfg.General.StateFile)
	}
}

func TestSaveTo_RoundTripsManualFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	reset := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

	cfg := DefaultConfig()
	cfg.Providers.Claude.Manual.WeeklyUsedPct = core.Float64Ptr(61)
	cfg.Providers.Claude.Manual.SessionResetAt = &reset

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	manual := loaded.Providers.Claude.Manual
	if manual.WeeklyUsedPct == nil || *manual.WeeklyUsedPct != 61 {
		t.Errorf("weekly pct = %v, want 61", manual.WeeklyUsedPct)
	}
	if manual.SessionResetAt == nil || !manual.SessionResetAt.Equal(reset) {
		t.Errorf("session reset = %v, want %v", manual.SessionResetAt, reset)
	}
	if manual.SessionUsedPct != nil || manual.WeeklyResetAt != nil {
		t.Error("unset manual fields should stay unset")
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Fatalf("Location() = %v, %v; want time.Local", loc, err)
	}

	cfg.General.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Fatalf("Location() = %v, %v; want UTC", loc, err)
	}

	cfg.General.Timezone = "Not/AZone"
	if _, err := cfg.Location(); err == nil {
		t.Error("expected error for unknown zone")
	}
}
