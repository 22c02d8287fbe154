package config

import (
	"testing"
	"time"
)

func TestSet_GeneralKeys(t *testing.T) {
	cfg := DefaultConfig()

	if err := Set(&cfg, "general.refresh_seconds", "30"); err != nil {
		t.Fatalf("Set refresh: %v", err)
	}
	if cfg.General.RefreshSeconds != 30 {
		t.Errorf("refresh = %d, want 30", cfg.General.RefreshSeconds)
	}

	if err := Set(&cfg, "general.windows_state_path", "/mnt/c/tmp/latest.json"); err != nil {
		t.Fatalf("Set mirror: %v", err)
	}
	if cfg.General.WindowsStatePath != "/mnt/c/tmp/latest.json" {
		t.Errorf("mirror = %q", cfg.General.WindowsStatePath)
	}

	if err := Set(&cfg, "general.refresh_seconds", "-1"); err == nil {
		t.Error("expected error for negative refresh")
	}
	if err := Set(&cfg, "general.timezone", "Nowhere/Special"); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestSet_ProviderKeys(t *testing.T) {
	cfg := DefaultConfig()

	steps := []struct{ key, value string }{
		{"providers.gemini.enabled", "true"},
		{"providers.gemini.parser_mode", "parsed"},
		{"providers.gemini.manual.session_used_pct", "12.5"},
		{"providers.gemini.manual.weekly_reset_at", "2026-05-01T08:00:00Z"},
	}
	for _, s := range steps {
		if err := Set(&cfg, s.key, s.value); err != nil {
			t.Fatalf("Set(%s): %v", s.key, err)
		}
	}

	g := cfg.Providers.Gemini
	if !g.Enabled || g.ParserMode != "parsed" {
		t.Errorf("gemini = %+v", g)
	}
	if g.Manual.SessionUsedPct == nil || *g.Manual.SessionUsedPct != 12.5 {
		t.Errorf("session pct = %v", g.Manual.SessionUsedPct)
	}
	want := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	if g.Manual.WeeklyResetAt == nil || !g.Manual.WeeklyResetAt.Equal(want) {
		t.Errorf("weekly reset = %v, want %v", g.Manual.WeeklyResetAt, want)
	}

	if err := Set(&cfg, "providers.gemini.manual.session_used_pct", "none"); err != nil {
		t.Fatalf("clearing manual field: %v", err)
	}
	if cfg.Providers.Gemini.Manual.SessionUsedPct != nil {
		t.Error("expected session pct to be cleared")
	}
}

func TestSet_LocalTimestamp(t *testing.T) {
	cfg := DefaultConfig()
	if err := Set(&cfg, "providers.codex.manual.session_reset_at", "2026-05-01T08:15:00"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got := cfg.Providers.Codex.Manual.SessionResetAt
	want := time.Date(2026, 5, 1, 8, 15, 0, 0, time.Local)
	if got == nil || !got.Equal(want) {
		t.Errorf("session reset = %v, want %v", got, want)
	}
}

func TestSet_Rejects(t *testing.T) {
	cfg := DefaultConfig()
	for _, tt := range []struct{ key, value string }{
		{"general.unknown", "1"},
		{"providers.cursor.enabled", "true"},
		{"providers.codex.enabled", "maybe"},
		{"providers.codex.parser_mode", "auto"},
		{"providers.codex.manual.tokens", "5"},
		{"providers.codex.manual.weekly_used_pct", "lots"},
		{"providers.codex.manual.weekly_reset_at", "next tuesday"},
	} {
		if err := Set(&cfg, tt.key, tt.value); err == nil {
			t.Errorf("Set(%s, %s) should fail", tt.key, tt.value)
		}
	}
}
