package detect

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/core"
)

func testConfig(root string) config.Config {
	cfg := config.DefaultConfig()
	cfg.General.StateFile = filepath.Join(root, "state", "latest.json")
	cfg.General.WindowsStatePath = ""
	cfg.Paths = config.PathsConfig{
		CodexHistory:   filepath.Join(root, "codex", "history.jsonl"),
		CodexSessions:  filepath.Join(root, "codex", "sessions"),
		ClaudeStats:    filepath.Join(root, "claude", "stats-cache.json"),
		ClaudeProjects: []string{filepath.Join(root, "claude", "projects")},
	}
	return cfg
}

func TestInspect_ReportsMissingPaths(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(root)

	os.MkdirAll(cfg.Paths.CodexSessions, 0o755)
	os.WriteFile(cfg.Paths.CodexHistory, []byte("{}\n"), 0o644)

	result := Inspect(cfg)

	byKind := map[string]Location{}
	for _, loc := range result.Locations {
		byKind[loc.Kind] = loc
	}
	if loc := byKind["history"]; !loc.Exists || loc.IsDir {
		t.Errorf("history = %+v, want existing file", loc)
	}
	if loc := byKind["sessions"]; !loc.Exists || !loc.IsDir {
		t.Errorf("sessions = %+v, want existing dir", loc)
	}
	if _, ok := byKind["mirror"]; ok {
		t.Error("empty mirror path should not be reported")
	}

	missing := result.Missing()
	if len(missing) != 2 {
		t.Fatalf("missing = %+v, want stats cache and projects", missing)
	}
	for _, loc := range missing {
		if loc.Provider != core.ProviderClaude {
			t.Errorf("unexpected missing location %+v", loc)
		}
	}

	if strings.Join(result.Enabled, ",") != "codex,claude" {
		t.Errorf("enabled = %v", result.Enabled)
	}
	if len(result.Tools) != 3 {
		t.Errorf("tools = %d, want one per provider", len(result.Tools))
	}
}

func TestInspect_FindsBinaryOnPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix execute bit semantics do not apply on windows")
	}

	bin := t.TempDir()
	path := filepath.Join(bin, "codex")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write temp executable: %v", err)
	}
	t.Setenv("PATH", bin)

	result := Inspect(testConfig(t.TempDir()))
	for _, tool := range result.Tools {
		switch tool.Provider {
		case core.ProviderCodex:
			if tool.BinaryPath != path {
				t.Errorf("codex path = %q, want %q", tool.BinaryPath, path)
			}
		default:
			if tool.BinaryPath != "" {
				t.Errorf("%s path = %q, want empty", tool.Provider, tool.BinaryPath)
			}
		}
	}
}

func TestResultSummary(t *testing.T) {
	result := Inspect(testConfig(t.TempDir()))
	summary := result.Summary()
	if !strings.Contains(summary, "missing") {
		t.Errorf("summary should flag missing paths:\n%s", summary)
	}
	if !strings.Contains(summary, "Enabled providers: codex, claude") {
		t.Errorf("summary = %s", summary)
	}
}
