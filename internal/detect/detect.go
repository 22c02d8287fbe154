// Package detect reports which provider data locations and CLIs are present
// on the workstation.
package detect

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/core"
)

// Location is one configured path and whether it exists.
type Location struct {
	Provider core.ProviderName `json:"provider,omitempty"`
	Kind     string            `json:"kind"` // e.g. "history", "sessions", "state_file"
	Path     string            `json:"path"`
	Exists   bool              `json:"exists"`
	IsDir    bool              `json:"is_dir"`
}

// DetectedTool is a provider CLI found on PATH.
type DetectedTool struct {
	Provider   core.ProviderName `json:"provider"`
	Binary     string            `json:"binary"`
	BinaryPath string            `json:"binary_path,omitempty"`
}

// Result holds the full inspection result.
type Result struct {
	Locations []Location     `json:"locations"`
	Tools     []DetectedTool `json:"tools"`
	Enabled   []string       `json:"enabled_providers"`
}

var providerBinaries = map[core.ProviderName]string{
	core.ProviderCodex:  "codex",
	core.ProviderClaude: "claude",
	core.ProviderGemini: "gemini",
}

// Inspect checks every path in cfg and looks up the provider CLIs.
func Inspect(cfg config.Config) Result {
	var result Result

	add := func(provider core.ProviderName, kind, path string) {
		if path == "" {
			return
		}
		loc := Location{Provider: provider, Kind: kind, Path: path}
		if info, err := os.Stat(path); err == nil {
			loc.Exists = true
			loc.IsDir = info.IsDir()
		}
		result.Locations = append(result.Locations, loc)
	}

	add(core.ProviderCodex, "history", cfg.Paths.CodexHistory)
	add(core.ProviderCodex, "sessions", cfg.Paths.CodexSessions)
	add(core.ProviderClaude, "stats_cache", cfg.Paths.ClaudeStats)
	for _, dir := range cfg.Paths.ClaudeProjects {
		add(core.ProviderClaude, "projects", dir)
	}
	add("", "state_file", cfg.General.StateFile)
	add("", "mirror", cfg.General.WindowsStatePath)
	add("", "state_db", cfg.General.StateDB)

	for _, name := range core.ProviderOrder {
		if cfg.Provider(name).Enabled {
			result.Enabled = append(result.Enabled, string(name))
		}
		bin := providerBinaries[name]
		result.Tools = append(result.Tools, DetectedTool{
			Provider:   name,
			Binary:     bin,
			BinaryPath: findBinary(bin),
		})
	}
	return result
}

// Missing lists the provider data locations that do not exist. Output
// files are left out since they are created on the first write.
func (r Result) Missing() []Location {
	var out []Location
	for _, loc := range r.Locations {
		if loc.Provider != "" && !loc.Exists {
			out = append(out, loc)
		}
	}
	return out
}

// findBinary checks if a binary exists on PATH and returns its full path.
func findBinary(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}

// Summary returns a human-readable summary of the inspection.
func (r Result) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Enabled providers: %s\n", strings.Join(r.Enabled, ", ")))
	for _, loc := range r.Locations {
		mark := "ok"
		if !loc.Exists {
			mark = "missing"
		}
		label := loc.Kind
		if loc.Provider != "" {
			label = string(loc.Provider) + " " + loc.Kind
		}
		sb.WriteString(fmt.Sprintf("  • %-18s %-8s %s\n", label, mark, loc.Path))
	}
	for _, tool := range r.Tools {
		if tool.BinaryPath != "" {
			sb.WriteString(fmt.Sprintf("  • %s CLI at %s\n", tool.Binary, tool.BinaryPath))
		} else {
			sb.WriteString(fmt.Sprintf("  • %s CLI not found on PATH\n", tool.Binary))
		}
	}
	return sb.String()
}
