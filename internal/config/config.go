package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/janekbaraniewski/usagedash/internal/core"
)

const (
	appName               = "usagedash"
	defaultRefreshSeconds = 15
	defaultTimezone       = "local"
	defaultWindowsMirror  = "/mnt/c/Users/Public/AppData/Local/UsageDash/latest.json"
)

type GeneralConfig struct {
	RefreshSeconds   int    `toml:"refresh_seconds"`
	Timezone         string `toml:"timezone"`           // "local" or an IANA zone name
	StateFile        string `toml:"state_file"`         // snapshot JSON written every cycle
	WindowsStatePath string `toml:"windows_state_path"` // optional mirror, e.g. a WSL host path
	StateDB          string `toml:"state_db"`           // optional SQLite copy of the latest snapshot
}

// PathsConfig holds every provider log location. Adapters receive these
// explicitly and never resolve home-relative defaults themselves.
type PathsConfig struct {
	CodexHistory   string   `toml:"codex_history"`
	CodexSessions  string   `toml:"codex_sessions"`
	ClaudeStats    string   `toml:"claude_stats"`
	ClaudeProjects []string `toml:"claude_projects"`
}

type ProvidersConfig struct {
	Codex  core.ProviderConfig `toml:"codex"`
	Claude core.ProviderConfig `toml:"claude"`
	Gemini core.ProviderConfig `toml:"gemini"`
}

type Config struct {
	General   GeneralConfig   `toml:"general"`
	Paths     PathsConfig     `toml:"paths"`
	Providers ProvidersConfig `toml:"providers"`
}

func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			RefreshSeconds:   defaultRefreshSeconds,
			Timezone:         defaultTimezone,
			StateFile:        filepath.Join(xdg.StateHome, appName, "latest.json"),
			WindowsStatePath: defaultMirrorPath(),
		},
		Paths: DefaultPaths(),
		Providers: ProvidersConfig{
			Codex:  core.ProviderConfig{Enabled: true, ParserMode: core.ParserModeHybrid},
			Claude: core.ProviderConfig{Enabled: true, ParserMode: core.ParserModeHybrid},
			Gemini: core.ProviderConfig{Enabled: false, ParserMode: core.ParserModeManual},
		},
	}
}

// DefaultPaths resolves the standard CLI log locations under the user's
// home directory. CODEX_HOME overrides the Codex root.
func DefaultPaths() PathsConfig {
	home, _ := os.UserHomeDir()

	codexHome := os.Getenv("CODEX_HOME")
	if codexHome == "" {
		codexHome = filepath.Join(home, ".codex")
	}

	return PathsConfig{
		CodexHistory:  filepath.Join(codexHome, "history.jsonl"),
		CodexSessions: filepath.Join(codexHome, "sessions"),
		ClaudeStats:   filepath.Join(home, ".claude", "stats-cache.json"),
		ClaudeProjects: []string{
			filepath.Join(home, ".claude", "projects"),
			filepath.Join(home, ".config", "claude", "projects"),
		},
	}
}

// defaultMirrorPath returns the Windows-side mirror location when running
// under WSL with the C: drive mounted, and "" otherwise.
func defaultMirrorPath() string {
	if info, err := os.Stat("/mnt/c/Users"); err == nil && info.IsDir() {
		return defaultWindowsMirror
	}
	return ""
}

func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// LoadOrInit loads the config at path, writing the defaults there first
// when the file does not exist yet.
func LoadOrInit(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := SaveTo(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}
	return LoadFrom(path)
}

func (c *Config) normalize() {
	defaults := DefaultConfig()

	if c.General.RefreshSeconds <= 0 {
		c.General.RefreshSeconds = defaultRefreshSeconds
	}
	if c.General.Timezone == "" {
		c.General.Timezone = defaultTimezone
	}
	if c.General.StateFile == "" {
		c.General.StateFile = defaults.General.StateFile
	}

	if c.Paths.CodexHistory == "" {
		c.Paths.CodexHistory = defaults.Paths.CodexHistory
	}
	if c.Paths.CodexSessions == "" {
		c.Paths.CodexSessions = defaults.Paths.CodexSessions
	}
	if c.Paths.ClaudeStats == "" {
		c.Paths.ClaudeStats = defaults.Paths.ClaudeStats
	}
	if len(c.Paths.ClaudeProjects) == 0 {
		c.Paths.ClaudeProjects = defaults.Paths.ClaudeProjects
	}

	for _, name := range core.ProviderOrder {
		pc := c.provider(name)
		if pc.ParserMode == "" {
			pc.ParserMode = core.ParserModeHybrid
		}
	}
}

// Provider returns a copy of the named provider's configuration.
func (c Config) Provider(name core.ProviderName) core.ProviderConfig {
	if pc := c.provider(name); pc != nil {
		return *pc
	}
	return core.ProviderConfig{}
}

func (c *Config) provider(name core.ProviderName) *core.ProviderConfig {
	switch name {
	case core.ProviderCodex:
		return &c.Providers.Codex
	case core.ProviderClaude:
		return &c.Providers.Claude
	case core.ProviderGemini:
		return &c.Providers.Gemini
	}
	return nil
}

// Location resolves general.timezone.
func (c Config) Location() (*time.Location, error) {
	switch c.General.Timezone {
	case "", defaultTimezone:
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.General.Timezone, err)
	}
	return loc, nil
}

func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.General.RefreshSeconds) * time.Second
}

// saveMu guards read-modify-write cycles on the config file.
var saveMu sync.Mutex

func SaveTo(path string, cfg Config) error {
	saveMu.Lock()
	defer saveMu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	body, err := Encode(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return buf.String(), nil
}
