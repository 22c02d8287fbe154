package core

import "time"

type ProviderName string

const (
	ProviderCodex  ProviderName = "codex"
	ProviderClaude ProviderName = "claude"
	ProviderGemini ProviderName = "gemini"
)

// ProviderOrder is the declared order providers appear in a snapshot.
var ProviderOrder = []ProviderName{ProviderCodex, ProviderClaude, ProviderGemini}

func (n ProviderName) Valid() bool {
	switch n {
	case ProviderCodex, ProviderClaude, ProviderGemini:
		return true
	}
	return false
}

type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

type Source string

const (
	SourceParsed Source = "parsed"
	SourceManual Source = "manual"
	SourceMixed  Source = "mixed"
)

// ManualFields holds user-configured override values. Nil means unset.
type ManualFields struct {
	SessionUsedPct *float64   `json:"session_used_pct,omitempty" toml:"session_used_pct,omitempty"`
	SessionResetAt *time.Time `json:"session_reset_at,omitempty" toml:"session_reset_at,omitempty"`
	WeeklyUsedPct  *float64   `json:"weekly_used_pct,omitempty" toml:"weekly_used_pct,omitempty"`
	WeeklyResetAt  *time.Time `json:"weekly_reset_at,omitempty" toml:"weekly_reset_at,omitempty"`
}

func (m ManualFields) Any() bool {
	return m.SessionUsedPct != nil || m.SessionResetAt != nil || m.WeeklyUsedPct != nil || m.WeeklyResetAt != nil
}

const (
	ParserModeHybrid = "hybrid"
	ParserModeParsed = "parsed"
	ParserModeManual = "manual"
)

type ProviderConfig struct {
	Enabled    bool         `json:"enabled" toml:"enabled"`
	ParserMode string       `json:"parser_mode" toml:"parser_mode"` // "hybrid", "parsed", "manual"; not interpreted by adapters
	Manual     ManualFields `json:"manual" toml:"manual"`
}

// PartialUsage is what an adapter extracted before reconciliation with
// manual values. Every field is independently optional.
type PartialUsage struct {
	SessionUsedPct *float64
	SessionResetAt *time.Time
	WeeklyUsedPct  *float64
	WeeklyResetAt  *time.Time
	Details        Details
	Messages       []string
}

func (p *PartialUsage) Any() bool {
	if p == nil {
		return false
	}
	return p.SessionUsedPct != nil || p.SessionResetAt != nil || p.WeeklyUsedPct != nil || p.WeeklyResetAt != nil
}

func (p *PartialUsage) AddMessage(msg string) {
	p.Messages = append(p.Messages, msg)
}

type ProviderSnapshot struct {
	Provider       ProviderName
	Status         Status
	SessionUsedPct *float64
	SessionResetAt *time.Time
	WeeklyUsedPct  *float64
	WeeklyResetAt  *time.Time
	Source         Source
	Messages       []string
	Details        Details
	UpdatedAt      time.Time
}

type UsageSnapshot struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Providers   []ProviderSnapshot `json:"providers"`
}

func (s UsageSnapshot) Provider(name ProviderName) (ProviderSnapshot, bool) {
	for _, p := range s.Providers {
		if p.Provider == name {
			return p, true
		}
	}
	return ProviderSnapshot{}, false
}

func Float64Ptr(v float64) *float64 { return &v }

func TimePtr(t time.Time) *time.Time { return &t }
