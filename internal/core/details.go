package core

import "time"

// Details is the provider-specific payload attached to a snapshot. Each
// provider has exactly one implementation; the JSON codec dispatches on the
// snapshot's provider name.
type Details interface {
	DetailsProvider() ProviderName
}

type ClaudeDetails struct {
	DynamicLimits *DynamicLimits `json:"dynamic_limits,omitempty"`
}

func (ClaudeDetails) DetailsProvider() ProviderName { return ProviderClaude }

// DynamicLimits describes the P90-derived ceilings and the active session
// measured against them. WeeklyLimitEstimate assumes back-to-back 5h
// sessions for a whole week and is not a provider-published limit.
type DynamicLimits struct {
	SessionTokens         int64              `json:"session_tokens"`
	SessionMessages       int                `json:"session_messages"`
	WeeklyTokens          int64              `json:"weekly_tokens"`
	TokenLimitP90         int64              `json:"token_limit_p90"`
	MessageLimitP90       int64              `json:"message_limit_p90"`
	WeeklyLimitEstimate   int64              `json:"weekly_limit_estimate"`
	WeeklyLimitIsEstimate bool               `json:"weekly_limit_is_estimate"`
	HistoricalSessions    int                `json:"historical_sessions"`
	TokenUsagePct         float64            `json:"token_usage_pct"`
	MessageUsagePct       float64            `json:"message_usage_pct"`
	BurnRateTokensPerMin  float64            `json:"burn_rate_tokens_per_min"`
	PredictedTokensRunout *time.Time         `json:"predicted_tokens_runout_at"`
	SessionResetAt        time.Time          `json:"session_reset_at"`
	ModelDistribution     map[string]float64 `json:"model_distribution"`
	ActiveSessionFile     string             `json:"active_session_file,omitempty"`
}

type CodexDetails struct {
	Source                 string  `json:"source,omitempty"` // "session_log" or "history"
	SessionFile            string  `json:"session_file,omitempty"`
	Model                  string  `json:"model,omitempty"`
	ContextWindow          int     `json:"context_window,omitempty"`
	SessionTokens          int64   `json:"session_tokens,omitempty"`
	SessionEvents          int     `json:"session_events,omitempty"`
	BurnRateTokensPerMin   float64 `json:"burn_rate_tokens_per_min,omitempty"`
	PrimaryWindowMinutes   int     `json:"primary_window_minutes,omitempty"`
	SecondaryWindowMinutes int     `json:"secondary_window_minutes,omitempty"`
	PlanType               string  `json:"plan_type,omitempty"`
}

func (CodexDetails) DetailsProvider() ProviderName { return ProviderCodex }

type GeminiDetails struct{}

func (GeminiDetails) DetailsProvider() ProviderName { return ProviderGemini }
