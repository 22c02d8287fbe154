package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type providerSnapshotJSON struct {
	Provider       ProviderName    `json:"provider"`
	Status         Status          `json:"status"`
	SessionUsedPct *float64        `json:"session_used_pct"`
	SessionResetAt *time.Time      `json:"session_reset_at"`
	WeeklyUsedPct  *float64        `json:"weekly_used_pct"`
	WeeklyResetAt  *time.Time      `json:"weekly_reset_at"`
	Source         Source          `json:"source"`
	Messages       []string        `json:"messages"`
	Details        json.RawMessage `json:"details"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

var emptyObject = json.RawMessage(`{}`)

func (s ProviderSnapshot) MarshalJSON() ([]byte, error) {
	out := providerSnapshotJSON{
		Provider:       s.Provider,
		Status:         s.Status,
		SessionUsedPct: s.SessionUsedPct,
		SessionResetAt: s.SessionResetAt,
		WeeklyUsedPct:  s.WeeklyUsedPct,
		WeeklyResetAt:  s.WeeklyResetAt,
		Source:         s.Source,
		Messages:       s.Messages,
		Details:        emptyObject,
		UpdatedAt:      s.UpdatedAt,
	}
	if out.Messages == nil {
		out.Messages = []string{}
	}
	if s.Details != nil {
		if got := s.Details.DetailsProvider(); got != s.Provider {
			return nil, fmt.Errorf("details for %s attached to %s snapshot", got, s.Provider)
		}
		raw, err := json.Marshal(s.Details)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s details: %w", s.Provider, err)
		}
		out.Details = raw
	}
	return json.Marshal(out)
}

func (s *ProviderSnapshot) UnmarshalJSON(data []byte) error {
	var in providerSnapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if !in.Provider.Valid() {
		return fmt.Errorf("unknown provider %q", in.Provider)
	}

	details, err := decodeDetails(in.Provider, in.Details)
	if err != nil {
		return err
	}

	*s = ProviderSnapshot{
		Provider:       in.Provider,
		Status:         in.Status,
		SessionUsedPct: in.SessionUsedPct,
		SessionResetAt: in.SessionResetAt,
		WeeklyUsedPct:  in.WeeklyUsedPct,
		WeeklyResetAt:  in.WeeklyResetAt,
		Source:         in.Source,
		Messages:       in.Messages,
		Details:        details,
		UpdatedAt:      in.UpdatedAt,
	}
	if s.Messages == nil {
		s.Messages = []string{}
	}
	return nil
}

func decodeDetails(name ProviderName, raw json.RawMessage) (Details, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, emptyObject) {
		return nil, nil
	}

	switch name {
	case ProviderClaude:
		var d ClaudeDetails
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, fmt.Errorf("decoding claude details: %w", err)
		}
		return d, nil
	case ProviderCodex:
		var d CodexDetails
		if err := json.Unmarshal(trimmed, &d); err != nil {
			return nil, fmt.Errorf("decoding codex details: %w", err)
		}
		return d, nil
	default:
		return GeminiDetails{}, nil
	}
}
