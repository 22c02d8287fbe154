package core

import (
	"fmt"
	"time"
)

const msgResetMissing = "usage detected but reset timestamps missing"

// MergeUsage reconciles an adapter's parsed values with the provider's
// manual configuration. Parsed values win per field. Status and source are
// derived only from which fields ended up present; nothing here touches
// the filesystem or the clock.
func MergeUsage(name ProviderName, partial *PartialUsage, cfg ProviderConfig, now time.Time) ProviderSnapshot {
	parsed := PartialUsage{}
	if partial != nil {
		parsed = *partial
	}
	manual := cfg.Manual

	messages := make([]string, 0, len(parsed.Messages)+1)
	messages = append(messages, parsed.Messages...)

	snap := ProviderSnapshot{
		Provider:       name,
		SessionUsedPct: firstFloat(parsed.SessionUsedPct, manual.SessionUsedPct),
		SessionResetAt: firstTime(parsed.SessionResetAt, manual.SessionResetAt),
		WeeklyUsedPct:  firstFloat(parsed.WeeklyUsedPct, manual.WeeklyUsedPct),
		WeeklyResetAt:  firstTime(parsed.WeeklyResetAt, manual.WeeklyResetAt),
		Details:        parsed.Details,
		UpdatedAt:      now,
	}

	parsedAny := parsed.Any()
	manualAny := manual.Any()

	switch {
	case parsedAny && manualAny:
		snap.Source = SourceMixed
	case parsedAny:
		snap.Source = SourceParsed
	default:
		snap.Source = SourceManual
	}

	hasUsage := snap.SessionUsedPct != nil || snap.WeeklyUsedPct != nil
	hasReset := snap.SessionResetAt != nil || snap.WeeklyResetAt != nil

	switch {
	case hasUsage && hasReset:
		snap.Status = StatusOK
	case hasUsage:
		snap.Status = StatusPartial
		messages = append(messages, msgResetMissing)
	case parsedAny || manualAny:
		snap.Status = StatusPartial
	default:
		snap.Status = StatusError
		messages = append(messages, fmt.Sprintf("no usage metrics detected; configure providers.%s.manual.*", name))
	}

	snap.Messages = messages
	return snap
}

func firstFloat(parsed, manual *float64) *float64 {
	if parsed != nil {
		v := *parsed
		return &v
	}
	if manual != nil {
		v := *manual
		return &v
	}
	return nil
}

func firstTime(parsed, manual *time.Time) *time.Time {
	if parsed != nil {
		t := *parsed
		return &t
	}
	if manual != nil {
		t := *manual
		return &t
	}
	return nil
}
