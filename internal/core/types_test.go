package core

import (
	"testing"
	"time"
)

func TestProviderNameValid(t *testing.T) {
	for _, name := range ProviderOrder {
		if !name.Valid() {
			t.Errorf("%q should be valid", name)
		}
	}
	for _, name := range []ProviderName{"", "openai", "Codex"} {
		if name.Valid() {
			t.Errorf("%q should not be valid", name)
		}
	}
}

func TestPartialUsageAny(t *testing.T) {
	var nilPartial *PartialUsage
	if nilPartial.Any() {
		t.Error("nil partial should report no values")
	}

	p := &PartialUsage{Messages: []string{"missing /tmp/history.jsonl"}}
	if p.Any() {
		t.Error("messages alone are not values")
	}

	p.WeeklyResetAt = TimePtr(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC))
	if !p.Any() {
		t.Error("a reset time alone should count as a value")
	}
}

func TestManualFieldsAny(t *testing.T) {
	if (ManualFields{}).Any() {
		t.Error("empty manual fields should report no values")
	}
	if !(ManualFields{WeeklyUsedPct: Float64Ptr(0)}).Any() {
		t.Error("an explicit zero is a value")
	}
}

func TestUsageSnapshotProvider(t *testing.T) {
	snap := UsageSnapshot{Providers: []ProviderSnapshot{
		{Provider: ProviderCodex, Status: StatusOK},
		{Provider: ProviderGemini, Status: StatusError},
	}}

	got, ok := snap.Provider(ProviderGemini)
	if !ok || got.Status != StatusError {
		t.Errorf("Provider(gemini) = %+v, %v", got, ok)
	}
	if _, ok := snap.Provider(ProviderClaude); ok {
		t.Error("claude should not be found")
	}
}
