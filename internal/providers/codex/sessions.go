package codex

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

type sessionEvent struct {
	Timestamp string          `json:"timestamp"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
}

type eventPayload struct {
	Type       string      `json:"type"`
	Info       *tokenInfo  `json:"info,omitempty"`
	RateLimits *rateLimits `json:"rate_limits,omitempty"`
}

type tokenInfo struct {
	TotalTokenUsage    tokenUsage  `json:"total_token_usage"`
	LastTokenUsage     *tokenUsage `json:"last_token_usage,omitempty"`
	ModelContextWindow int         `json:"model_context_window"`
}

type tokenUsage struct {
	InputTokens           int64 `json:"input_tokens"`
	CachedInputTokens     int64 `json:"cached_input_tokens"`
	OutputTokens          int64 `json:"output_tokens"`
	ReasoningOutputTokens int64 `json:"reasoning_output_tokens"`
	TotalTokens           int64 `json:"total_tokens"`
}

type rateLimits struct {
	Primary   *rateLimitBucket `json:"primary,omitempty"`
	Secondary *rateLimitBucket `json:"secondary,omitempty"`
	PlanType  *string          `json:"plan_type,omitempty"`
}

// usable reports whether the record carries at least one bucket. Codex
// emits records with both buckets null, which must not replace real data.
func (r *rateLimits) usable() bool {
	return r != nil && (r.Primary != nil || r.Secondary != nil)
}

type rateLimitBucket struct {
	UsedPercent   float64 `json:"used_percent"`
	WindowMinutes int     `json:"window_minutes"`
	ResetsAt      int64   `json:"resets_at"` // Unix seconds
}

type modelPayload struct {
	Model string `json:"model,omitempty"`
}

// sessionStats is what one session file contributes.
type sessionStats struct {
	limits        *rateLimits
	limitsAt      time.Time
	model         string
	contextWindow int
	tokens        int64
	events        int
	earliest      time.Time
}

type sessionFile struct {
	path    string
	modTime time.Time
}

// candidateSessionFiles lists the *.jsonl files in today's and yesterday's
// sessions/YYYY/MM/DD directories, newest first.
func candidateSessionFiles(sessionsDir string, now time.Time) []sessionFile {
	var files []sessionFile
	for _, day := range []time.Time{now, now.AddDate(0, 0, -1)} {
		dir := filepath.Join(sessionsDir, day.Format("2006"), day.Format("01"), day.Format("02"))
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
				continue
			}
			info, err := e.Info()
			if err != nil {
				continue
			}
			files = append(files, sessionFile{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].path > files[j].path
	})
	return files
}

// readSessionLimits returns usage from the newest session file carrying a
// rate-limit record. The second result is false when no file had one.
func readSessionLimits(sessionsDir string, now time.Time) (*core.PartialUsage, bool) {
	for _, f := range candidateSessionFiles(sessionsDir, now) {
		stats, err := parseSessionFile(f.path, now)
		if err != nil {
			log.Printf("[codex] skipping %s: %v", f.path, err)
			continue
		}
		if stats.limits == nil {
			continue
		}
		return stats.partial(f.path, now), true
	}
	return nil, false
}

func parseSessionFile(path string, now time.Time) (sessionStats, error) {
	var stats sessionStats

	file, err := os.Open(path)
	if err != nil {
		return stats, err
	}
	defer file.Close()

	windowStart := now.Add(-sessionWindow)
	var previous tokenUsage
	var hasPrevious bool

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 256*1024)
	scanner.Buffer(buf, maxScannerBufferSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if !bytes.Contains(line, []byte("event_msg")) &&
			!bytes.Contains(line, []byte("turn_context")) &&
			!bytes.Contains(line, []byte("session_meta")) {
			continue
		}

		var event sessionEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		ts, tsErr := time.Parse(time.RFC3339Nano, event.Timestamp)

		switch event.Type {
		case "session_meta", "turn_context":
			var mp modelPayload
			if json.Unmarshal(event.Payload, &mp) == nil && strings.TrimSpace(mp.Model) != "" {
				stats.model = strings.TrimSpace(mp.Model)
			}
		case "event_msg":
			var payload eventPayload
			if json.Unmarshal(event.Payload, &payload) != nil || payload.Type != "token_count" {
				continue
			}

			if payload.RateLimits.usable() && (stats.limits == nil || (tsErr == nil && !ts.Before(stats.limitsAt))) {
				stats.limits = payload.RateLimits
				if tsErr == nil {
					stats.limitsAt = ts
				}
			}

			if payload.Info == nil {
				continue
			}
			if payload.Info.ModelContextWindow > 0 {
				stats.contextWindow = payload.Info.ModelContextWindow
			}

			total := payload.Info.TotalTokenUsage
			delta := total
			if payload.Info.LastTokenUsage != nil {
				delta = *payload.Info.LastTokenUsage
			} else if hasPrevious {
				delta = usageDelta(total, previous)
			}
			previous = total
			hasPrevious = true

			if tsErr != nil || ts.Before(windowStart) || ts.After(now) {
				continue
			}
			tokens := delta.TotalTokens
			if tokens <= 0 {
				tokens = delta.InputTokens + delta.OutputTokens
			}
			if tokens <= 0 {
				continue
			}
			stats.tokens += tokens
			stats.events++
			if stats.earliest.IsZero() || ts.Before(stats.earliest) {
				stats.earliest = ts
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading session: %w", err)
	}
	return stats, nil
}

func (s sessionStats) partial(path string, now time.Time) *core.PartialUsage {
	details := core.CodexDetails{
		Source:        "session_log",
		SessionFile:   filepath.Base(path),
		Model:         s.model,
		ContextWindow: s.contextWindow,
		SessionTokens: s.tokens,
		SessionEvents: s.events,
	}
	if s.events > 0 {
		minutes := now.Sub(s.earliest).Minutes()
		if minutes < 1 {
			minutes = 1
		}
		details.BurnRateTokensPerMin = float64(s.tokens) / minutes
	}

	partial := &core.PartialUsage{}
	if rl := s.limits.Primary; rl != nil {
		partial.SessionUsedPct = core.Float64Ptr(clampPercent(rl.UsedPercent))
		if rl.ResetsAt > 0 {
			partial.SessionResetAt = core.TimePtr(time.Unix(rl.ResetsAt, 0).In(now.Location()))
		}
		details.PrimaryWindowMinutes = rl.WindowMinutes
	}
	if rl := s.limits.Secondary; rl != nil {
		partial.WeeklyUsedPct = core.Float64Ptr(clampPercent(rl.UsedPercent))
		if rl.ResetsAt > 0 {
			partial.WeeklyResetAt = core.TimePtr(time.Unix(rl.ResetsAt, 0).In(now.Location()))
		}
		details.SecondaryWindowMinutes = rl.WindowMinutes
	}
	if s.limits.PlanType != nil {
		details.PlanType = *s.limits.PlanType
	}
	partial.Details = details
	return partial
}

func usageDelta(current, previous tokenUsage) tokenUsage {
	delta := tokenUsage{
		InputTokens:           current.InputTokens - previous.InputTokens,
		CachedInputTokens:     current.CachedInputTokens - previous.CachedInputTokens,
		OutputTokens:          current.OutputTokens - previous.OutputTokens,
		ReasoningOutputTokens: current.ReasoningOutputTokens - previous.ReasoningOutputTokens,
		TotalTokens:           current.TotalTokens - previous.TotalTokens,
	}
	// Counters reset when a session is resumed; treat that as a fresh total.
	if delta.InputTokens < 0 || delta.OutputTokens < 0 || delta.TotalTokens < 0 {
		return current
	}
	return delta
}
