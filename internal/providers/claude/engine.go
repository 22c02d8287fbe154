package claude

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagedash/internal/core"
	"github.com/janekbaraniewski/usagedash/internal/stats"
)

const (
	sessionLength = 5 * time.Hour
	weeklyWindow  = 7 * 24 * time.Hour

	defaultTokenLimit   = 300_000
	defaultMessageLimit = 200

	// weeklySessionFactor is how many back-to-back 5h sessions fit in a week.
	weeklySessionFactor = 7.0 * 24.0 / 5.0

	msgNoUsageTokens = "no usage tokens found in project logs"
)

// segment is one reconstructed 5h session.
type segment struct {
	Start    time.Time
	Tokens   int64
	Messages int
}

// segmentSessions greedily buckets entries into 5h windows anchored at the
// first entry not yet consumed. Input order does not matter.
func segmentSessions(entries []usageEntry) []segment {
	sorted := make([]usageEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var segments []segment
	for i := 0; i < len(sorted); {
		seg := segment{Start: sorted[i].Timestamp}
		end := seg.Start.Add(sessionLength)
		for i < len(sorted) && !sorted[i].Timestamp.After(end) {
			seg.Tokens += sorted[i].Tokens
			seg.Messages++
			i++
		}
		segments = append(segments, seg)
	}
	return segments
}

// pickActiveFile returns the file with the most tokens since the cutoff,
// tie-broken by the latest entry. files must be sorted; the first file wins
// an exact tie.
func pickActiveFile(files []string, byFile map[string][]usageEntry, since time.Time) string {
	var (
		best       string
		bestTokens int64 = -1
		bestLatest time.Time
	)
	for _, path := range files {
		entries := byFile[path]
		recent := lo.SumBy(recentEntries(entries, since), func(e usageEntry) int64 { return e.Tokens })
		var latest time.Time
		for _, e := range entries {
			if e.Timestamp.After(latest) {
				latest = e.Timestamp
			}
		}
		if recent > bestTokens || (recent == bestTokens && latest.After(bestLatest)) {
			best, bestTokens, bestLatest = path, recent, latest
		}
	}
	return best
}

func recentEntries(entries []usageEntry, since time.Time) []usageEntry {
	return lo.Filter(entries, func(e usageEntry, _ int) bool {
		return !e.Timestamp.Before(since)
	})
}

// dynamicLimit is the P90 of the series, or the fallback when there is no
// usable history.
func dynamicLimit(series []float64, fallback float64) float64 {
	if v, ok := stats.P90(series); ok && v > 0 {
		return v
	}
	return fallback
}

// deriveUsage turns the collected entries into session and weekly usage
// measured against P90 ceilings of the user's own history.
func deriveUsage(set *entrySet, files []string, now time.Time) *core.PartialUsage {
	partial := &core.PartialUsage{}
	if len(set.all) == 0 {
		partial.AddMessage(msgNoUsageTokens)
		return partial
	}

	sessionStart := now.Add(-sessionLength)
	active := pickActiveFile(files, set.byFile, sessionStart)
	current := recentEntries(set.byFile[active], sessionStart)

	sessionTokens := lo.SumBy(current, func(e usageEntry) int64 { return e.Tokens })
	sessionMessages := len(current)
	weeklyTokens := lo.SumBy(recentEntries(set.all, now.Add(-weeklyWindow)), func(e usageEntry) int64 { return e.Tokens })

	partial.AddMessage(fmt.Sprintf("derived Claude metrics from current session file: %s", filepath.Base(active)))
	if sessionTokens <= 0 && weeklyTokens <= 0 {
		partial.AddMessage(msgNoUsageTokens)
		return partial
	}

	segments := segmentSessions(set.all)
	tokenLimit := dynamicLimit(lo.Map(segments, func(s segment, _ int) float64 { return float64(s.Tokens) }), defaultTokenLimit)
	messageLimit := dynamicLimit(lo.Map(segments, func(s segment, _ int) float64 { return float64(s.Messages) }), defaultMessageLimit)

	currentStart := now
	for i, e := range current {
		if i == 0 || e.Timestamp.Before(currentStart) {
			currentStart = e.Timestamp
		}
	}
	resetAt := currentStart.Add(sessionLength)

	elapsed := math.Max(1, now.Sub(currentStart).Minutes())
	var burnRate float64
	if sessionTokens > 0 {
		burnRate = float64(sessionTokens) / elapsed
	}
	remaining := math.Max(0, tokenLimit-float64(sessionTokens))
	var runout *time.Time
	if burnRate > 0 && remaining > 0 {
		runout = core.TimePtr(now.Add(time.Duration(remaining / burnRate * float64(time.Minute))))
	}

	weeklyLimit := tokenLimit * weeklySessionFactor
	sessionPct := float64(sessionTokens) / tokenLimit * 100
	messagePct := float64(sessionMessages) / messageLimit * 100
	weeklyPct := float64(weeklyTokens) / weeklyLimit * 100

	partial.SessionUsedPct = core.Float64Ptr(sessionPct)
	partial.SessionResetAt = core.TimePtr(resetAt)
	partial.WeeklyUsedPct = core.Float64Ptr(weeklyPct)
	partial.WeeklyResetAt = core.TimePtr(now.Add(weeklyWindow))
	partial.Details = core.ClaudeDetails{
		DynamicLimits: &core.DynamicLimits{
			SessionTokens:         sessionTokens,
			SessionMessages:       sessionMessages,
			WeeklyTokens:          weeklyTokens,
			TokenLimitP90:         int64(tokenLimit),
			MessageLimitP90:       int64(messageLimit),
			WeeklyLimitEstimate:   int64(weeklyLimit),
			WeeklyLimitIsEstimate: true,
			HistoricalSessions:    len(segments),
			TokenUsagePct:         round1(sessionPct),
			MessageUsagePct:       round1(messagePct),
			BurnRateTokensPerMin:  round1(burnRate),
			PredictedTokensRunout: runout,
			SessionResetAt:        resetAt,
			ModelDistribution:     modelDistribution(current, sessionTokens),
			ActiveSessionFile:     filepath.Base(active),
		},
	}
	return partial
}

// modelDistribution is each model's share of the session's tokens in
// percent, one decimal place.
func modelDistribution(entries []usageEntry, total int64) map[string]float64 {
	dist := make(map[string]float64)
	if total <= 0 {
		return dist
	}
	byModel := make(map[string]int64)
	for _, e := range entries {
		byModel[e.Model] += e.Tokens
	}
	for model, tokens := range byModel {
		dist[model] = round1(float64(tokens) / float64(total) * 100)
	}
	return dist
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
