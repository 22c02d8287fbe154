package claude

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

const msgNoSignal = "unable to infer Claude usage from stats-cache.json or project logs"

// Options locates the Claude data on disk.
type Options struct {
	StatsPath   string
	ProjectDirs []string
	Now         func() time.Time
}

type Provider struct {
	opts Options
}

func New(opts Options) *Provider {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{opts: opts}
}

func (p *Provider) Name() core.ProviderName { return core.ProviderClaude }

func (p *Provider) Collect(cfg core.ProviderConfig) core.ProviderSnapshot {
	now := p.opts.Now()
	return core.MergeUsage(core.ProviderClaude, p.Extract(now), cfg, now)
}

// Extract combines the coarse stats cache with values derived from the
// project logs. Derived values win whenever they exist.
func (p *Provider) Extract(now time.Time) *core.PartialUsage {
	out := &core.PartialUsage{}
	derived := p.fromProjects(now)

	// The stats cache is optional; its advisories only matter when the
	// project logs did not produce numbers either.
	if p.opts.StatsPath != "" {
		cached := readStatsCache(p.opts.StatsPath)
		out.SessionUsedPct = cached.SessionUsedPct
		out.SessionResetAt = cached.SessionResetAt
		out.WeeklyUsedPct = cached.WeeklyUsedPct
		out.WeeklyResetAt = cached.WeeklyResetAt
		if !derived.Any() {
			out.Messages = append(out.Messages, cached.Messages...)
		}
	}

	out.Messages = append(out.Messages, derived.Messages...)
	out.Details = derived.Details
	if derived.SessionUsedPct != nil {
		out.SessionUsedPct = derived.SessionUsedPct
	}
	if derived.WeeklyUsedPct != nil {
		out.WeeklyUsedPct = derived.WeeklyUsedPct
	}
	if derived.SessionResetAt != nil {
		out.SessionResetAt = derived.SessionResetAt
	}
	if derived.WeeklyResetAt != nil {
		out.WeeklyResetAt = derived.WeeklyResetAt
	}

	if out.SessionUsedPct == nil && out.WeeklyUsedPct == nil {
		out.AddMessage(msgNoSignal)
	}
	return out
}

func (p *Provider) fromProjects(now time.Time) *core.PartialUsage {
	dirs := lo.Filter(p.opts.ProjectDirs, func(dir string, _ int) bool {
		info, err := os.Stat(dir)
		return err == nil && info.IsDir()
	})
	if len(dirs) == 0 {
		partial := &core.PartialUsage{}
		for _, dir := range p.opts.ProjectDirs {
			partial.AddMessage(fmt.Sprintf("missing %s", dir))
		}
		return partial
	}

	files := collectJSONLFiles(dirs)
	if len(files) == 0 {
		return &core.PartialUsage{
			Messages: []string{fmt.Sprintf("no Claude session files found in %s", strings.Join(dirs, ", "))},
		}
	}

	set := newEntrySet()
	for _, path := range files {
		if err := set.readFile(path); err != nil {
			log.Printf("[claude] skipping %s: %v", path, err)
		}
	}
	return deriveUsage(set, files, now)
}

var (
	sessionPctPaths   = [][]string{{"limits", "session", "percent_used"}, {"session", "percent_used"}, {"session_percent_used"}}
	weeklyPctPaths    = [][]string{{"limits", "weekly", "percent_used"}, {"weekly", "percent_used"}, {"weekly_percent_used"}}
	sessionResetPaths = [][]string{{"limits", "session", "reset_at"}, {"session", "reset_at"}, {"session_reset_at"}}
	weeklyResetPaths  = [][]string{{"limits", "weekly", "reset_at"}, {"weekly", "reset_at"}, {"weekly_reset_at"}}
)

// readStatsCache probes the known layouts of stats-cache.json for limit
// percentages and reset times.
func readStatsCache(path string) *core.PartialUsage {
	partial := &core.PartialUsage{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			partial.AddMessage(fmt.Sprintf("missing %s", path))
		} else {
			partial.AddMessage(fmt.Sprintf("unreadable %s", path))
		}
		return partial
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("[claude] stats cache %s: %v", path, err)
		partial.AddMessage(fmt.Sprintf("unreadable %s", path))
		return partial
	}

	partial.SessionUsedPct = pickFloat(doc, sessionPctPaths)
	partial.WeeklyUsedPct = pickFloat(doc, weeklyPctPaths)
	partial.SessionResetAt = pickTime(doc, sessionResetPaths)
	partial.WeeklyResetAt = pickTime(doc, weeklyResetPaths)
	return partial
}

func pick(doc map[string]any, path []string) (any, bool) {
	var cur any = doc
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func pickFloat(doc map[string]any, paths [][]string) *float64 {
	for _, path := range paths {
		if v, ok := pick(doc, path); ok {
			if f, ok := v.(float64); ok {
				return core.Float64Ptr(f)
			}
		}
	}
	return nil
}

func pickTime(doc map[string]any, paths [][]string) *time.Time {
	for _, path := range paths {
		v, ok := pick(doc, path)
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return &t
		}
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
