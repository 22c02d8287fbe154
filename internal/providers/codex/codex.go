package codex

import (
	"log"
	"time"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

const (
	maxScannerBufferSize = 8 * 1024 * 1024

	sessionWindow = 5 * time.Hour
)

// Options locates the Codex data on disk. Paths are resolved by the caller;
// the adapter never looks at the home directory itself.
type Options struct {
	HistoryPath string
	SessionsDir string

	// Location decides what "today" means for session directories and for
	// clock-only reset times in the history log. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
}

type Provider struct {
	opts Options
}

func New(opts Options) *Provider {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{opts: opts}
}

func (p *Provider) Name() core.ProviderName { return core.ProviderCodex }

func (p *Provider) Collect(cfg core.ProviderConfig) core.ProviderSnapshot {
	now := p.opts.Now()
	return core.MergeUsage(core.ProviderCodex, p.Extract(now), cfg, now)
}

// Extract prefers rate-limit records from the structured session logs and
// falls back to the free-text history log when none are found.
func (p *Provider) Extract(now time.Time) *core.PartialUsage {
	if p.opts.SessionsDir != "" {
		if partial, ok := readSessionLimits(p.opts.SessionsDir, now.In(p.opts.Location)); ok {
			return partial
		}
		log.Printf("[codex] no rate limit records under %s, falling back to history", p.opts.SessionsDir)
	}
	return readHistory(p.opts.HistoryPath, now.In(p.opts.Location))
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
