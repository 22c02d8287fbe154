package gemini

import (
	"time"

	"github.com/janekbaraniewski/usagedash/internal/core"
)

const msgNotImplemented = "Gemini parser is not implemented; use manual fields"

// Provider has no log parser; every value comes from manual configuration.
type Provider struct {
	now func() time.Time
}

func New(now func() time.Time) *Provider {
	if now == nil {
		now = time.Now
	}
	return &Provider{now: now}
}

func (p *Provider) Name() core.ProviderName { return core.ProviderGemini }

func (p *Provider) Collect(cfg core.ProviderConfig) core.ProviderSnapshot {
	partial := &core.PartialUsage{Messages: []string{msgNotImplemented}}
	return core.MergeUsage(core.ProviderGemini, partial, cfg, p.now())
}
