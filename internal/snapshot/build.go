package snapshot

import (
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/core"
)

// Build collects every enabled provider in declared order. Disabled
// providers are left out entirely. generated_at is now, shared by the whole
// snapshot.
func Build(cfg config.Config, providers []core.Provider, now time.Time) core.UsageSnapshot {
	byName := lo.KeyBy(providers, func(p core.Provider) core.ProviderName { return p.Name() })

	snap := core.UsageSnapshot{
		GeneratedAt: now,
		Providers:   make([]core.ProviderSnapshot, 0, len(core.ProviderOrder)),
	}
	for _, name := range core.ProviderOrder {
		pc := cfg.Provider(name)
		if !pc.Enabled {
			continue
		}
		p, ok := byName[name]
		if !ok {
			continue
		}
		snap.Providers = append(snap.Providers, p.Collect(pc))
	}
	return snap
}
