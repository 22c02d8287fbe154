package providers

import (
	"fmt"
	"time"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/core"
	"github.com/janekbaraniewski/usagedash/internal/providers/claude"
	"github.com/janekbaraniewski/usagedash/internal/providers/codex"
	"github.com/janekbaraniewski/usagedash/internal/providers/gemini"
)

// AllProviders builds every adapter in declared snapshot order, wired to
// the paths in cfg. now may be nil to use the wall clock.
func AllProviders(cfg config.Config, now func() time.Time) ([]core.Provider, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("building providers: %w", err)
	}
	if now == nil {
		now = time.Now
	}

	return []core.Provider{
		codex.New(codex.Options{
			HistoryPath: cfg.Paths.CodexHistory,
			SessionsDir: cfg.Paths.CodexSessions,
			Location:    loc,
			Now:         now,
		}),
		claude.New(claude.Options{
			StatsPath:   cfg.Paths.ClaudeStats,
			ProjectDirs: cfg.Paths.ClaudeProjects,
			Now:         now,
		}),
		gemini.New(now),
	}, nil
}
