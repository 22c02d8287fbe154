package main

import (
	"context"
	"fmt"
	"time"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/core"
	"github.com/janekbaraniewski/usagedash/internal/providers"
	"github.com/janekbaraniewski/usagedash/internal/snapshot"
	"github.com/janekbaraniewski/usagedash/internal/state"
)

// runner performs collection cycles: build a snapshot, then persist it to
// every configured sink.
type runner struct {
	cfg       config.Config
	providers []core.Provider
	store     *state.Store
	now       func() time.Time
}

func newRunner(cfg config.Config) (*runner, error) {
	return newRunnerWithClock(cfg, time.Now)
}

func newRunnerWithClock(cfg config.Config, now func() time.Time) (*runner, error) {
	all, err := providers.AllProviders(cfg, now)
	if err != nil {
		return nil, err
	}

	r := &runner{cfg: cfg, providers: all, now: now}
	if cfg.General.StateDB != "" {
		store, err := state.Open(cfg.General.StateDB)
		if err != nil {
			return nil, err
		}
		r.store = store
	}
	return r, nil
}

func (r *runner) Close() error {
	return r.store.Close()
}

// RunOnce builds one snapshot and writes it out. The snapshot is returned
// even when a write fails.
func (r *runner) RunOnce(ctx context.Context) (core.UsageSnapshot, error) {
	snap := snapshot.Build(r.cfg, r.providers, r.now())

	if err := snapshot.WriteFiles(r.cfg, snap); err != nil {
		return snap, err
	}
	if r.store != nil {
		if err := r.store.SaveLatest(ctx, snap); err != nil {
			return snap, fmt.Errorf("saving snapshot to %s: %w", r.cfg.General.StateDB, err)
		}
	}
	return snap, nil
}
