package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/core"
	"github.com/janekbaraniewski/usagedash/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rewrite the snapshot whenever provider logs change",
		Long:  "Collects on startup, after every change under the provider log directories, and at least once per general.refresh_seconds.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			r, err := newRunner(cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := watcher.New(watchRoots(cfg), cfg.RefreshInterval(), func(reason watcher.Reason) {
				snap, err := r.RunOnce(ctx)
				if err != nil {
					warnf("collect_failed", "reason=%s error=%v", reason, err)
					return
				}
				infof("snapshot_written", "reason=%s providers=%d path=%s", reason, len(snap.Providers), cfg.General.StateFile)
			})

			infof("watch_started", "refresh=%s", cfg.RefreshInterval())
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			infof("watch_stopped", "")
			return nil
		},
	}
}

// watchRoots lists the directories whose contents feed a snapshot.
func watchRoots(cfg config.Config) []string {
	var roots []string
	if cfg.Provider(core.ProviderCodex).Enabled {
		roots = append(roots, cfg.Paths.CodexSessions, filepath.Dir(cfg.Paths.CodexHistory))
	}
	if cfg.Provider(core.ProviderClaude).Enabled {
		roots = append(roots, cfg.Paths.ClaudeProjects...)
		roots = append(roots, filepath.Dir(cfg.Paths.ClaudeStats))
	}
	roots = lo.Filter(roots, func(dir string, _ int) bool {
		return dir != "" && dir != "."
	})
	return lo.Uniq(roots)
}
