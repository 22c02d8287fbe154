package main

import (
	"fmt"

	"github.com/janekbaraniewski/usagedash/internal/snapshot"
	"github.com/spf13/cobra"
)

func newSnapshotCommand(opts *cliOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Collect usage once, write the state files and print the snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" {
				return fmt.Errorf("unsupported format %q", format)
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			r, err := newRunner(cfg)
			if err != nil {
				return err
			}
			defer r.Close()

			snap, err := r.RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			data, err := snapshot.Marshal(snap)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format (json)")
	return cmd
}
