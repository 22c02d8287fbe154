package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/janekbaraniewski/usagedash/internal/detect"
	"github.com/janekbaraniewski/usagedash/internal/version"
	"github.com/spf13/cobra"
)

type healthReport struct {
	Config   string `json:"config"`
	Platform string `json:"platform"`
	Version  string `json:"version"`
	detect.Result
	Missing []detect.Location `json:"missing"`
}

func newHealthCommand(opts *cliOptions) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report which provider logs and CLIs are present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			result := detect.Inspect(cfg)

			out := cmd.OutOrStdout()
			missing := result.Missing()
			if summary {
				fmt.Fprintf(out, "Config: %s\n", opts.path())
				fmt.Fprint(out, result.Summary())
				if len(missing) > 0 {
					fmt.Fprintf(out, "%d provider location(s) missing; affected providers report advisories instead of usage\n", len(missing))
				}
				return nil
			}
			if missing == nil {
				missing = []detect.Location{}
			}

			data, err := json.MarshalIndent(healthReport{
				Config:   opts.path(),
				Platform: runtime.GOOS + "/" + runtime.GOARCH,
				Version:  version.Version,
				Result:   result,
				Missing:  missing,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "print a human-readable summary instead of JSON")
	return cmd
}
