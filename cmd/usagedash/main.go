package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/janekbaraniewski/usagedash/internal/config"
	"github.com/janekbaraniewski/usagedash/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	if os.Getenv("USAGEDASH_DEBUG") != "" {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliOptions carries the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
}

func (o *cliOptions) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.ConfigPath()
}

// load reads the config file, writing the defaults on first use.
func (o *cliOptions) load() (config.Config, error) {
	cfg, err := config.LoadOrInit(o.path())
	if err != nil {
		return cfg, fmt.Errorf("loading config %s: %w", o.path(), err)
	}
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:          "usagedash",
		Short:        "UsageDash reports session and weekly usage of the Codex, Claude and Gemini CLIs.",
		Version:      version.String(),
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default "+config.ConfigPath()+")")

	root.AddCommand(newSnapshotCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	root.AddCommand(newHealthCommand(opts))
	root.AddCommand(newConfigCommand(opts))

	return root
}
