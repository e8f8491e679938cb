package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/audreymhoughton/lead-lab/internal/config"
	"github.com/audreymhoughton/lead-lab/internal/logging"
	"github.com/audreymhoughton/lead-lab/internal/store"
)

// app bundles what most commands need. Built lazily in PersistentPreRun so
// `leadlab --help` works without a data dir.
type app struct {
	Settings config.Settings
	Config   config.Config
	Store    *store.CSV
}

var (
	cfgPath string
	env     app
)

var rootCmd = &cobra.Command{
	Use:           "leadlab",
	Short:         "Research-only lead ledger: local CSV in, Google Sheets (or mock export) out",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env.Settings = config.LoadSettings()
		logging.SetLevel(env.Settings.LogLevel)

		path := cfgPath
		if path == "" {
			var err error
			path, err = config.EnsureUserConfig(env.Settings.DataDir, filepath.Join("config", "config.yml"))
			if err != nil {
				return err
			}
		}
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		env.Config = cfg
		env.Store = store.NewCSV(env.Settings.LocalCSV)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yml (default: <data dir>/config.yml)")
}

// openCache opens the sqlite enrichment cache; commands that fetch pages use
// it, everything else skips the dependency.
func openCache() (*store.Cache, error) {
	return store.OpenCache(env.Settings.CacheDB)
}
