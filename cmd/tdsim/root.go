// cmd/tdsim/root.go
package main

import (
	"fmt"

	"go-td-core/internal/config"
	"go-td-core/internal/defs"
	"go-td-core/internal/observability"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// app is the state shared by every subcommand once PersistentPreRunE has run.
type app struct {
	cfgFile  string
	catalog  string
	logLevel string
	seed     int64

	settings config.Settings
	cat      *defs.Catalog
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "tdsim",
		Short:         "Headless tower-defense match simulator.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "settings file (toml, yaml or json)")
	flags.StringVar(&a.catalog, "catalog", "", "wave catalog TOML (default: built-in catalog)")
	flags.StringVar(&a.logLevel, "log-level", "", "override logger.level")
	flags.Int64Var(&a.seed, "seed", 0, "override sim.seed (0 = time based)")

	root.AddCommand(newRunCmd(a), newBatchCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	settings, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("catalog") {
		settings.Catalog = a.catalog
	}
	if flags.Changed("log-level") {
		settings.Logger.Level = a.logLevel
	}
	if flags.Changed("seed") {
		settings.Sim.Seed = a.seed
	}
	a.settings = settings
	// batch пишет из нескольких горутин
	a.logger = observability.New(settings.Logger, zapcore.Lock(zapcore.AddSync(cmd.ErrOrStderr())))

	if settings.Catalog == "" {
		a.cat = defs.DefaultCatalog()
	} else if a.cat, err = defs.LoadCatalog(settings.Catalog); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	a.logger.Debug("settings loaded",
		zap.String("config", a.cfgFile),
		zap.String("catalog", settings.Catalog),
		zap.Int("waves", a.cat.WaveCount()))
	return nil
}
