package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/appengine-ltd/wildcast/internal/config"
	"github.com/appengine-ltd/wildcast/internal/store"
	"github.com/appengine-ltd/wildcast/internal/wildlife"
)

// version, commit, date are injected at build time with -ldflags "-X main.version=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	debug      bool
}

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "wildcast",
		Short: "Seasonal wildlife activity predictions",
		Long: `Wildcast predicts game activity from the species' seasonal phase,
the date and observed weather, and ranks the habitats worth hunting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file (default ./config.yaml or /etc/wildcast/config.yaml)")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "development logging at debug level")

	cmd.AddCommand(
		serveCmd(&flags),
		predictCmd(&flags),
		speciesCmd(&flags),
		importCmd(&flags),
		exportCmd(&flags),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Wildcast %s (%s) %s\n", version, commit, date)
			},
		},
	)
	return cmd
}

// runtime is everything a command needs once config is loaded.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    store.Store
	reloader *store.Reloader
	engine   *wildlife.Engine
}

func loadRuntime(flags *globalFlags) (*runtime, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.debug {
		cfg.Log.Debug = true
		cfg.Log.Level = "debug"
	}
	logger, err := newLogger(cfg.Log.Level, cfg.Log.Debug)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, logger: logger, store: st}

	if mem, ok := st.(*store.MemoryStore); ok && len(cfg.Store.Packs) > 0 {
		rt.reloader = store.NewReloader(mem, cfg.Store.Packs, cfg.Store.ReloadSchedule, logger.Named("reloader"))
		if err := rt.reloader.Start(); err != nil {
			_ = st.Close()
			return nil, err
		}
	}

	rt.engine = wildlife.NewEngine(
		wildlife.WithStore(st),
		wildlife.WithLogger(logger.Named("engine")),
	)
	return rt, nil
}

// writable reports whether admin writes would persist. Pack-backed memory
// stores are rebuilt on every reload, so they stay read-only.
func (rt *runtime) writable() bool {
	return rt.reloader == nil
}

func (rt *runtime) Close() {
	if rt.reloader != nil {
		rt.reloader.Stop()
	}
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("close store", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logConfig := zap.NewProductionConfig()
	if debug {
		logConfig = zap.NewDevelopmentConfig()
	}
	logConfig.Level = zap.NewAtomicLevelAt(lvl)
	return logConfig.Build()
}
