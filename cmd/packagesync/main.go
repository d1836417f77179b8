package main

import (
	"fmt"
	stdlog "log"
	"os"

	"github.com/spf13/cobra"
	"packagesync/internal/pkg/config"
	"packagesync/internal/pkg/dotenv"
	"packagesync/pkg/logger"
	"packagesync/pkg/logger/zap_adapter"
)

// rootOptions общие флаги всех команд. Флаги важнее переменных окружения и .env.
type rootOptions struct {
	envFile  string
	mode     string
	logLevel string

	cfg *config.Config
	log *zap_adapter.ZapAdapter
}

func main() {
	opts := &rootOptions{}
	root := newRootCmd(opts)

	err := root.Execute()
	if opts.log != nil {
		if syncErr := opts.log.Sync(); syncErr != nil {
			stdlog.Printf("failed to sync logger: %v", syncErr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "packagesync",
		Short: "Package tracking cache with offline queue and bulk sync",
		Long: `packagesync keeps a local view of delivery packages.

In local mode packages live in an embedded SQLite (or in-memory) store seeded with
synthetic data. In remote mode reads go through a TTL cache in front of the packages
REST service, mutations are queued while offline, and server push events invalidate
the cache.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load, missing file is ignored")
	root.PersistentFlags().StringVar(&opts.mode, "mode", "", "store mode: local or remote (PACKAGESYNC_MODE)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "zap log level (LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newUpdateStatusCmd(opts),
		newSyncCmd(opts),
	)
	return root
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	if err := dotenv.Load(o.envFile); err != nil {
		return err
	}
	if err := dotenv.Override("PACKAGESYNC_MODE", o.mode); err != nil {
		return err
	}
	if err := dotenv.Override("LOG_LEVEL", o.logLevel); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	o.cfg = cfg

	// разовые команды печатают JSON в stdout, логи уходят в stderr
	output := "stdout"
	if cmd.Name() != serveCmdName {
		output = "stderr"
		if o.logLevel == "" && os.Getenv("LOG_LEVEL") == "" {
			cfg.Log.Level = "warn"
		}
	}

	zapLogger, err := zap_adapter.NewZapAdapter(cfg.Log.Level, output)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.log = zapLogger
	return nil
}

func (o *rootOptions) logger() logger.Logger {
	return o.log
}
