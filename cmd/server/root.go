package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/config"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/ledger"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/logger"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/metrics"
	postgres "github.com/Tuning-Luna/hairdressing-member-manger-system/internal/storage/postgres"
)

const programName = "member-ledger"

var globalFlags = struct {
	logLevel string
}{}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          programName,
		Short:        "Prepaid member ledger for the shop",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			loadLocalEnv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd)
		},
	}
	root.PersistentFlags().StringVar(&globalFlags.logLevel, "log-level", "", "log level, overrides LOG_LEVEL")

	root.AddCommand(
		serveCommand(),
		migrateCommand(),
		importCommand(),
		exportCommand(),
		consumeCommand(),
		hashPasswordCommand(),
	)
	return root
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found; relying on existing environment")
	}
}

// app is the wiring shared by every command that touches the ledger.
type app struct {
	cfg   config.Config
	log   *logrus.Logger
	store *postgres.Store
	svc   *ledger.Service
}

func openApp(ctx context.Context, m *metrics.LedgerMetrics) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if globalFlags.logLevel != "" {
		level = globalFlags.logLevel
	}
	log := logger.New(level)

	store, err := postgres.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return &app{
		cfg:   cfg,
		log:   log,
		store: store,
		svc:   ledger.NewService(store, log, m),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}
