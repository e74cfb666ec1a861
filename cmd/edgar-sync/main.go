package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"spacos/internal/config"
	"spacos/internal/database"
	"spacos/internal/edgar"
	"spacos/internal/logger"
	"spacos/internal/repository"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := rootCommand().Execute(); err != nil {
		logger.Get().Fatalf("edgar-sync: %v", err)
	}
}

type options struct {
	forms    []string
	interval time.Duration
}

func rootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "edgar-sync",
		Short:        "Copy SEC EDGAR filings into the compliance calendar",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.forms, "forms", nil, "Form types to track (default: the standard SPAC set)")

	once := &cobra.Command{
		Use:   "once",
		Short: "Sync every SPAC with a CIK and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer, closeDB, err := newSyncer(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			summary, err := syncer.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
		},
	}

	loop := &cobra.Command{
		Use:   "loop",
		Short: "Sync on an interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			syncer, closeDB, err := newSyncer(opts)
			if err != nil {
				return err
			}
			defer closeDB()

			interval := opts.interval
			if interval == 0 {
				interval = config.Get().EdgarSyncInterval
			}
			logger.Named("edgar-sync").Infow("starting sync loop", "interval", interval)
			return syncer.Run(cmd.Context(), interval)
		},
	}
	loop.Flags().DurationVar(&opts.interval, "interval", 0, "Time between passes (default EDGAR_SYNC_INTERVAL)")

	root.AddCommand(once, loop)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root.SetContext(ctx)
	cobra.OnFinalize(stop)

	return root
}

func newSyncer(opts *options) (*edgar.Syncer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	client := edgar.NewClient(edgar.Config{
		BaseURL:   cfg.EdgarBaseURL,
		UserAgent: cfg.EdgarUserAgent,
		CacheTTL:  cfg.EdgarCacheTTL,
		RateLimit: cfg.EdgarRateLimit,
	}, nil, nil)

	closeDB := func() {
		if err := dbManager.Close(); err != nil {
			logger.Get().Warnf("closing database: %v", err)
		}
	}
	return edgar.NewSyncer(client, repository.NewFilingSyncStore(dbManager.DB()), opts.forms, nil), closeDB, nil
}
