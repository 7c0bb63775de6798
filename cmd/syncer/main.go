package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/ledgerbridge/qbsync/internal/config"
	"github.com/ledgerbridge/qbsync/internal/runner"
	"github.com/ledgerbridge/qbsync/internal/session"
	"github.com/ledgerbridge/qbsync/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/syncer.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting syncer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(runner.ExitConfig)
	}

	logger.Info("configuration loaded",
		"company_file", cfg.QuickBooks.CompanyFile,
		"delivery_url", cfg.Delivery.URL,
		"sync_targets", len(cfg.SyncTargets),
		"timestamp_targets", len(cfg.TimestampTargets),
	)

	proc, err := session.NewCOMProcessor()
	if err != nil {
		logger.Error("failed to create request processor", "error", err)
		os.Exit(runner.ExitSession)
	}

	summary, runErr := runner.New(cfg, proc, logger).Run(context.Background())

	for _, w := range summary.Warnings {
		logger.Warn("target skipped", "detail", w)
	}
	if runErr != nil {
		logger.Error("sync run failed",
			"run_id", summary.RunID,
			"error", runErr,
		)
		os.Exit(runner.ExitCode(runErr))
	}

	logger.Info("sync run succeeded",
		"run_id", summary.RunID,
		"resolved", summary.Resolved,
		"delivered", summary.Delivered,
		"warnings", len(summary.Warnings),
	)
}
