package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/config"
	"github.com/greenloop-finance/portfolio-engine/pkg/pipeline"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting portfolio engine",
		zap.String("version", Version),
		zap.String("env", cfg.Env),
		zap.String("applications_feed", cfg.Inputs.ApplicationsPath),
		zap.String("lms_feed", cfg.Inputs.LMSPath),
		zap.String("output_dir", cfg.Output.Dir),
		zap.Bool("store_enabled", cfg.Store.Enabled))

	summary, err := pipeline.New(cfg, logger).Run(context.Background())
	if err != nil {
		logger.Fatal("Run failed", zap.Error(err))
	}

	logger.Info("Done",
		zap.Int("cleaned_applications", summary.ApplicationsProcessed),
		zap.Int("quarantined_applications", summary.QuarantinedApplications),
		zap.Int("lms_cleaned", summary.LMSProcessed),
		zap.Int("loan_portfolio", summary.PortfolioRows))
}
