package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/apperrors"
	"github.com/greenloop-finance/portfolio-engine/pkg/config"
	"github.com/greenloop-finance/portfolio-engine/pkg/export"
	"github.com/greenloop-finance/portfolio-engine/pkg/ingest"
	"github.com/greenloop-finance/portfolio-engine/pkg/models"
	"github.com/greenloop-finance/portfolio-engine/pkg/portfolio"
	"github.com/greenloop-finance/portfolio-engine/pkg/report"
	"github.com/greenloop-finance/portfolio-engine/pkg/store"
	"github.com/greenloop-finance/portfolio-engine/pkg/validate"
)

// Pipeline runs the whole batch: ingest, quarantine, validate, join, report,
// export, and the optional working-store save. Stages run to completion in
// order over immutable snapshots; every transformation happens before the
// first output byte is written.
type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger

	// now is the run clock; overridable in tests so derived fields that
	// depend on the processing date stay reproducible.
	now func() time.Time
}

func New(cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Summary is the operator-facing result of one run.
type Summary struct {
	RunID                   uuid.UUID
	ApplicationsProcessed   int
	QuarantinedApplications int
	LMSProcessed            int
	PortfolioRows           int
}

// Run executes one batch over the configured pair of input feeds. Both feeds
// must exist up front; a missing feed aborts the run before any
// transformation begins, naming the absent file. Content anomalies never
// abort: they become flags, quarantine counts, and report entries.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.New()
	// One timestamp for the whole run: every row carries the same value.
	processedAt := p.now().UTC().Truncate(time.Second)

	logger := p.logger.With(zap.String("run_id", runID.String()))

	if err := requireInputs(p.cfg.Inputs); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(p.cfg.Output.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Loading raw CSV feeds",
		zap.String("applications", p.cfg.Inputs.ApplicationsPath),
		zap.String("lms", p.cfg.Inputs.LMSPath))

	rawApps, err := ingest.LoadCSV(p.cfg.Inputs.ApplicationsPath)
	if err != nil {
		return nil, err
	}
	rawLMS, err := ingest.LoadCSV(p.cfg.Inputs.LMSPath)
	if err != nil {
		return nil, err
	}

	logger.Info("Classifying application rows")
	partition := ingest.PartitionApplications(rawApps)
	if n := len(partition.Quarantined); n > 0 {
		logger.Warn("Quarantined structurally malformed application rows",
			zap.Int("rows", n))
	}

	logger.Info("Building cleaned applications with validation flags")
	apps := validate.NewApplicationValidator(logger).Validate(partition.Good, processedAt)

	logger.Info("Building cleaned LMS records with validation flags")
	loans := validate.NewLMSValidator(logger).Validate(ingest.LMSRows(rawLMS), processedAt)

	logger.Info("Building loan portfolio")
	rows := portfolio.NewJoiner(logger).Join(apps, loans, processedAt)

	logger.Info("Building data quality report")
	qualityReport := report.NewBuilder(logger).Build(apps, loans, len(partition.Quarantined), processedAt)

	logger.Info("Exporting output artifacts", zap.String("dir", p.cfg.Output.Dir))
	writer := export.NewCSVWriter(logger)
	if err := writer.WriteApplications(p.cfg.Output.CleanedApplicationsPath(), apps); err != nil {
		return nil, err
	}
	if err := writer.WritePortfolio(p.cfg.Output.LoanPortfolioPath(), rows); err != nil {
		return nil, err
	}
	if err := writer.WriteQualityReport(p.cfg.Output.QualityReportPath(), qualityReport); err != nil {
		return nil, err
	}
	if p.cfg.Output.ExcelReport {
		if err := export.WriteQualityReportXLSX(p.cfg.Output.QualityReportXLSXPath(), qualityReport, logger); err != nil {
			return nil, err
		}
	}

	if p.cfg.Store.Enabled {
		if err := p.saveToStore(ctx, logger, runID, apps, loans, rows, qualityReport); err != nil {
			return nil, err
		}
	}

	return &Summary{
		RunID:                   runID,
		ApplicationsProcessed:   len(apps),
		QuarantinedApplications: len(partition.Quarantined),
		LMSProcessed:            len(loans),
		PortfolioRows:           len(rows),
	}, nil
}

func requireInputs(inputs config.InputsConfig) error {
	for _, path := range []string{inputs.ApplicationsPath, inputs.LMSPath} {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", apperrors.ErrMissingInput, path)
			}
			return fmt.Errorf("failed to stat input feed %s: %w", path, err)
		}
	}
	return nil
}

func (p *Pipeline) saveToStore(
	ctx context.Context,
	logger *zap.Logger,
	runID uuid.UUID,
	apps []models.Application,
	loans []models.LMSRecord,
	rows []models.PortfolioRow,
	qualityReport models.QualityReport,
) error {
	connStr := p.cfg.Store.ConnectionString()

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open working store for migrations: %w", err)
	}
	if err := store.RunMigrations(sqlDB, p.cfg.Store.MigrationsPath, logger); err != nil {
		sqlDB.Close()
		return err
	}
	sqlDB.Close()

	db, err := store.NewConnection(ctx, &store.Config{URL: connStr})
	if err != nil {
		return fmt.Errorf("failed to connect to working store: %w", err)
	}
	defer db.Close()

	return store.NewStore(db, logger).SaveRun(ctx, runID, apps, loans, rows, qualityReport)
}
