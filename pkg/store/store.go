package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

// Store persists the cleaned tables of one pipeline run into the working
// store. It is write-only convenience for ad-hoc inspection; nothing in the
// pipeline reads it back, and the run's artifacts never depend on it.
type Store struct {
	db     *DB
	logger *zap.Logger
}

func NewStore(db *DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// SaveRun writes all four result sets under a single run id, in one
// transaction. Previous runs are kept; the run id keys them apart.
func (s *Store) SaveRun(
	ctx context.Context,
	runID uuid.UUID,
	apps []models.Application,
	loans []models.LMSRecord,
	portfolio []models.PortfolioRow,
	report models.QualityReport,
) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}

	for i := range apps {
		a := &apps[i]
		batch.Queue(`
			INSERT INTO cleaned_applications (
				run_id, application_id, customer_email, installer_partner_id,
				installation_type, system_size_kwp, loan_amount_eur,
				loan_term_months, application_date, credit_score,
				annual_income_eur, postal_code, status, risk_category,
				loan_to_income_ratio, data_quality_flags, processed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
			runID, a.ApplicationID, a.CustomerEmail, a.InstallerPartnerID,
			a.InstallationType, decimalArg(a.SystemSizeKWP), decimalArg(a.LoanAmountEUR),
			a.LoanTermMonths, dateArg(a.ApplicationDate), a.CreditScore,
			decimalArg(a.AnnualIncomeEUR), a.PostalCode, a.Status, string(a.RiskCategory),
			decimalArg(a.LoanToIncomeRatio), jsonArg(a.Flags), a.ProcessedAt,
		)
	}

	for i := range loans {
		l := &loans[i]
		batch.Queue(`
			INSERT INTO lms_cleaned (
				run_id, loan_id, application_id, disbursement_date,
				current_balance_eur, days_past_due, payment_status,
				last_payment_date, next_payment_due, delinquency_bucket,
				data_quality_flags, processed_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			runID, l.LoanID, l.ApplicationID, dateArg(l.DisbursementDate),
			decimalArg(l.CurrentBalanceEUR), l.DaysPastDue, l.PaymentStatus,
			dateArg(l.LastPaymentDate), dateArg(l.NextPaymentDue), bucketArg(l.DelinquencyBucket),
			jsonArg(l.Flags), l.ProcessedAt,
		)
	}

	for i := range portfolio {
		p := &portfolio[i]
		var loanID any
		if p.Loan != nil {
			loanID = p.Loan.LoanID
		}
		batch.Queue(`
			INSERT INTO loan_portfolio (
				run_id, application_id, loan_id, delinquency_bucket,
				months_since_disbursement, row_data
			) VALUES ($1, $2, $3, $4, $5, $6)`,
			runID, p.ApplicationID, loanID, bucketArg(p.DelinquencyBucket),
			p.MonthsSinceDisbursement, jsonArg(p),
		)
	}

	batch.Queue(`
		INSERT INTO data_quality_report (run_id, report, processed_at)
		VALUES ($1, $2, $3)`,
		runID, jsonArg(report), report.ProcessedAt,
	)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to persist run %s: %w", runID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", runID, err)
	}

	s.logger.Info("Persisted run to working store",
		zap.String("run_id", runID.String()),
		zap.Int("applications", len(apps)),
		zap.Int("lms_records", len(loans)),
		zap.Int("portfolio_rows", len(portfolio)))

	return nil
}

func decimalArg(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func bucketArg(b *models.DelinquencyBucket) any {
	if b == nil {
		return nil
	}
	return string(*b)
}

func jsonArg(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
