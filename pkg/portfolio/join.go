package portfolio

import (
	"time"

	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

// Joiner builds the unified portfolio view from the two validated sets.
type Joiner struct {
	logger *zap.Logger
}

func NewJoiner(logger *zap.Logger) *Joiner {
	return &Joiner{logger: logger}
}

// Join left-joins applications to LMS records on application id. The
// application side drives: an application with no servicing match still
// yields one row with a nil Loan, and an application matched by several LMS
// rows yields one row per match. Blank ids never match each other. The join
// does not filter by application status; an accidental match on a
// non-approved application surfaces as-is.
func (j *Joiner) Join(apps []models.Application, loans []models.LMSRecord, processedAt time.Time) []models.PortfolioRow {
	byAppID := make(map[string][]*models.LMSRecord, len(loans))
	for i := range loans {
		id := loans[i].ApplicationID
		if id == "" {
			continue
		}
		byAppID[id] = append(byAppID[id], &loans[i])
	}

	rows := make([]models.PortfolioRow, 0, len(apps))
	for i := range apps {
		app := apps[i]

		matches := byAppID[app.ApplicationID]
		if app.ApplicationID == "" || len(matches) == 0 {
			rows = append(rows, models.PortfolioRow{Application: app})
			continue
		}

		for _, loan := range matches {
			rows = append(rows, models.PortfolioRow{
				Application:             app,
				Loan:                    loan,
				DelinquencyBucket:       models.DelinquencyBucketForDays(loan.DaysPastDue),
				MonthsSinceDisbursement: monthsSinceDisbursement(loan.DisbursementDate, processedAt),
			})
		}
	}

	j.logger.Info("Joined loan portfolio",
		zap.Int("applications", len(apps)),
		zap.Int("lms_records", len(loans)),
		zap.Int("portfolio_rows", len(rows)))

	return rows
}

// monthsSinceDisbursement counts calendar-month boundaries crossed between
// the disbursement date and the run date; days within the month are ignored.
// Nil when the loan was never disbursed.
func monthsSinceDisbursement(disbursed *time.Time, processedAt time.Time) *int {
	if disbursed == nil {
		return nil
	}
	now := processedAt.UTC()
	months := (now.Year()-disbursed.Year())*12 + int(now.Month()) - int(disbursed.Month())
	return &months
}
