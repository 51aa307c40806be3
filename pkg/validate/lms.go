package validate

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/ingest"
	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

// Application ids issued by the origination system: "APP" plus digits.
var appIDPattern = regexp.MustCompile(`^APP[0-9]+$`)

// LMSValidator types and flags loan-servicing rows.
type LMSValidator struct {
	logger *zap.Logger
}

func NewLMSValidator(logger *zap.Logger) *LMSValidator {
	return &LMSValidator{logger: logger}
}

// Validate converts every LMS row into a typed LMSRecord with its rule flags
// and delinquency bucket. Two independent set-wide duplicate passes run
// first, one per identifier, so a row can be flagged duplicate on both its
// loan id and its application id at once. Blank identifiers are excluded
// from the multisets.
func (v *LMSValidator) Validate(rows []ingest.RawLMS, processedAt time.Time) []models.LMSRecord {
	loanIDCounts := make(map[string]int, len(rows))
	appIDCounts := make(map[string]int, len(rows))
	for _, r := range rows {
		if id := deref(r.LoanID); !isBlank(id) {
			loanIDCounts[id]++
		}
		if id := deref(r.ApplicationID); !isBlank(id) {
			appIDCounts[id]++
		}
	}

	out := make([]models.LMSRecord, 0, len(rows))
	for _, r := range rows {
		rec := models.LMSRecord{
			LoanID:            deref(r.LoanID),
			ApplicationID:     deref(r.ApplicationID),
			DisbursementDate:  parseDate(r.DisbursementDate),
			CurrentBalanceEUR: parseDecimal(r.CurrentBalanceEUR),
			DaysPastDue:       parseInt(r.DaysPastDue),
			PaymentStatus:     strings.ToLower(deref(r.PaymentStatus)),
			LastPaymentDate:   parseDate(r.LastPaymentDate),
			NextPaymentDue:    parseDate(r.NextPaymentDue),
			ProcessedAt:       processedAt,
		}

		rec.Flags = lmsFlags(&rec, loanIDCounts, appIDCounts)
		rec.DelinquencyBucket = models.DelinquencyBucketForDays(rec.DaysPastDue)

		out = append(out, rec)
	}

	v.logger.Info("Validated LMS records", zap.Int("rows", len(out)))

	return out
}

func lmsFlags(rec *models.LMSRecord, loanIDCounts, appIDCounts map[string]int) models.LMSFlags {
	f := models.LMSFlags{}

	f.LoanIDNull = isBlank(rec.LoanID)
	f.ApplicationIDNull = isBlank(rec.ApplicationID)
	f.ApplicationIDInvalidFormat = !isBlank(rec.ApplicationID) &&
		!appIDPattern.MatchString(rec.ApplicationID)

	f.LoanIDDuplicate = loanIDCounts[rec.LoanID] > 1
	f.ApplicationIDDuplicate = appIDCounts[rec.ApplicationID] > 1

	f.CurrentBalanceNegative = rec.CurrentBalanceEUR != nil && rec.CurrentBalanceEUR.IsNegative()
	f.DaysPastDueNegative = rec.DaysPastDue != nil && *rec.DaysPastDue < 0

	// Date-ordering checks are null-safe: if either side is missing the flag
	// stays false rather than unknown.
	f.LastPaymentBeforeDisbursement = rec.LastPaymentDate != nil && rec.DisbursementDate != nil &&
		rec.LastPaymentDate.Before(*rec.DisbursementDate)
	f.NextDueBeforeDisbursement = rec.NextPaymentDue != nil && rec.DisbursementDate != nil &&
		rec.NextPaymentDue.Before(*rec.DisbursementDate)
	f.LastPaymentAfterNextDue = rec.LastPaymentDate != nil && rec.NextPaymentDue != nil &&
		rec.LastPaymentDate.After(*rec.NextPaymentDue)

	return f
}
