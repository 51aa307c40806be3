package report

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

// Builder aggregates per-record flags into the run-wide quality report.
type Builder struct {
	logger *zap.Logger
}

func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build sums every rule flag across both validated sets, records the
// processed and quarantined counts, and collects the sorted deduplicated set
// of application ids with at least one true flag from either feed. Rows
// whose application id is blank contribute to the counters but not to the id
// list; there is no identifier to report for them.
func (b *Builder) Build(apps []models.Application, loans []models.LMSRecord, quarantined int, processedAt time.Time) models.QualityReport {
	r := models.QualityReport{
		ApplicationsProcessed:   len(apps),
		QuarantinedApplications: quarantined,
		LMSProcessed:            len(loans),
		ProcessedAt:             processedAt,
	}

	problematic := make(map[string]struct{})

	for _, a := range apps {
		f := a.Flags
		countIf(&r.AppApplicationIDNull, f.ApplicationIDNull)
		countIf(&r.AppApplicationIDDuplicate, f.ApplicationIDDuplicate)
		countIf(&r.AppLoanAmountNonPositive, f.LoanAmountNonPositive)
		countIf(&r.AppCreditScoreMissing, f.CreditScoreMissing)
		countIf(&r.AppCreditScoreOutOfRange, f.CreditScoreOutOfRange)
		countIf(&r.AppPostalCodeInvalid, f.PostalCodeInvalid)
		countIf(&r.AppInstallationTypeInvalid, f.InstallationTypeInvalid)
		countIf(&r.AppSystemSizeInvalid, f.SystemSizeInvalid)
		countIf(&r.AppSystemSizePresentForHeatPump, f.SystemSizePresentForHeatPump)

		if f.Any() && a.ApplicationID != "" {
			problematic[a.ApplicationID] = struct{}{}
		}
	}

	for _, l := range loans {
		f := l.Flags
		countIf(&r.LMSLoanIDNull, f.LoanIDNull)
		countIf(&r.LMSApplicationIDNull, f.ApplicationIDNull)
		countIf(&r.LMSApplicationIDInvalidFormat, f.ApplicationIDInvalidFormat)
		countIf(&r.LMSLoanIDDuplicate, f.LoanIDDuplicate)
		countIf(&r.LMSApplicationIDDuplicate, f.ApplicationIDDuplicate)
		countIf(&r.LMSCurrentBalanceNegative, f.CurrentBalanceNegative)
		countIf(&r.LMSDaysPastDueNegative, f.DaysPastDueNegative)
		countIf(&r.LMSLastPaymentBeforeDisbursement, f.LastPaymentBeforeDisbursement)
		countIf(&r.LMSNextDueBeforeDisbursement, f.NextDueBeforeDisbursement)
		countIf(&r.LMSLastPaymentAfterNextDue, f.LastPaymentAfterNextDue)

		if f.Any() && l.ApplicationID != "" {
			problematic[l.ApplicationID] = struct{}{}
		}
	}

	ids := make([]string, 0, len(problematic))
	for id := range problematic {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	r.ProblematicApplicationIDs = ids

	b.logger.Info("Built data quality report",
		zap.Int("applications_processed", r.ApplicationsProcessed),
		zap.Int("quarantined_applications", r.QuarantinedApplications),
		zap.Int("lms_processed", r.LMSProcessed),
		zap.Int("problematic_application_ids", len(ids)))

	return r
}

func countIf(counter *int, hit bool) {
	if hit {
		*counter++
	}
}
