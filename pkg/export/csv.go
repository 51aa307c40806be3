package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/apperrors"
	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

// CSVWriter renders pipeline artifacts as delimited text: header row, every
// value double-quoted, nulls as empty string, booleans as true/false, the
// per-record flag set as a JSON object with fixed rule-name keys.
type CSVWriter struct {
	logger *zap.Logger
}

func NewCSVWriter(logger *zap.Logger) *CSVWriter {
	return &CSVWriter{logger: logger}
}

var applicationColumns = []string{
	"application_id", "customer_email", "installer_partner_id",
	"installation_type", "system_size_kwp", "loan_amount_eur",
	"loan_term_months", "application_date", "credit_score",
	"annual_income_eur", "postal_code", "status",
	"flag_application_id_null", "flag_application_id_duplicate",
	"flag_loan_amount_non_positive", "flag_credit_score_missing",
	"flag_credit_score_out_of_range", "flag_postal_code_invalid",
	"flag_installation_type_invalid", "flag_system_size_invalid",
	"flag_system_size_present_for_heat_pump",
	"risk_category", "loan_to_income_ratio", "data_quality_flags",
	"processed_at",
}

var lmsPortfolioColumns = []string{
	"loan_id", "lms_application_id", "disbursement_date",
	"current_balance_eur", "days_past_due", "payment_status",
	"last_payment_date", "next_payment_due",
	"flag_loan_id_null", "flag_application_id_null",
	"flag_application_id_invalid_format", "flag_current_balance_negative",
	"flag_days_past_due_negative", "flag_last_payment_before_disbursement",
	"flag_next_due_before_disbursement", "flag_last_payment_after_next_due",
	"lms_data_quality_flags", "lms_processed_at",
}

var reportColumns = []string{
	"applications_processed", "quarantined_applications", "lms_processed",
	"app_application_id_null", "app_application_id_duplicate",
	"app_loan_amount_non_positive", "app_credit_score_missing",
	"app_credit_score_out_of_range", "app_postal_code_invalid",
	"app_installation_type_invalid", "app_system_size_invalid",
	"app_system_size_present_for_heat_pump",
	"lms_loan_id_null", "lms_application_id_null",
	"lms_application_id_invalid_format", "lms_loan_id_duplicate",
	"lms_application_id_duplicate", "lms_current_balance_negative",
	"lms_days_past_due_negative", "lms_last_payment_before_disbursement",
	"lms_next_due_before_disbursement", "lms_last_payment_after_next_due",
	"problematic_application_ids", "processed_at",
}

// WriteApplications writes one row per validated application.
func (w *CSVWriter) WriteApplications(path string, apps []models.Application) error {
	rows := make([][]string, 0, len(apps))
	for i := range apps {
		rows = append(rows, applicationCells(&apps[i]))
	}
	return w.writeAll(path, applicationColumns, rows)
}

// WritePortfolio writes one row per portfolio row. Rows without a matched
// loan render every LMS-origin column, flags included, as null.
func (w *CSVWriter) WritePortfolio(path string, portfolio []models.PortfolioRow) error {
	header := make([]string, 0, len(applicationColumns)+len(lmsPortfolioColumns)+2)
	header = append(header, applicationColumns...)
	header = append(header, lmsPortfolioColumns...)
	header = append(header, "delinquency_bucket", "months_since_disbursement")

	rows := make([][]string, 0, len(portfolio))
	for i := range portfolio {
		rows = append(rows, portfolioCells(&portfolio[i]))
	}
	return w.writeAll(path, header, rows)
}

// WriteQualityReport writes the single-row run summary.
func (w *CSVWriter) WriteQualityReport(path string, r models.QualityReport) error {
	return w.writeAll(path, reportColumns, [][]string{reportCells(r)})
}

func applicationCells(a *models.Application) []string {
	return []string{
		a.ApplicationID,
		a.CustomerEmail,
		a.InstallerPartnerID,
		a.InstallationType,
		decimalCell(a.SystemSizeKWP),
		decimalCell(a.LoanAmountEUR),
		intCell(a.LoanTermMonths),
		dateCell(a.ApplicationDate),
		intCell(a.CreditScore),
		decimalCell(a.AnnualIncomeEUR),
		a.PostalCode,
		a.Status,
		boolCell(a.Flags.ApplicationIDNull),
		boolCell(a.Flags.ApplicationIDDuplicate),
		boolCell(a.Flags.LoanAmountNonPositive),
		boolCell(a.Flags.CreditScoreMissing),
		boolCell(a.Flags.CreditScoreOutOfRange),
		boolCell(a.Flags.PostalCodeInvalid),
		boolCell(a.Flags.InstallationTypeInvalid),
		boolCell(a.Flags.SystemSizeInvalid),
		boolCell(a.Flags.SystemSizePresentForHeatPump),
		string(a.RiskCategory),
		decimalCell(a.LoanToIncomeRatio),
		flagsCell(a.Flags),
		timeCell(a.ProcessedAt),
	}
}

func portfolioCells(p *models.PortfolioRow) []string {
	cells := applicationCells(&p.Application)

	if p.Loan == nil {
		for range lmsPortfolioColumns {
			cells = append(cells, "")
		}
	} else {
		l := p.Loan
		cells = append(cells,
			l.LoanID,
			l.ApplicationID,
			dateCell(l.DisbursementDate),
			decimalCell(l.CurrentBalanceEUR),
			intCell(l.DaysPastDue),
			l.PaymentStatus,
			dateCell(l.LastPaymentDate),
			dateCell(l.NextPaymentDue),
			boolCell(l.Flags.LoanIDNull),
			boolCell(l.Flags.ApplicationIDNull),
			boolCell(l.Flags.ApplicationIDInvalidFormat),
			boolCell(l.Flags.CurrentBalanceNegative),
			boolCell(l.Flags.DaysPastDueNegative),
			boolCell(l.Flags.LastPaymentBeforeDisbursement),
			boolCell(l.Flags.NextDueBeforeDisbursement),
			boolCell(l.Flags.LastPaymentAfterNextDue),
			flagsCell(l.Flags),
			timeCell(l.ProcessedAt),
		)
	}

	cells = append(cells, bucketCell(p.DelinquencyBucket), intCell(p.MonthsSinceDisbursement))
	return cells
}

func reportCells(r models.QualityReport) []string {
	return []string{
		strconv.Itoa(r.ApplicationsProcessed),
		strconv.Itoa(r.QuarantinedApplications),
		strconv.Itoa(r.LMSProcessed),
		strconv.Itoa(r.AppApplicationIDNull),
		strconv.Itoa(r.AppApplicationIDDuplicate),
		strconv.Itoa(r.AppLoanAmountNonPositive),
		strconv.Itoa(r.AppCreditScoreMissing),
		strconv.Itoa(r.AppCreditScoreOutOfRange),
		strconv.Itoa(r.AppPostalCodeInvalid),
		strconv.Itoa(r.AppInstallationTypeInvalid),
		strconv.Itoa(r.AppSystemSizeInvalid),
		strconv.Itoa(r.AppSystemSizePresentForHeatPump),
		strconv.Itoa(r.LMSLoanIDNull),
		strconv.Itoa(r.LMSApplicationIDNull),
		strconv.Itoa(r.LMSApplicationIDInvalidFormat),
		strconv.Itoa(r.LMSLoanIDDuplicate),
		strconv.Itoa(r.LMSApplicationIDDuplicate),
		strconv.Itoa(r.LMSCurrentBalanceNegative),
		strconv.Itoa(r.LMSDaysPastDueNegative),
		strconv.Itoa(r.LMSLastPaymentBeforeDisbursement),
		strconv.Itoa(r.LMSNextDueBeforeDisbursement),
		strconv.Itoa(r.LMSLastPaymentAfterNextDue),
		idListCell(r.ProblematicApplicationIDs),
		timeCell(r.ProcessedAt),
	}
}

// writeAll renders the whole artifact in memory, then writes it in one pass.
func (w *CSVWriter) writeAll(path string, header []string, rows [][]string) error {
	var sb strings.Builder
	writeLine(&sb, header)
	for _, row := range rows {
		writeLine(&sb, row)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrWriteOutput, path, err)
	}

	w.logger.Info("Wrote output artifact", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}

// writeLine quotes every field unconditionally, escaping embedded quotes by
// doubling them.
func writeLine(sb *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(strings.ReplaceAll(c, `"`, `""`))
		sb.WriteByte('"')
	}
	sb.WriteByte('\n')
}

func decimalCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func intCell(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func timeCell(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func boolCell(b bool) string {
	return strconv.FormatBool(b)
}

func bucketCell(b *models.DelinquencyBucket) string {
	if b == nil {
		return ""
	}
	return string(*b)
}

// flagsCell renders the flag set as a JSON object with the fixed,
// enumerated rule-name keys.
func flagsCell(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// idListCell renders the problematic id list as a JSON array so the report
// stays machine-readable inside a single CSV cell.
func idListCell(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return ""
	}
	return string(b)
}
