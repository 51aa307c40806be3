package validate

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/ingest"
	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

var postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)

// ApplicationValidator types and flags well-formed application rows.
type ApplicationValidator struct {
	logger *zap.Logger
}

func NewApplicationValidator(logger *zap.Logger) *ApplicationValidator {
	return &ApplicationValidator{logger: logger}
}

// Validate converts every good raw row into a typed Application carrying its
// rule flags and derived fields. No row is dropped for content reasons; every
// violation stays visible as a flag on a retained record.
//
// Duplicate detection is a set-wide pass: the id multiset is built over the
// whole input first, then consulted read-only while flagging, so every
// occurrence of a repeated id is flagged, not just the second and later ones.
// Blank ids never count as duplicates of each other.
func (v *ApplicationValidator) Validate(rows []ingest.RawApplication, processedAt time.Time) []models.Application {
	idCounts := make(map[string]int, len(rows))
	for _, r := range rows {
		id := deref(r.ApplicationID)
		if isBlank(id) {
			continue
		}
		idCounts[id]++
	}

	out := make([]models.Application, 0, len(rows))
	for _, r := range rows {
		app := models.Application{
			ApplicationID:      deref(r.ApplicationID),
			CustomerEmail:      normalizeEmail(r.CustomerEmail),
			InstallerPartnerID: deref(r.InstallerPartnerID),
			InstallationType:   deref(r.InstallationType),
			SystemSizeKWP:      parseDecimal(r.SystemSizeKWP),
			LoanAmountEUR:      parseDecimal(r.LoanAmountEUR),
			LoanTermMonths:     parseInt(r.LoanTermMonths),
			ApplicationDate:    parseDate(r.ApplicationDate),
			CreditScore:        parseInt(r.CreditScore),
			AnnualIncomeEUR:    parseDecimal(r.AnnualIncomeEUR),
			PostalCode:         deref(r.PostalCode),
			Status:             strings.ToLower(deref(r.Status)),
			ProcessedAt:        processedAt,
		}

		app.Flags = applicationFlags(&app, idCounts)
		app.RiskCategory = models.RiskCategoryForScore(app.CreditScore)
		app.LoanToIncomeRatio = loanToIncomeRatio(&app)

		out = append(out, app)
	}

	v.logger.Info("Validated applications",
		zap.Int("rows", len(out)),
		zap.Int("duplicate_ids", len(duplicatedIDs(idCounts))))

	return out
}

func applicationFlags(app *models.Application, idCounts map[string]int) models.ApplicationFlags {
	f := models.ApplicationFlags{}

	f.ApplicationIDNull = isBlank(app.ApplicationID)
	f.ApplicationIDDuplicate = idCounts[app.ApplicationID] > 1

	f.LoanAmountNonPositive = app.LoanAmountEUR == nil || !app.LoanAmountEUR.IsPositive()

	f.CreditScoreMissing = app.CreditScore == nil
	f.CreditScoreOutOfRange = app.CreditScore != nil &&
		(*app.CreditScore < 300 || *app.CreditScore > 850)

	f.PostalCodeInvalid = !postalCodePattern.MatchString(app.PostalCode)

	switch app.InstallationType {
	case models.InstallationSolarPV, models.InstallationSolarBattery:
		f.SystemSizeInvalid = app.SystemSizeKWP == nil || !app.SystemSizeKWP.IsPositive()
	case models.InstallationHeatPump:
		f.SystemSizePresentForHeatPump = app.SystemSizeKWP != nil
	default:
		f.InstallationTypeInvalid = true
	}

	return f
}

// loanToIncomeRatio is loan amount over annual income, unrounded. It is nil
// whenever income is missing or non-positive, or the loan amount itself is
// already flagged non-positive.
func loanToIncomeRatio(app *models.Application) *decimal.Decimal {
	if app.AnnualIncomeEUR == nil || !app.AnnualIncomeEUR.IsPositive() {
		return nil
	}
	if app.Flags.LoanAmountNonPositive {
		return nil
	}
	ratio := app.LoanAmountEUR.Div(*app.AnnualIncomeEUR)
	return &ratio
}

func duplicatedIDs(idCounts map[string]int) []string {
	var dup []string
	for id, n := range idCounts {
		if n > 1 {
			dup = append(dup, id)
		}
	}
	return dup
}
