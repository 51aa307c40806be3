package validate

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/ingest"
	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

var runStamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func rawApp(mutate func(*ingest.RawApplication)) ingest.RawApplication {
	r := ingest.RawApplication{
		ApplicationID:      strPtr("APP001"),
		CustomerEmail:      strPtr("jane.doe@example.com"),
		InstallerPartnerID: strPtr("PART1"),
		InstallationType:   strPtr("solar_pv"),
		SystemSizeKWP:      strPtr("7.5"),
		LoanAmountEUR:      strPtr("15000"),
		LoanTermMonths:     strPtr("120"),
		ApplicationDate:    strPtr("2023-03-01"),
		CreditScore:        strPtr("710"),
		AnnualIncomeEUR:    strPtr("52000"),
		PostalCode:         strPtr("10115"),
		Status:             strPtr("Approved"),
	}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func validateApps(t *testing.T, rows ...ingest.RawApplication) []models.Application {
	t.Helper()
	return NewApplicationValidator(zap.NewNop()).Validate(rows, runStamp)
}

func TestValidate_CleanRowHasNoFlags(t *testing.T) {
	apps := validateApps(t, rawApp(nil))
	require.Len(t, apps, 1)

	a := apps[0]
	assert.False(t, a.Flags.Any())
	assert.Equal(t, models.RiskGood, a.RiskCategory)
	assert.Equal(t, "approved", a.Status)
	assert.Equal(t, runStamp, a.ProcessedAt)

	require.NotNil(t, a.LoanToIncomeRatio)
	want := decimal.RequireFromString("15000").Div(decimal.RequireFromString("52000"))
	assert.True(t, a.LoanToIncomeRatio.Equal(want))
}

func TestValidate_OutOfRangeScoreAndBadPostalCode(t *testing.T) {
	apps := validateApps(t, rawApp(func(r *ingest.RawApplication) {
		r.CreditScore = strPtr("900")
		r.PostalCode = strPtr("1234")
	}))
	require.Len(t, apps, 1)

	a := apps[0]
	assert.True(t, a.Flags.CreditScoreOutOfRange)
	assert.True(t, a.Flags.PostalCodeInvalid)
	assert.False(t, a.Flags.CreditScoreMissing)
	assert.Equal(t, models.RiskInvalid, a.RiskCategory)
}

func TestValidate_EmailNormalization(t *testing.T) {
	apps := validateApps(t, rawApp(func(r *ingest.RawApplication) {
		r.CustomerEmail = strPtr(" Jane. Doe@Example.COM ")
	}))
	assert.Equal(t, "jane.doe@example.com", apps[0].CustomerEmail)
}

func TestValidate_ConversionFailureBecomesNullAndFlag(t *testing.T) {
	apps := validateApps(t, rawApp(func(r *ingest.RawApplication) {
		r.CreditScore = strPtr("seven hundred")
		r.LoanAmountEUR = strPtr("not-a-number")
	}))

	a := apps[0]
	assert.Nil(t, a.CreditScore)
	assert.True(t, a.Flags.CreditScoreMissing)
	assert.False(t, a.Flags.CreditScoreOutOfRange)
	assert.Equal(t, models.RiskUnknown, a.RiskCategory)

	assert.Nil(t, a.LoanAmountEUR)
	assert.True(t, a.Flags.LoanAmountNonPositive)
	assert.Nil(t, a.LoanToIncomeRatio)
}

func TestValidate_DuplicateIDsFlagEveryOccurrence(t *testing.T) {
	apps := validateApps(t,
		rawApp(nil),
		rawApp(func(r *ingest.RawApplication) { r.CustomerEmail = strPtr("other@example.com") }),
		rawApp(func(r *ingest.RawApplication) { r.ApplicationID = strPtr("APP002") }),
	)
	require.Len(t, apps, 3)

	assert.True(t, apps[0].Flags.ApplicationIDDuplicate)
	assert.True(t, apps[1].Flags.ApplicationIDDuplicate)
	assert.False(t, apps[2].Flags.ApplicationIDDuplicate)
}

func TestValidate_BlankIDsAreNullNotDuplicate(t *testing.T) {
	apps := validateApps(t,
		rawApp(func(r *ingest.RawApplication) { r.ApplicationID = nil }),
		rawApp(func(r *ingest.RawApplication) { r.ApplicationID = strPtr("  ") }),
	)

	for _, a := range apps {
		assert.True(t, a.Flags.ApplicationIDNull)
		assert.False(t, a.Flags.ApplicationIDDuplicate)
	}
}

func TestValidate_SystemSizeRules(t *testing.T) {
	tests := []struct {
		name             string
		installationType *string
		systemSize       *string
		wantTypeInvalid  bool
		wantSizeInvalid  bool
		wantHeatPumpSize bool
	}{
		{"solar without size", strPtr("solar_pv"), nil, false, true, false},
		{"solar with zero size", strPtr("solar_pv"), strPtr("0"), false, true, false},
		{"battery with negative size", strPtr("solar_battery"), strPtr("-2"), false, true, false},
		{"battery with size", strPtr("solar_battery"), strPtr("10.4"), false, false, false},
		{"heat pump with size", strPtr("heat_pump"), strPtr("5"), false, false, true},
		{"heat pump without size", strPtr("heat_pump"), nil, false, false, false},
		{"unknown type", strPtr("wind_turbine"), strPtr("5"), true, false, false},
		{"missing type", nil, strPtr("5"), true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps := validateApps(t, rawApp(func(r *ingest.RawApplication) {
				r.InstallationType = tt.installationType
				r.SystemSizeKWP = tt.systemSize
			}))

			f := apps[0].Flags
			assert.Equal(t, tt.wantTypeInvalid, f.InstallationTypeInvalid)
			assert.Equal(t, tt.wantSizeInvalid, f.SystemSizeInvalid)
			assert.Equal(t, tt.wantHeatPumpSize, f.SystemSizePresentForHeatPump)
		})
	}
}

func TestValidate_RatioNilWhenIncomeMissingOrNonPositive(t *testing.T) {
	for _, income := range []*string{nil, strPtr("0"), strPtr("-100")} {
		apps := validateApps(t, rawApp(func(r *ingest.RawApplication) {
			r.AnnualIncomeEUR = income
		}))
		assert.Nil(t, apps[0].LoanToIncomeRatio)
	}
}

func TestValidate_NoRowIsDropped(t *testing.T) {
	rows := []ingest.RawApplication{
		rawApp(nil),
		{}, // entirely empty row
		rawApp(func(r *ingest.RawApplication) { r.CreditScore = strPtr("100") }),
	}
	apps := validateApps(t, rows...)
	assert.Len(t, apps, len(rows))
}
