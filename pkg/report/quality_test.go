package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

var runStamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func build(t *testing.T, apps []models.Application, loans []models.LMSRecord, quarantined int) models.QualityReport {
	t.Helper()
	return NewBuilder(zap.NewNop()).Build(apps, loans, quarantined, runStamp)
}

func TestBuild_CountsAndCounters(t *testing.T) {
	apps := []models.Application{
		{ApplicationID: "APP002", Flags: models.ApplicationFlags{PostalCodeInvalid: true, CreditScoreMissing: true}},
		{ApplicationID: "APP001", Flags: models.ApplicationFlags{PostalCodeInvalid: true}},
		{ApplicationID: "APP003"},
	}
	loans := []models.LMSRecord{
		{LoanID: "LN001", ApplicationID: "APP001", Flags: models.LMSFlags{CurrentBalanceNegative: true}},
		{LoanID: "LN002", ApplicationID: "APP009", Flags: models.LMSFlags{ApplicationIDInvalidFormat: false}},
	}

	r := build(t, apps, loans, 2)

	assert.Equal(t, 3, r.ApplicationsProcessed)
	assert.Equal(t, 2, r.QuarantinedApplications)
	assert.Equal(t, 2, r.LMSProcessed)

	assert.Equal(t, 2, r.AppPostalCodeInvalid)
	assert.Equal(t, 1, r.AppCreditScoreMissing)
	assert.Equal(t, 0, r.AppApplicationIDNull)
	assert.Equal(t, 1, r.LMSCurrentBalanceNegative)
	assert.Equal(t, 0, r.LMSLoanIDNull)

	assert.Equal(t, runStamp, r.ProcessedAt)
}

func TestBuild_ProblematicIDsAreSortedDeduplicatedUnion(t *testing.T) {
	apps := []models.Application{
		{ApplicationID: "APP010", Flags: models.ApplicationFlags{PostalCodeInvalid: true}},
		{ApplicationID: "APP002", Flags: models.ApplicationFlags{ApplicationIDDuplicate: true}},
		{ApplicationID: "APP002", Flags: models.ApplicationFlags{ApplicationIDDuplicate: true}},
		{ApplicationID: "APP999"}, // clean, stays out
	}
	loans := []models.LMSRecord{
		{ApplicationID: "APP002", Flags: models.LMSFlags{DaysPastDueNegative: true}}, // already in, dedupe
		{ApplicationID: "APP001", Flags: models.LMSFlags{LoanIDNull: true}},
	}

	r := build(t, apps, loans, 0)
	assert.Equal(t, []string{"APP001", "APP002", "APP010"}, r.ProblematicApplicationIDs)
}

func TestBuild_BlankIDsCountButAreNotListed(t *testing.T) {
	apps := []models.Application{
		{ApplicationID: "", Flags: models.ApplicationFlags{ApplicationIDNull: true}},
	}
	loans := []models.LMSRecord{
		{ApplicationID: "", Flags: models.LMSFlags{ApplicationIDNull: true}},
	}

	r := build(t, apps, loans, 0)
	assert.Equal(t, 1, r.AppApplicationIDNull)
	assert.Equal(t, 1, r.LMSApplicationIDNull)
	assert.Empty(t, r.ProblematicApplicationIDs)
}

func TestBuild_CounterEqualsRowsWithFlagTrue(t *testing.T) {
	var apps []models.Application
	for i := 0; i < 7; i++ {
		a := models.Application{ApplicationID: "APP00" + string(rune('1'+i))}
		if i%2 == 0 {
			a.Flags.LoanAmountNonPositive = true
		}
		apps = append(apps, a)
	}

	r := build(t, apps, nil, 0)
	assert.Equal(t, 4, r.AppLoanAmountNonPositive)
	assert.Len(t, r.ProblematicApplicationIDs, 4)
}
