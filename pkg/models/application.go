package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installation types accepted on an application. Anything else is flagged.
const (
	InstallationSolarPV      = "solar_pv"
	InstallationSolarBattery = "solar_battery"
	InstallationHeatPump     = "heat_pump"
)

// RiskCategory classifies an applicant by credit score.
type RiskCategory string

const (
	RiskUnknown   RiskCategory = "Unknown"
	RiskInvalid   RiskCategory = "Invalid"
	RiskExcellent RiskCategory = "Excellent"
	RiskGood      RiskCategory = "Good"
	RiskFair      RiskCategory = "Fair"
	RiskPoor      RiskCategory = "Poor"
)

// RiskCategoryForScore maps a credit score to its risk category.
// A missing score is Unknown; a score outside [300, 850] is Invalid.
// The remaining buckets are evaluated in priority order with inclusive bounds.
func RiskCategoryForScore(score *int) RiskCategory {
	switch {
	case score == nil:
		return RiskUnknown
	case *score < 300 || *score > 850:
		return RiskInvalid
	case *score >= 750:
		return RiskExcellent
	case *score >= 700:
		return RiskGood
	case *score >= 650:
		return RiskFair
	default:
		return RiskPoor
	}
}

// ApplicationFlags holds one boolean per application business rule.
// Flags are independent and non-exclusive; a row can trip several at once.
// Field order matches the rule order in the quality report.
type ApplicationFlags struct {
	ApplicationIDNull            bool `json:"application_id_null"`
	ApplicationIDDuplicate       bool `json:"application_id_duplicate"`
	LoanAmountNonPositive        bool `json:"loan_amount_non_positive"`
	CreditScoreMissing           bool `json:"credit_score_missing"`
	CreditScoreOutOfRange        bool `json:"credit_score_out_of_range"`
	PostalCodeInvalid            bool `json:"postal_code_invalid"`
	InstallationTypeInvalid      bool `json:"installation_type_invalid"`
	SystemSizeInvalid            bool `json:"system_size_invalid"`
	SystemSizePresentForHeatPump bool `json:"system_size_present_for_heat_pump"`
}

// Any reports whether at least one rule is violated.
func (f ApplicationFlags) Any() bool {
	return f.ApplicationIDNull ||
		f.ApplicationIDDuplicate ||
		f.LoanAmountNonPositive ||
		f.CreditScoreMissing ||
		f.CreditScoreOutOfRange ||
		f.PostalCodeInvalid ||
		f.InstallationTypeInvalid ||
		f.SystemSizeInvalid ||
		f.SystemSizePresentForHeatPump
}

// Application is a typed, validated loan application row.
// Nullable fields are pointers; a nil pointer means the source cell was empty
// or failed its type conversion (the relevant flag records which).
type Application struct {
	ApplicationID      string           `json:"application_id"`
	CustomerEmail      string           `json:"customer_email"`
	InstallerPartnerID string           `json:"installer_partner_id"`
	InstallationType   string           `json:"installation_type"`
	SystemSizeKWP      *decimal.Decimal `json:"system_size_kwp"`
	LoanAmountEUR      *decimal.Decimal `json:"loan_amount_eur"`
	LoanTermMonths     *int             `json:"loan_term_months"`
	ApplicationDate    *time.Time       `json:"application_date"`
	CreditScore        *int             `json:"credit_score"`
	AnnualIncomeEUR    *decimal.Decimal `json:"annual_income_eur"`
	PostalCode         string           `json:"postal_code"`
	Status             string           `json:"status"`

	Flags             ApplicationFlags `json:"data_quality_flags"`
	RiskCategory      RiskCategory     `json:"risk_category"`
	LoanToIncomeRatio *decimal.Decimal `json:"loan_to_income_ratio"`
	ProcessedAt       time.Time        `json:"processed_at"`
}
