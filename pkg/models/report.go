package models

import "time"

// QualityReport is the single-row summary of one pipeline run: processed and
// quarantined counts, one counter per business rule, and every application id
// implicated in at least one failed rule from either feed.
type QualityReport struct {
	ApplicationsProcessed    int `json:"applications_processed"`
	QuarantinedApplications  int `json:"quarantined_applications"`
	LMSProcessed             int `json:"lms_processed"`

	// Application rule counters.
	AppApplicationIDNull            int `json:"app_application_id_null"`
	AppApplicationIDDuplicate       int `json:"app_application_id_duplicate"`
	AppLoanAmountNonPositive        int `json:"app_loan_amount_non_positive"`
	AppCreditScoreMissing           int `json:"app_credit_score_missing"`
	AppCreditScoreOutOfRange        int `json:"app_credit_score_out_of_range"`
	AppPostalCodeInvalid            int `json:"app_postal_code_invalid"`
	AppInstallationTypeInvalid      int `json:"app_installation_type_invalid"`
	AppSystemSizeInvalid            int `json:"app_system_size_invalid"`
	AppSystemSizePresentForHeatPump int `json:"app_system_size_present_for_heat_pump"`

	// LMS rule counters.
	LMSLoanIDNull                    int `json:"lms_loan_id_null"`
	LMSApplicationIDNull             int `json:"lms_application_id_null"`
	LMSApplicationIDInvalidFormat    int `json:"lms_application_id_invalid_format"`
	LMSLoanIDDuplicate               int `json:"lms_loan_id_duplicate"`
	LMSApplicationIDDuplicate        int `json:"lms_application_id_duplicate"`
	LMSCurrentBalanceNegative        int `json:"lms_current_balance_negative"`
	LMSDaysPastDueNegative           int `json:"lms_days_past_due_negative"`
	LMSLastPaymentBeforeDisbursement int `json:"lms_last_payment_before_disbursement"`
	LMSNextDueBeforeDisbursement     int `json:"lms_next_due_before_disbursement"`
	LMSLastPaymentAfterNextDue       int `json:"lms_last_payment_after_next_due"`

	// Sorted, deduplicated ids with at least one true flag in either feed.
	ProblematicApplicationIDs []string `json:"problematic_application_ids"`

	ProcessedAt time.Time `json:"processed_at"`
}
