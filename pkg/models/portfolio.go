package models

// PortfolioRow is the left-join composition of one application with zero or
// one matching loan-servicing record. Loan is nil when the application has no
// match; every LMS-origin output field renders as null in that case.
//
// DelinquencyBucket is recomputed from the joined days-past-due rather than
// copied from the LMS record, so a stale upstream bucket cannot leak through.
type PortfolioRow struct {
	Application

	Loan *LMSRecord `json:"loan,omitempty"`

	DelinquencyBucket       *DelinquencyBucket `json:"delinquency_bucket"`
	MonthsSinceDisbursement *int               `json:"months_since_disbursement"`
}
