package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DelinquencyBucket classifies loan payment health from days past due.
type DelinquencyBucket string

const (
	DelinquencyCurrent    DelinquencyBucket = "Current"
	DelinquencyLate       DelinquencyBucket = "Late"
	DelinquencyDelinquent DelinquencyBucket = "Delinquent"
	DelinquencyDefault    DelinquencyBucket = "Default"
)

// DelinquencyBucketForDays maps days-past-due onto a bucket.
// Returns nil when days is unknown. Bounds: 0 Current, 1-30 Late,
// 31-90 Delinquent, above 90 Default. Negative values land in Default's
// fallthrough only after failing every earlier range, so they classify as
// Default; the days_past_due_negative flag surfaces them separately.
func DelinquencyBucketForDays(days *int) *DelinquencyBucket {
	if days == nil {
		return nil
	}
	var b DelinquencyBucket
	switch {
	case *days == 0:
		b = DelinquencyCurrent
	case *days >= 1 && *days <= 30:
		b = DelinquencyLate
	case *days >= 31 && *days <= 90:
		b = DelinquencyDelinquent
	default:
		b = DelinquencyDefault
	}
	return &b
}

// LMSFlags holds one boolean per loan-servicing business rule.
type LMSFlags struct {
	LoanIDNull                    bool `json:"loan_id_null"`
	ApplicationIDNull             bool `json:"application_id_null"`
	ApplicationIDInvalidFormat    bool `json:"application_id_invalid_format"`
	LoanIDDuplicate               bool `json:"loan_id_duplicate"`
	ApplicationIDDuplicate        bool `json:"application_id_duplicate"`
	CurrentBalanceNegative        bool `json:"current_balance_negative"`
	DaysPastDueNegative           bool `json:"days_past_due_negative"`
	LastPaymentBeforeDisbursement bool `json:"last_payment_before_disbursement"`
	NextDueBeforeDisbursement     bool `json:"next_due_before_disbursement"`
	LastPaymentAfterNextDue       bool `json:"last_payment_after_next_due"`
}

// Any reports whether at least one rule is violated.
func (f LMSFlags) Any() bool {
	return f.LoanIDNull ||
		f.ApplicationIDNull ||
		f.ApplicationIDInvalidFormat ||
		f.LoanIDDuplicate ||
		f.ApplicationIDDuplicate ||
		f.CurrentBalanceNegative ||
		f.DaysPastDueNegative ||
		f.LastPaymentBeforeDisbursement ||
		f.NextDueBeforeDisbursement ||
		f.LastPaymentAfterNextDue
}

// LMSRecord is a typed, validated loan-servicing row from the LMS extract.
type LMSRecord struct {
	LoanID            string           `json:"loan_id"`
	ApplicationID     string           `json:"application_id"`
	DisbursementDate  *time.Time       `json:"disbursement_date"`
	CurrentBalanceEUR *decimal.Decimal `json:"current_balance_eur"`
	DaysPastDue       *int             `json:"days_past_due"`
	PaymentStatus     string           `json:"payment_status"`
	LastPaymentDate   *time.Time       `json:"last_payment_date"`
	NextPaymentDue    *time.Time       `json:"next_payment_due"`

	Flags             LMSFlags           `json:"data_quality_flags"`
	DelinquencyBucket *DelinquencyBucket `json:"delinquency_bucket"`
	ProcessedAt       time.Time          `json:"processed_at"`
}
