package ingest

// LMSColumnCount is the number of logical fields in the LMS servicing extract.
const LMSColumnCount = 8

// RawLMS is one loan-servicing row, still untyped. The LMS feed has no
// quarantine step; every row proceeds to validation.
type RawLMS struct {
	LoanID            *string
	ApplicationID     *string
	DisbursementDate  *string
	CurrentBalanceEUR *string
	DaysPastDue       *string
	PaymentStatus     *string
	LastPaymentDate   *string
	NextPaymentDue    *string
}

// LMSRows maps the raw LMS table onto its fixed column order.
func LMSRows(table *RawTable) []RawLMS {
	out := make([]RawLMS, 0, len(table.Rows))
	for _, row := range table.Rows {
		cell := func(i int) *string {
			if i < len(row) {
				return row[i]
			}
			return nil
		}
		out = append(out, RawLMS{
			LoanID:            cell(0),
			ApplicationID:     cell(1),
			DisbursementDate:  cell(2),
			CurrentBalanceEUR: cell(3),
			DaysPastDue:       cell(4),
			PaymentStatus:     cell(5),
			LastPaymentDate:   cell(6),
			NextPaymentDue:    cell(7),
		})
	}
	return out
}
