package ingest

import "strings"

// ApplicationColumnCount is the number of logical fields in the applications
// feed. Anything decoded beyond it is overflow from an unescaped delimiter
// inside a field.
const ApplicationColumnCount = 12

// RawApplication is one well-formed application row, still untyped.
type RawApplication struct {
	ApplicationID      *string
	CustomerEmail      *string
	InstallerPartnerID *string
	InstallationType   *string
	SystemSizeKWP      *string
	LoanAmountEUR      *string
	LoanTermMonths     *string
	ApplicationDate    *string
	CreditScore        *string
	AnnualIncomeEUR    *string
	PostalCode         *string
	Status             *string
}

// ApplicationPartition is the result of quarantine classification: every raw
// row lands in exactly one of Good or Quarantined.
type ApplicationPartition struct {
	Good []RawApplication

	// Quarantined rows are kept verbatim, at their decoded width, for the
	// quality report's quarantine count. They never reach validation.
	Quarantined [][]*string
}

// PartitionApplications splits raw application rows into well-formed and
// quarantined. The signal is structural, not content-based: a row is
// quarantined iff any overflow column carries non-blank text, which happens
// when an unescaped comma inside a field (seen with email addresses) shifted
// the remaining fields right. Shifted rows are never repaired; repair would
// require guessing which field absorbed the extra delimiter.
func PartitionApplications(table *RawTable) ApplicationPartition {
	p := ApplicationPartition{
		Good:        make([]RawApplication, 0, len(table.Rows)),
		Quarantined: make([][]*string, 0),
	}

	for _, row := range table.Rows {
		if hasOverflow(row) {
			p.Quarantined = append(p.Quarantined, row)
			continue
		}
		p.Good = append(p.Good, rawApplicationFromRow(row))
	}
	return p
}

func hasOverflow(row []*string) bool {
	for i := ApplicationColumnCount; i < len(row); i++ {
		if row[i] != nil && strings.TrimSpace(*row[i]) != "" {
			return true
		}
	}
	return false
}

func rawApplicationFromRow(row []*string) RawApplication {
	cell := func(i int) *string {
		if i < len(row) {
			return row[i]
		}
		return nil
	}
	return RawApplication{
		ApplicationID:      cell(0),
		CustomerEmail:      cell(1),
		InstallerPartnerID: cell(2),
		InstallationType:   cell(3),
		SystemSizeKWP:      cell(4),
		LoanAmountEUR:      cell(5),
		LoanTermMonths:     cell(6),
		ApplicationDate:    cell(7),
		CreditScore:        cell(8),
		AnnualIncomeEUR:    cell(9),
		PostalCode:         cell(10),
		Status:             cell(11),
	}
}
