package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/greenloop-finance/portfolio-engine/pkg/apperrors"
)

// RawTable is an untyped snapshot of one input feed. Every cell is text or
// nil; nothing is typed or repaired at load time. Rows keep the width of the
// widest decoded record so that overflow columns survive for the quarantine
// classifier.
type RawTable struct {
	Columns []string
	Rows    [][]*string
}

// Width returns the number of columns, including any overflow columns.
func (t *RawTable) Width() int {
	return len(t.Columns)
}

// LoadCSV reads a comma-delimited, double-quote escaped feed with a header
// row. Ragged rows are tolerated: short rows are padded with nils, long rows
// widen the table (extra columns are named column12, column13, ... by
// zero-based position, after the header runs out of names). Empty cells
// decode as nil.
func LoadCSV(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingInput, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled here, not rejected

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBadHeader, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	var records [][]string
	width := len(header)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if len(rec) > width {
			width = len(rec)
		}
		records = append(records, rec)
	}

	columns := make([]string, width)
	for i := 0; i < width; i++ {
		if i < len(header) {
			columns[i] = strings.TrimSpace(header[i])
		} else {
			columns[i] = fmt.Sprintf("column%d", i)
		}
	}

	rows := make([][]*string, 0, len(records))
	for _, rec := range records {
		row := make([]*string, width)
		for i, cell := range rec {
			if cell == "" {
				continue
			}
			v := cell
			row[i] = &v
		}
		rows = append(rows, row)
	}

	return &RawTable{Columns: columns, Rows: rows}, nil
}
