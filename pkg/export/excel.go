package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/greenloop-finance/portfolio-engine/pkg/apperrors"
	"github.com/greenloop-finance/portfolio-engine/pkg/models"
)

// WriteQualityReportXLSX writes the quality report as a one-row spreadsheet
// for the ops team. Same columns and values as the CSV rendition.
func WriteQualityReportXLSX(path string, r models.QualityReport, logger *zap.Logger) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	cells := reportCells(r)

	for i, name := range reportColumns {
		headerCell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, headerCell, name); err != nil {
			return fmt.Errorf("failed to set header cell: %w", err)
		}

		valueCell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return fmt.Errorf("failed to build cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, valueCell, cells[i]); err != nil {
			return fmt.Errorf("failed to set value cell: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %s: %w", apperrors.ErrWriteOutput, path, err)
	}

	logger.Info("Wrote quality report workbook", zap.String("path", path))
	return nil
}
