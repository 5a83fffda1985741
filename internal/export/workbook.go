package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/frsc-ops/edashboard/internal/types"
)

// WorkbookSheet is the name of the single sheet of workbook exports.
const WorkbookSheet = "Reports"

// Workbook renders the same rows as CSV into an XLSX workbook, preceded by a
// bold header row of column labels.
func Workbook(reports []types.Report, columns types.ExportColumns, offences OffenceCodes) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	if err := wb.SetSheetName("Sheet1", WorkbookSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	fields := columns.Selected()
	header := make([]interface{}, len(fields))
	for i, f := range fields {
		header[i] = f.Label()
	}
	if err := wb.SetSheetRow(WorkbookSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	if len(fields) > 0 {
		bold, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return nil, fmt.Errorf("failed to create header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(fields), 1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetCellStyle(WorkbookSheet, "A1", last, bold); err != nil {
			return nil, fmt.Errorf("failed to style header row: %w", err)
		}
	}

	for i, row := range Rows(reports, columns, offences) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := wb.SetSheetRow(WorkbookSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
