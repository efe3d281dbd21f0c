// Package export converts sheet artifacts (stored as CSV) into downloadable
// spreadsheet workbooks.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of the generated workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CSVToXLSX builds a single-sheet workbook from raw CSV content. Ragged rows
// are accepted; empty input yields a workbook with an empty sheet.
func CSVToXLSX(content, sheetName string) ([]byte, error) {
	if sheetName == "" {
		sheetName = "Sheet1"
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv content: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	for rowIdx, record := range records {
		for colIdx, value := range record {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
