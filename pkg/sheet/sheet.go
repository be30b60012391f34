// Package sheet extracts tabular data from uploaded spreadsheet files.
// Uploads arrive with a header row in an unknown position and columns in an
// unknown order, so rows are located by keyword match rather than by index.
package sheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// HeaderKeywords are the cell values that identify a header row. The data
// rows start immediately after the first row containing any of these.
// "patient initals" appears misspelled in files produced by some vendor
// systems and is accepted alongside the correct spelling.
var HeaderKeywords = []string{
	"patient id",
	"patient number",
	"k number",
	"patient name",
	"patient initials",
	"patient initals",
}

// ExtractRows reads the first sheet of an xlsx file into a 2-D string array
func ExtractRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return rows, nil
}

// FindHeaderRow scans rows from the top for the first row whose lower-cased
// cells contain a recognized header keyword. It returns the header row index
// and false when no header row exists.
func FindHeaderRow(rows [][]string) (int, bool) {
	for i, row := range rows {
		for _, cell := range row {
			lower := strings.ToLower(strings.TrimSpace(cell))
			for _, kw := range HeaderKeywords {
				if strings.Contains(lower, kw) {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// ColumnIndex resolves the position of a column by case-insensitive keyword
// match against the header row. It returns -1 when no cell matches.
func ColumnIndex(header []string, keywords ...string) int {
	for i, cell := range header {
		lower := strings.ToLower(strings.TrimSpace(cell))
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return i
			}
		}
	}
	return -1
}

// Cell returns the trimmed cell at idx, tolerating ragged rows and
// unresolved columns
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// DecodeMoney decodes a currency cell. The second return is false when the
// cell does not parse as a number; callers default the amount to zero in
// that case rather than skipping the row.
func DecodeMoney(cell string) (float64, bool) {
	cleaned := strings.TrimSpace(cell)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	if d.IsNegative() {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// DecodeQuantity decodes a numeric quantity cell, e.g. grams. Same
// default-to-zero policy as DecodeMoney, but negative values are rejected
// outright.
func DecodeQuantity(cell string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	if cleaned == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return 0, false
	}
	return d.InexactFloat64(), true
}
