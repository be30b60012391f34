package sheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		for j, cell := range row {
			cellName, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellName, cell))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestExtractRows_FirstSheet(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", 150.25},
	})

	rows, err := ExtractRows(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Patient ID", rows[0][0])
	assert.Equal(t, "K1001", rows[1][0])
}

func TestExtractRows_InvalidFile(t *testing.T) {
	_, err := ExtractRows(bytes.NewBufferString("not a spreadsheet"))
	assert.Error(t, err)
}

func TestFindHeaderRow_SkipsPreamble(t *testing.T) {
	rows := [][]string{
		{"Monthly Vendor Report"},
		{"Generated 2024-11-02"},
		{},
		{"Patient ID", "Patient Name", "Amount"},
		{"K1001", "Jane Doe", "150.25"},
	}

	idx, ok := FindHeaderRow(rows)
	require.True(t, ok)
	assert.Equal(t, 3, idx)
}

func TestFindHeaderRow_ToleratesMisspelledInitials(t *testing.T) {
	rows := [][]string{
		{"Patient Initals", "Amount"},
	}

	idx, ok := FindHeaderRow(rows)
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestFindHeaderRow_Missing(t *testing.T) {
	rows := [][]string{
		{"some", "unrelated", "cells"},
		{"1", "2", "3"},
	}

	_, ok := FindHeaderRow(rows)
	assert.False(t, ok)
}

func TestColumnIndex_CaseInsensitiveAndReordered(t *testing.T) {
	header := []string{"Total Amount ($)", "PATIENT NAME", "Patient ID"}

	assert.Equal(t, 2, ColumnIndex(header, "patient id"))
	assert.Equal(t, 1, ColumnIndex(header, "patient name"))
	assert.Equal(t, 0, ColumnIndex(header, "amount"))
	assert.Equal(t, -1, ColumnIndex(header, "quantity"))
}

func TestCell_RaggedRows(t *testing.T) {
	row := []string{"K1001", " Jane Doe "}

	assert.Equal(t, "Jane Doe", Cell(row, 1))
	assert.Equal(t, "", Cell(row, 5))
	assert.Equal(t, "", Cell(row, -1))
}

func TestDecodeMoney(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want float64
		ok   bool
	}{
		{"plain", "150.25", 150.25, true},
		{"currency symbol", "$1,250.00", 1250, true},
		{"empty", "", 0, false},
		{"garbage", "n/a", 0, false},
		{"negative rejected", "-5.00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeMoney(tt.cell)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeQuantity(t *testing.T) {
	got, ok := DecodeQuantity("14.5")
	assert.True(t, ok)
	assert.Equal(t, 14.5, got)

	_, ok = DecodeQuantity("unknown")
	assert.False(t, ok)
}
