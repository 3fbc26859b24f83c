package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"mga-chatbot/internal/domain"
)

// CellSeparator joins the cells of one table row.
const CellSeparator = " | "

// CSV renders a CSV file as a single document: one line per record with
// cells joined by CellSeparator. The header record is kept as the first line.
func CSV(_ context.Context, file domain.RawFile) ([]domain.Document, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: file.Path, Err: err}
	}

	rows, err := readCSV(decodeText(data))
	if err != nil {
		return nil, err
	}
	return single(file, JoinRows(rows)), nil
}

func readCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter picks ';' for spreadsheets exported with a comma decimal
// separator, and ',' otherwise.
func sniffDelimiter(text string) rune {
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

// XLSX renders the first worksheet of a workbook as a single document in
// the same layout as CSV.
func XLSX(_ context.Context, file domain.RawFile) ([]domain.Document, error) {
	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: file.Path, Err: err}
	}

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = wb.Close()
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	// GetRows trims trailing empty cells per row; pad to the widest row so
	// every line has the same number of separators.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row
	}

	return single(file, JoinRows(rows)), nil
}

// JoinRows joins cells with CellSeparator and rows with newlines.
// Rows whose cells are all empty are dropped.
func JoinRows(rows [][]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if isBlank(strings.Join(row, "")) {
			continue
		}
		lines = append(lines, strings.Join(row, CellSeparator))
	}
	return strings.Join(lines, "\n")
}
