// Package importer reads bulk membership imports from CSV or XLSX uploads.
//
// The first row is a header naming the columns. Recognised columns are email, user_id and role,
// in any order and case; other columns are ignored. A row needs an email or a user_id.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rosterd/rosterd/internal/membership"
)

const (
	columnEmail  = "email"
	columnUserID = "user_id"
	columnRole   = "role"
)

var (
	// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("unsupported import format")
	// ErrMissingHeader is returned when the header row names neither email nor user_id.
	ErrMissingHeader = errors.New("header must contain an email or user_id column")
	// ErrEmptyFile is returned for uploads without a header row.
	ErrEmptyFile = errors.New("import file is empty")
	// ErrNoSheet is returned for workbooks without sheets.
	ErrNoSheet = errors.New("workbook has no sheets")
)

// Format is the file format of an upload.
type Format string

const (
	// FormatCSV is comma separated text.
	FormatCSV Format = "csv"
	// FormatXLSX is an Excel workbook; only the first sheet is read.
	FormatXLSX Format = "xlsx"
)

// FormatOf returns the format of a file by its extension.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Read parses an upload of the given format.
func Read(r io.Reader, format Format) ([]membership.ImportRow, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadCSV parses CSV text.
func ReadCSV(r io.Reader) ([]membership.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	return rowsFrom(records)
}

// ReadXLSX parses the first sheet of a workbook.
func ReadXLSX(r io.Reader) ([]membership.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return rowsFrom(records)
}

func rowsFrom(records [][]string) ([]membership.ImportRow, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	_, hasEmail := columns[columnEmail]
	_, hasUserID := columns[columnUserID]

	if !hasEmail && !hasUserID {
		return nil, ErrMissingHeader
	}

	rows := make([]membership.ImportRow, 0, len(records)-1)

	for i, record := range records[1:] {
		line := i + 2 //nolint:mnd // header is line 1

		row := membership.ImportRow{
			Line:  line,
			Email: cell(record, columns, columnEmail),
			Role:  cell(record, columns, columnRole),
		}

		if raw := cell(record, columns, columnUserID); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid user_id %q: %w", line, raw, err)
			}

			row.UserID = id
		}

		if row.UserID == 0 && row.Email == "" {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func cell(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}
