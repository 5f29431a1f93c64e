// Package sheets reads and appends spreadsheet rows.
//
// Three backends share the Reader and Appender contracts: Google Sheets for
// the live tracking and roster sheets, CSV files for offline captures, and a
// SQLite ledger for attendance and detape records kept on the workstation.
package sheets

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors.
var (
	// ErrInvalidSheetURL is returned when no spreadsheet id can be extracted.
	ErrInvalidSheetURL = errors.New("invalid spreadsheet URL")
	// ErrNoWorksheet is returned when a spreadsheet has no usable worksheet.
	ErrNoWorksheet = errors.New("no worksheet found")
	// ErrEmptyHeader is returned when the first row holds no column names.
	ErrEmptyHeader = errors.New("sheet header row is empty")
)

// Table is a header plus one record per data row, keyed by header name.
type Table struct {
	Header  []string
	Records []map[string]string
}

// Len returns the number of records.
func (t Table) Len() int {
	return len(t.Records)
}

// Reader reads every record of a sheet.
type Reader interface {
	ReadRecords(ctx context.Context) (Table, error)
}

// Appender appends rows to a sheet. Either every row is appended or none.
type Appender interface {
	AppendRows(ctx context.Context, rows [][]string) error
}

// TableFromGrid builds a Table from a raw cell grid. The first row is the
// header; short rows are padded with empty strings and rows whose cells are
// all blank are dropped. Header cells are trimmed; blank header cells are
// ignored along with their column.
func TableFromGrid(grid [][]string) (Table, error) {
	if len(grid) == 0 {
		return Table{}, nil
	}

	header := make([]string, 0, len(grid[0]))
	index := make([]int, 0, len(grid[0]))

	for i, name := range grid[0] {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == "" {
			continue
		}

		header = append(header, name)
		index = append(index, i)
	}

	if len(header) == 0 {
		return Table{}, ErrEmptyHeader
	}

	records := make([]map[string]string, 0, len(grid)-1)

	for _, row := range grid[1:] {
		if blankRow(row) {
			continue
		}

		rec := make(map[string]string, len(header))

		for j, name := range header {
			col := index[j]
			if col < len(row) {
				rec[name] = row[col]
			} else {
				rec[name] = ""
			}
		}

		records = append(records, rec)
	}

	return Table{Header: header, Records: records}, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// Worksheet selects a worksheet by title. The first existing title among
// Preferred and Fallbacks wins; when none exists the first worksheet is used.
type Worksheet struct {
	Preferred string
	Fallbacks []string
}

// Resolve picks a title from the available worksheet titles.
func (w Worksheet) Resolve(titles []string) (string, error) {
	if len(titles) == 0 {
		return "", ErrNoWorksheet
	}

	candidates := append([]string{w.Preferred}, w.Fallbacks...)

	for _, want := range candidates {
		if want == "" {
			continue
		}

		for _, have := range titles {
			if have == want {
				return have, nil
			}
		}
	}

	return titles[0], nil
}

// Well-known worksheet layouts of the team spreadsheets.
var (
	MembersWorksheet = Worksheet{
		Preferred: "PTEO Members",
		Fallbacks: []string{"PTEOMembers", "PTEO_Members", "Members", "Sheet1"},
	}
	AttendanceWorksheet = Worksheet{
		Preferred: "Attendance Record",
		Fallbacks: []string{"AttendanceRecord", "Attendance", "Sheet1"},
	}
	DetapeWorksheet = Worksheet{
		Preferred: "Detape Monitoring",
		Fallbacks: []string{"DetapeMonitoring", "Detape", "Sheet1"},
	}
	// LotsWorksheet always reads the first worksheet.
	LotsWorksheet = Worksheet{}
)
