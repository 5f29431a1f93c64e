package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVFile reads a sheet exported as CSV, for captures taken offline.
type CSVFile struct {
	Path string
}

// ReadRecords implements Reader.
func (f CSVFile) ReadRecords(_ context.Context) (Table, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return Table{}, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses CSV from r into a Table. Rows may have differing widths.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	grid, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("parse csv: %w", err)
	}

	return TableFromGrid(grid)
}
