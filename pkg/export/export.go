// Package export serializes delta buckets as CSV files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/midanish/PTEO-Shift-Report/pkg/delta"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
)

// StampLayout formats the timestamp embedded in export file names.
const StampLayout = "20060102_150405"

// Stamp formats t for export file names.
func Stamp(t time.Time) string {
	return t.Format(StampLayout)
}

// ToFlatText renders rows as CSV: a header of column names then one line per
// row, every cell as text and missing cells empty. When columns is nil the
// union of row columns is used. An empty row set yields ("", false).
func ToFlatText(rows []lot.Row, columns []string) (string, bool) {
	if len(rows) == 0 {
		return "", false
	}

	var buf bytes.Buffer

	err := WriteFlat(&buf, rows, columns)
	if err != nil {
		return "", false
	}

	return buf.String(), true
}

// WriteFlat writes rows to out in the ToFlatText layout.
func WriteFlat(out io.Writer, rows []lot.Row, columns []string) error {
	if len(columns) == 0 {
		columns = lot.ColumnsOf(rows)
	}

	w := csv.NewWriter(out)

	err := w.Write(columns)
	if err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(columns))

	for _, row := range rows {
		for i, col := range columns {
			record[i] = row.Text(col)
		}

		err = w.Write(record)
		if err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()

	err = w.Error()
	if err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// File is one export artifact.
type File struct {
	Name string
	Rows []lot.Row
}

// Files lists the artifacts for result: processed, in-progress and processed
// split low-yield lots, then each of the four buckets on its own.
func Files(result *delta.Result, stamp string) []File {
	files := []File{
		{Name: "processed_lots_" + stamp + ".csv", Rows: result.Processed()},
		{Name: "in_progress_lots_" + stamp + ".csv", Rows: result.InProgress()},
		{Name: "split_low_yield_" + stamp + ".csv", Rows: result.ProcessedSplit},
	}

	for _, b := range result.Buckets() {
		files = append(files, File{Name: string(b.Name) + "_" + stamp + ".csv", Rows: b.Rows})
	}

	return files
}

// WriteBuckets writes the non-empty artifacts of result into dir and returns
// the paths written.
func WriteBuckets(dir string, result *delta.Result, stamp string) ([]string, error) {
	err := os.MkdirAll(dir, 0o750)
	if err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var written []string

	for _, f := range Files(result, stamp) {
		text, ok := ToFlatText(f.Rows, result.Columns)
		if !ok {
			continue
		}

		path := filepath.Join(dir, f.Name)

		err = os.WriteFile(path, []byte(text), 0o600)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", f.Name, err)
		}

		written = append(written, path)
	}

	return written, nil
}
