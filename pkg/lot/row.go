// Package lot defines the loosely-typed row model of the lot tracking sheet.
//
// A sheet row is a mapping of column name to cell. Columns may be missing from
// a row entirely, and cells may be present but empty. Accessors never panic and
// every typed coercion returns an explicit ok flag instead of failing.
package lot

import (
	"math"
	"strconv"
	"strings"
)

// Column names used by the lot tracking sheet.
const (
	ColLotNumber   = "LOT NUMBER"
	ColOperation   = "OPERATION"
	ColOperationMx = "Operation"
	ColStepName    = "STEP NAME"
	ColPkgCode     = "PKG_CODE"
	ColPkgDesc     = "PCKG DESC"
	ColDeviceName  = "DEVC NAME"
	ColDeviceNum   = "DEVC NUMBER"
	ColOwner       = "OWNER"
	ColPlannedQty  = "PQQTY"
	ColQty         = "QTY"
	ColOTDStatus   = "OTD STATUS"
	ColCategory    = "CATEGORY"
	ColComments    = "COMMENTS"
)

// DisplayColumns is the column order used by detail tables.
var DisplayColumns = []string{
	ColOperation, ColStepName, ColPkgCode, ColPkgDesc,
	ColDeviceName, ColDeviceNum, ColLotNumber, ColOwner,
	ColPlannedQty, ColQty, ColOTDStatus, ColComments,
}

// Cell is a single sheet value. The zero Cell is null.
type Cell struct {
	Value string `json:"value"`
	Valid bool   `json:"valid"`
}

// Text returns a non-null cell holding s.
func Text(s string) Cell {
	return Cell{Value: s, Valid: true}
}

// Null returns a null cell.
func Null() Cell {
	return Cell{}
}

// IsNull reports whether the cell is null or holds only whitespace.
func (c Cell) IsNull() bool {
	return !c.Valid || strings.TrimSpace(c.Value) == ""
}

// String returns the cell text, or "" when null.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}

	return c.Value
}

// Float coerces the cell to a number. Null, non-numeric and non-finite cells
// report ok=false.
func (c Cell) Float() (float64, bool) {
	if c.IsNull() {
		return 0, false
	}

	raw := strings.ReplaceAll(strings.TrimSpace(c.Value), ",", "")

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}

	return value, true
}

// Row is one sheet record keyed by column name.
type Row map[string]Cell

// Get returns the cell for col and whether the column is present in the row.
func (r Row) Get(col string) (Cell, bool) {
	cell, ok := r[col]

	return cell, ok
}

// Has reports whether the row carries col, null or not.
func (r Row) Has(col string) bool {
	_, ok := r[col]

	return ok
}

// Text returns the text of col, or "" when the column is absent or null.
func (r Row) Text(col string) string {
	return r[col].String()
}

// Key returns the trimmed lot number and whether it is usable as a set key.
func (r Row) Key() (string, bool) {
	cell, ok := r[ColLotNumber]
	if !ok || cell.IsNull() {
		return "", false
	}

	return strings.TrimSpace(cell.Value), true
}

// RowFromStrings builds a row from plain values; empty strings become null cells.
func RowFromStrings(values map[string]string) Row {
	row := make(Row, len(values))

	for col, value := range values {
		if value == "" {
			row[col] = Null()

			continue
		}

		row[col] = Text(value)
	}

	return row
}
