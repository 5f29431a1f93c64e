package lot

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Tag names one of the two snapshots of a shift.
type Tag string

// Snapshot tags.
const (
	TagBefore Tag = "before"
	TagAfter  Tag = "after"
)

// ErrUnknownTag is returned for tags other than before and after.
var ErrUnknownTag = errors.New("unknown snapshot tag")

// ParseTag validates a snapshot tag.
func ParseTag(s string) (Tag, error) {
	switch Tag(s) {
	case TagBefore, TagAfter:
		return Tag(s), nil
	default:
		return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownTag, s, TagBefore, TagAfter)
	}
}

// Snapshot is an ordered read of the tracking sheet taken at one instant.
// Lot numbers need not be unique across rows.
type Snapshot struct {
	ID         string    `json:"id"`
	Tag        Tag       `json:"tag"`
	CapturedAt time.Time `json:"captured_at"`
	Columns    []string  `json:"columns"`
	Rows       []Row     `json:"rows"`
}

// NewSnapshot creates a snapshot with a fresh ID.
func NewSnapshot(tag Tag, columns []string, rows []Row) *Snapshot {
	return &Snapshot{
		ID:         uuid.NewString(),
		Tag:        tag,
		CapturedAt: time.Now().UTC(),
		Columns:    columns,
		Rows:       rows,
	}
}

// FromRecords builds a snapshot from a header and raw records.
// Columns of the header missing from a record become null cells.
func FromRecords(tag Tag, header []string, records []map[string]string) *Snapshot {
	rows := make([]Row, 0, len(records))

	for _, rec := range records {
		row := make(Row, len(header))

		for _, col := range header {
			value, ok := rec[col]
			if !ok || value == "" {
				row[col] = Null()

				continue
			}

			row[col] = Text(value)
		}

		rows = append(rows, row)
	}

	return NewSnapshot(tag, slices.Clone(header), rows)
}

// HasColumn reports whether the snapshot carries col. Snapshots without a
// declared header fall back to scanning rows.
func (s *Snapshot) HasColumn(col string) bool {
	if s == nil {
		return false
	}

	if len(s.Columns) > 0 {
		return slices.Contains(s.Columns, col)
	}

	for _, row := range s.Rows {
		if row.Has(col) {
			return true
		}
	}

	return false
}

// Len returns the number of rows.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}

	return len(s.Rows)
}

// DistinctLots returns distinct non-empty lot numbers in first-seen order.
func (s *Snapshot) DistinctLots() []string {
	if s == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(s.Rows))
	keys := make([]string, 0, len(s.Rows))

	for _, row := range s.Rows {
		key, ok := row.Key()
		if !ok {
			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	return keys
}

// LotCount is the number of distinct lots when the key column exists,
// otherwise the row count.
func (s *Snapshot) LotCount() int {
	if !s.HasColumn(ColLotNumber) {
		return s.Len()
	}

	return len(s.DistinctLots())
}

// WithRows returns a copy of the snapshot metadata holding rows.
func (s *Snapshot) WithRows(rows []Row) *Snapshot {
	return &Snapshot{
		ID:         s.ID,
		Tag:        s.Tag,
		CapturedAt: s.CapturedAt,
		Columns:    slices.Clone(s.Columns),
		Rows:       rows,
	}
}

// Project keeps only the listed columns that exist in rows. When none of
// them exist the rows are returned unchanged.
func Project(rows []Row, columns []string) ([]Row, []string) {
	present := make([]string, 0, len(columns))

	for _, col := range columns {
		for _, row := range rows {
			if row.Has(col) {
				present = append(present, col)

				break
			}
		}
	}

	if len(present) == 0 {
		return rows, ColumnsOf(rows)
	}

	out := make([]Row, len(rows))

	for i, row := range rows {
		projected := make(Row, len(present))

		for _, col := range present {
			if cell, ok := row.Get(col); ok {
				projected[col] = cell
			}
		}

		out[i] = projected
	}

	return out, present
}

// ColumnsOf returns the union of row columns in first-seen order, with map
// keys of each row visited in sorted order for stable output.
func ColumnsOf(rows []Row) []string {
	seen := make(map[string]struct{})

	var cols []string

	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}

		slices.Sort(keys)

		for _, k := range keys {
			if _, ok := seen[k]; ok {
				continue
			}

			seen[k] = struct{}{}
			cols = append(cols, k)
		}
	}

	return cols
}
