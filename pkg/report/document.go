// Package report renders an analysed shift as text, JSON or YAML.
package report

import (
	"time"

	"github.com/midanish/PTEO-Shift-Report/pkg/classify"
	"github.com/midanish/PTEO-Shift-Report/pkg/delta"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/summary"
)

// Bucket is the rendered form of one delta bucket.
type Bucket struct {
	Name    delta.BucketName    `json:"name"    yaml:"name"`
	Title   string              `json:"title"   yaml:"title"`
	Stats   summary.Stats       `json:"stats"   yaml:"stats"`
	Columns []string            `json:"columns" yaml:"columns"`
	Rows    []map[string]string `json:"rows"    yaml:"rows"`
}

// Document is everything a renderer needs about one analysis.
type Document struct {
	GeneratedAt      time.Time     `json:"generated_at"       yaml:"generated_at"`
	BeforeCapturedAt time.Time     `json:"before_captured_at" yaml:"before_captured_at"`
	AfterCapturedAt  time.Time     `json:"after_captured_at"  yaml:"after_captured_at"`
	TotalRows        int           `json:"total_rows"         yaml:"total_rows"`
	ProcessingRate   float64       `json:"processing_rate"    yaml:"processing_rate"`
	Summary          summary.Table `json:"summary"            yaml:"summary"`
	ProcessedKeys    []string      `json:"processed_keys"     yaml:"processed_keys"`
	InProgressKeys   []string      `json:"in_progress_keys"   yaml:"in_progress_keys"`
	Buckets          []Bucket      `json:"buckets"            yaml:"buckets"`
}

// Build assembles the document. Regular buckets are ordered by OTD priority
// and every bucket is projected to the display columns.
func Build(before, after *lot.Snapshot, result *delta.Result, policy classify.Policy, now time.Time) Document {
	doc := Document{
		GeneratedAt:    now,
		TotalRows:      before.Len(),
		ProcessingRate: summary.Rate(len(result.ProcessedKeys), len(before.DistinctLots())),
		Summary:        summary.Summarize(before, result),
		ProcessedKeys:  result.ProcessedKeys,
		InProgressKeys: result.InProgressKeys,
	}

	if before != nil {
		doc.BeforeCapturedAt = before.CapturedAt
	}

	if after != nil {
		doc.AfterCapturedAt = after.CapturedAt
	}

	for _, b := range result.Buckets() {
		rows := b.Rows
		if !b.Name.IsSplit() {
			rows = policy.Priority.SortRows(rows, lot.ColOTDStatus)
		}

		projected, columns := lot.Project(rows, lot.DisplayColumns)

		doc.Buckets = append(doc.Buckets, Bucket{
			Name:    b.Name,
			Title:   b.Name.Title(),
			Stats:   summary.BucketStats(b.Rows),
			Columns: columns,
			Rows:    flatten(projected, columns),
		})
	}

	return doc
}

func flatten(rows []lot.Row, columns []string) []map[string]string {
	out := make([]map[string]string, 0, len(rows))

	for _, row := range rows {
		m := make(map[string]string, len(columns))
		for _, col := range columns {
			m[col] = row.Text(col)
		}

		out = append(out, m)
	}

	return out
}

// Figures converts the document into the gauges of the metrics textfile.
func (d Document) Figures() observability.ShiftFigures {
	figures := observability.ShiftFigures{
		LotsBefore:     d.TotalRows,
		ProcessingRate: d.ProcessingRate,
	}

	for _, b := range d.Buckets {
		figures.Buckets = append(figures.Buckets, observability.BucketFigure{
			Name: string(b.Name),
			Rows: b.Stats.Count,
			Qty:  b.Stats.QtyTotal,
		})
	}

	return figures
}
