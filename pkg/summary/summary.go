// Package summary projects a shift delta into the fixed summary table and
// per-bucket figures shown to the shift lead.
package summary

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/midanish/PTEO-Shift-Report/pkg/delta"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
	"github.com/midanish/PTEO-Shift-Report/pkg/metrics"
)

// Metric labels of the summary table, in display order.
const (
	MetricTotalLots         = "Total Lots (Start of Shift)"
	MetricProcessedRegular  = "Processed Regular Lots"
	MetricProcessedSplit    = "Processed Split Low Yield Lots"
	MetricInProgressRegular = "In Progress Regular Lots"
	MetricInProgressSplit   = "In Progress Split Low Yield Lots"
	MetricProcessingRate    = "Processing Rate (%)"
)

// Input is what every summary metric is computed from.
type Input struct {
	Before *lot.Snapshot
	Result *delta.Result
}

// Line is one row of the summary table.
type Line struct {
	Metric string `json:"metric" yaml:"metric"`
	Value  string `json:"value"  yaml:"value"`
}

// Table is the ordered summary.
type Table []Line

// Value looks up a metric by label.
func (t Table) Value(metric string) (string, bool) {
	for _, l := range t {
		if l.Metric == metric {
			return l.Value, true
		}
	}

	return "", false
}

func bucketCount(name, label string, bucket delta.BucketName) metrics.Metric[Input, string] {
	return metrics.Func[Input, string]{
		MetricMeta: metrics.MetricMeta{
			MetricName:        name,
			MetricDisplayName: label,
			MetricDescription: "Rows of the before snapshot in the " + bucket.Title() + " bucket.",
			MetricType:        metrics.TypeCount,
		},
		Fn: func(in Input) string {
			if in.Result == nil {
				return "0"
			}

			return fmt.Sprint(len(in.Result.Rows(bucket)))
		},
	}
}

// NewRegistry returns the summary metrics in display order.
func NewRegistry() *metrics.Registry[Input, string] {
	r := metrics.NewRegistry[Input, string]()

	r.Register(metrics.Func[Input, string]{
		MetricMeta: metrics.MetricMeta{
			MetricName:        "total_lots",
			MetricDisplayName: MetricTotalLots,
			MetricDescription: "Rows in the before snapshot after critical filtering, duplicates included.",
			MetricType:        metrics.TypeCount,
		},
		Fn: func(in Input) string { return fmt.Sprint(in.Before.Len()) },
	})
	r.Register(bucketCount("processed_regular", MetricProcessedRegular, delta.ProcessedRegular))
	r.Register(bucketCount("processed_split_low_yield", MetricProcessedSplit, delta.ProcessedSplit))
	r.Register(bucketCount("in_progress_regular", MetricInProgressRegular, delta.InProgressRegular))
	r.Register(bucketCount("in_progress_split_low_yield", MetricInProgressSplit, delta.InProgressSplit))
	r.Register(metrics.Func[Input, string]{
		MetricMeta: metrics.MetricMeta{
			MetricName:        "processing_rate",
			MetricDisplayName: MetricProcessingRate,
			MetricDescription: "Processed lots over distinct lots at the start of the shift, in percent.",
			MetricType:        metrics.TypeRatio,
		},
		Fn: func(in Input) string {
			processed := 0
			if in.Result != nil {
				processed = len(in.Result.ProcessedKeys)
			}

			return ProcessingRate(processed, len(in.Before.DistinctLots()))
		},
	})

	return r
}

// Summarize builds the summary table for one analysis.
func Summarize(before *lot.Snapshot, result *delta.Result) Table {
	results := NewRegistry().ComputeAll(Input{Before: before, Result: result})

	table := make(Table, 0, len(results))
	for _, r := range results {
		table = append(table, Line{Metric: r.DisplayName, Value: r.Value})
	}

	return table
}

// Rate returns processed/total as a percentage, or 0 when total is 0.
func Rate(processed, total int) float64 {
	if total <= 0 {
		return 0
	}

	return float64(processed) / float64(total) * 100
}

// ProcessingRate formats Rate with one decimal, or "0%" when total is 0.
func ProcessingRate(processed, total int) string {
	if total <= 0 {
		return "0%"
	}

	return fmt.Sprintf("%.1f%%", Rate(processed, total))
}

// SafeSumQty sums the numeric QTY values of rows. Null and non-numeric
// values are left out of the sum.
func SafeSumQty(rows []lot.Row) float64 {
	var total float64

	for _, row := range rows {
		cell, ok := row.Get(lot.ColQty)
		if !ok {
			continue
		}

		if v, ok := cell.Float(); ok {
			total += v
		}
	}

	return total
}

// Stats are the headline figures of one bucket.
type Stats struct {
	Count    int     `json:"count"     yaml:"count"`
	QtyTotal float64 `json:"qty_total" yaml:"qty_total"`
}

// BucketStats counts rows and sums their QTY.
func BucketStats(rows []lot.Row) Stats {
	return Stats{Count: len(rows), QtyTotal: SafeSumQty(rows)}
}

// QtyText renders the QTY total rounded, with thousands separators.
func (s Stats) QtyText() string {
	return humanize.Comma(int64(math.Round(s.QtyTotal)))
}
