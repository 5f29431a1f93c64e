// Package delta diffs the before and after snapshots of a shift.
//
// A lot present before and absent after was processed during the shift; a
// lot present in both is still in progress. Lots that only appear after the
// shift started are not tracked: the model measures depletion of the starting
// backlog, not new arrivals.
package delta

import (
	"errors"
	"fmt"
	"slices"

	"github.com/midanish/PTEO-Shift-Report/pkg/classify"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
)

// Errors returned by Analyze.
var (
	// ErrIncompleteSnapshots means the before or after snapshot is absent.
	ErrIncompleteSnapshots = errors.New("both before and after shift snapshots are needed for analysis")
	// ErrMissingKeyColumn means a snapshot has no LOT NUMBER column.
	ErrMissingKeyColumn = errors.New("LOT NUMBER column not found")
)

// BucketName identifies one of the four disjoint row buckets.
type BucketName string

// Bucket names, in display order.
const (
	ProcessedRegular  BucketName = "processed_regular"
	ProcessedSplit    BucketName = "processed_split_low_yield"
	InProgressRegular BucketName = "in_progress_regular"
	InProgressSplit   BucketName = "in_progress_split_low_yield"
)

// BucketNames lists every bucket in display order.
var BucketNames = []BucketName{ProcessedRegular, ProcessedSplit, InProgressRegular, InProgressSplit}

// Title returns the human-readable bucket title.
func (b BucketName) Title() string {
	switch b {
	case ProcessedRegular:
		return "Processed Regular"
	case ProcessedSplit:
		return "Processed Split Low Yield"
	case InProgressRegular:
		return "In Progress Regular"
	case InProgressSplit:
		return "In Progress Split Low Yield"
	default:
		return string(b)
	}
}

// IsSplit reports whether the bucket holds split low-yield lots.
func (b BucketName) IsSplit() bool {
	return b == ProcessedSplit || b == InProgressSplit
}

// Bucket is a named subset of before-snapshot rows.
type Bucket struct {
	Name BucketName
	Rows []lot.Row
}

// Result is the outcome of one analysis. Row slices are taken from the
// before snapshot in its original order, duplicates included.
type Result struct {
	ProcessedKeys  []string
	InProgressKeys []string

	ProcessedRegular  []lot.Row
	ProcessedSplit    []lot.Row
	InProgressRegular []lot.Row
	InProgressSplit   []lot.Row

	// Columns is the before snapshot header, used for exports.
	Columns []string
}

// Analyze computes the shift delta between before and after.
func Analyze(before, after *lot.Snapshot, policy classify.Policy) (*Result, error) {
	if before == nil || after == nil {
		return nil, ErrIncompleteSnapshots
	}

	if !before.HasColumn(lot.ColLotNumber) {
		return nil, fmt.Errorf("%w in %s snapshot", ErrMissingKeyColumn, lot.TagBefore)
	}

	if !after.HasColumn(lot.ColLotNumber) {
		return nil, fmt.Errorf("%w in %s snapshot", ErrMissingKeyColumn, lot.TagAfter)
	}

	afterKeys := keySet(after)

	var processed, inProgress []string

	for _, key := range before.DistinctLots() {
		if _, ok := afterKeys[key]; ok {
			inProgress = append(inProgress, key)
		} else {
			processed = append(processed, key)
		}
	}

	slices.Sort(processed)
	slices.Sort(inProgress)

	result := &Result{
		ProcessedKeys:  processed,
		InProgressKeys: inProgress,
		Columns:        slices.Clone(before.Columns),
	}

	for _, row := range before.Rows {
		key, ok := row.Key()
		if !ok {
			continue
		}

		_, stillThere := afterKeys[key]
		split := policy.IsSplit(row)

		switch {
		case !stillThere && split:
			result.ProcessedSplit = append(result.ProcessedSplit, row)
		case !stillThere:
			result.ProcessedRegular = append(result.ProcessedRegular, row)
		case split:
			result.InProgressSplit = append(result.InProgressSplit, row)
		default:
			result.InProgressRegular = append(result.InProgressRegular, row)
		}
	}

	return result, nil
}

func keySet(snap *lot.Snapshot) map[string]struct{} {
	keys := snap.DistinctLots()

	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}

	return set
}

// Rows returns the rows of the named bucket.
func (r *Result) Rows(name BucketName) []lot.Row {
	switch name {
	case ProcessedRegular:
		return r.ProcessedRegular
	case ProcessedSplit:
		return r.ProcessedSplit
	case InProgressRegular:
		return r.InProgressRegular
	case InProgressSplit:
		return r.InProgressSplit
	default:
		return nil
	}
}

// Buckets returns all four buckets in display order.
func (r *Result) Buckets() []Bucket {
	out := make([]Bucket, 0, len(BucketNames))
	for _, name := range BucketNames {
		out = append(out, Bucket{Name: name, Rows: r.Rows(name)})
	}

	return out
}

// Processed returns all processed rows, regular first.
func (r *Result) Processed() []lot.Row {
	return slices.Concat(r.ProcessedRegular, r.ProcessedSplit)
}

// InProgress returns all in-progress rows, regular first.
func (r *Result) InProgress() []lot.Row {
	return slices.Concat(r.InProgressRegular, r.InProgressSplit)
}
