// Package filter reduces a raw sheet snapshot to its critical rows.
package filter

import (
	"github.com/midanish/PTEO-Shift-Report/pkg/classify"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
)

// operationColumns are checked in order for sheet summary markers.
var operationColumns = []string{lot.ColOperationMx, lot.ColOperation}

// Stats describes one filter pass for capture messages.
type Stats struct {
	TotalLots    int
	CriticalLots int
}

// Critical returns the rows of snap that are overdue-class by OTD STATUS or
// split low-yield by CATEGORY, after dropping sheet summary rows.
//
// When the snapshot carries neither OTD STATUS nor CATEGORY the rows cannot be
// classified and are all kept. The input is never modified.
func Critical(snap *lot.Snapshot, policy classify.Policy) *lot.Snapshot {
	if snap == nil {
		return nil
	}

	rows := dropSummaryRows(snap, policy)

	hasOTD := snap.HasColumn(lot.ColOTDStatus)
	hasCategory := snap.HasColumn(lot.ColCategory)

	if !hasOTD && !hasCategory {
		return snap.WithRows(rows)
	}

	kept := make([]lot.Row, 0, len(rows))

	for _, row := range rows {
		if isCritical(row, policy, hasOTD, hasCategory) {
			kept = append(kept, row)
		}
	}

	return snap.WithRows(kept)
}

// CriticalWithStats runs Critical and reports lot counts before and after.
func CriticalWithStats(snap *lot.Snapshot, policy classify.Policy) (*lot.Snapshot, Stats) {
	filtered := Critical(snap, policy)

	return filtered, Stats{
		TotalLots:    snap.LotCount(),
		CriticalLots: filtered.LotCount(),
	}
}

func isCritical(row lot.Row, policy classify.Policy, hasOTD, hasCategory bool) bool {
	if hasOTD && policy.IsCriticalStatus(row) {
		return true
	}

	return hasCategory && policy.IsSplit(row)
}

func dropSummaryRows(snap *lot.Snapshot, policy classify.Policy) []lot.Row {
	col, ok := operationColumn(snap)
	if !ok || len(policy.SummaryRow) == 0 {
		return snap.Rows
	}

	out := make([]lot.Row, 0, len(snap.Rows))

	for _, row := range snap.Rows {
		if policy.SummaryRow.Any(row.Text(col)) {
			continue
		}

		out = append(out, row)
	}

	return out
}

func operationColumn(snap *lot.Snapshot) (string, bool) {
	for _, col := range operationColumns {
		if snap.HasColumn(col) {
			return col, true
		}
	}

	return "", false
}
