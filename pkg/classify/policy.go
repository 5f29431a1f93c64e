package classify

import (
	"slices"

	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
)

// Default labels of the lot tracking sheet.
var (
	DefaultCriticalLabels = []string{"NEAR DUE", "EXPEDITE OVERDUE", "OVERDUE"}
	DefaultSplitMarkers   = []string{"ENGR-SPLIT LOW YIELD"}
	DefaultSummaryMarkers = []string{"Total", "No filters applied"}
)

// DefaultPriorityRules orders OTD severities for display: plain overdue,
// then expedite overdue, then near due.
func DefaultPriorityRules() []Rule {
	return []Rule{
		{Label: "5 OVERDUE", Pattern: "OVERDUE", Exclude: []string{"EXPEDITE"}},
		{Label: "4 EXPEDITE OVERDUE", Pattern: "EXPEDITE"},
		{Label: "3 NEAR DUE", Pattern: "NEAR DUE"},
	}
}

// Policy bundles the classifications used by filtering, analysis and display.
type Policy struct {
	// Critical matches overdue-class OTD STATUS values.
	Critical Matcher
	// SplitLowYield matches CATEGORY values of split low-yield lots.
	SplitLowYield Matcher
	// SummaryRow matches Operation values of sheet-level summary rows.
	SummaryRow Matcher
	// Priority ranks OTD STATUS values for display ordering.
	Priority Priority
}

// DefaultPolicy returns the policy matching the production sheet labels.
func DefaultPolicy() Policy {
	return Policy{
		Critical:      NewMatcher(DefaultCriticalLabels...),
		SplitLowYield: NewMatcher(DefaultSplitMarkers...),
		SummaryRow:    NewMatcher(DefaultSummaryMarkers...),
		Priority:      Priority{Rules: DefaultPriorityRules()},
	}
}

// IsSplit reports whether the row's CATEGORY marks a split low-yield lot.
// Rows without the column or with an empty category are regular.
func (p Policy) IsSplit(row lot.Row) bool {
	return p.SplitLowYield.Any(row.Text(lot.ColCategory))
}

// IsCriticalStatus reports whether the row's OTD STATUS is overdue-class.
func (p Policy) IsCriticalStatus(row lot.Row) bool {
	return p.Critical.Any(row.Text(lot.ColOTDStatus))
}

// Priority ranks OTD status text by the first matching rule.
type Priority struct {
	Rules []Rule
}

// Rank returns the 1-based index of the first matching rule, or
// len(Rules)+1 when nothing matches.
func (p Priority) Rank(status string) int {
	for i, r := range p.Rules {
		if r.Matches(status) {
			return i + 1
		}
	}

	return len(p.Rules) + 1
}

// SortRows returns a copy of rows stably ordered by the rank of column.
// Rows keep their order when no row carries the column.
func (p Priority) SortRows(rows []lot.Row, column string) []lot.Row {
	out := slices.Clone(rows)

	hasColumn := slices.ContainsFunc(out, func(r lot.Row) bool { return r.Has(column) })
	if !hasColumn {
		return out
	}

	slices.SortStableFunc(out, func(a, b lot.Row) int {
		return p.Rank(a.Text(column)) - p.Rank(b.Text(column))
	})

	return out
}
