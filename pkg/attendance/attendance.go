// Package attendance validates and records pre-shift team attendance.
package attendance

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Defaults of the team roster.
const (
	DefaultTeamSize = 3
	DateLayout      = "2006-01-02"

	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// DefaultShifts is the fixed shift enumeration.
var DefaultShifts = []string{"Shift A", "Shift B", "Shift C"}

var (
	nameColumns  = []string{"Name", "name", "Member Name", "member_name"}
	shiftColumns = []string{"Shift", "shift", "SHIFT"}
)

// Selection errors. Each is reported to the user with a correction message.
var (
	ErrEmptySelection = errors.New("no members entered")
	ErrTooFew         = errors.New("too few members selected")
	ErrTooMany        = errors.New("too many members selected")
	ErrInvalidIndex   = errors.New("invalid member number")
	ErrDuplicate      = errors.New("member selected twice")
	ErrInvalidInput   = errors.New("invalid selection input")
)

// SelectionError carries the shortfall or excess for count errors.
type SelectionError struct {
	Err error
	N   int
}

func (e *SelectionError) Error() string {
	switch {
	case errors.Is(e.Err, ErrEmptySelection):
		return fmt.Sprintf("You must enter %d member(s)", e.N)
	case errors.Is(e.Err, ErrTooFew):
		return fmt.Sprintf("Too few members selected. You need %d more.", e.N)
	case errors.Is(e.Err, ErrTooMany):
		return fmt.Sprintf("Too many members selected. Remove %d member(s).", e.N)
	case errors.Is(e.Err, ErrInvalidIndex):
		return "Invalid member number. Please try again."
	case errors.Is(e.Err, ErrDuplicate):
		return "Each member can only be selected once. Please try again."
	default:
		return "Invalid input. Please enter numbers separated by commas (e.g., 1,3)"
	}
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

// NormalizeShift reduces "Shift A" and "A" to "A".
func NormalizeShift(shift string) string {
	return strings.TrimSpace(strings.Replace(shift, "Shift ", "", 1))
}

func firstValue(rec map[string]string, columns []string) string {
	for _, col := range columns {
		if v := strings.TrimSpace(rec[col]); v != "" {
			return v
		}
	}

	return ""
}

// MembersForShift returns the roster names working shift. Members without
// a shift, or assigned to ALL, work every shift.
func MembersForShift(records []map[string]string, shift string) []string {
	want := NormalizeShift(shift)

	var members []string

	for _, rec := range records {
		name := firstValue(rec, nameColumns)
		if name == "" {
			continue
		}

		assigned := NormalizeShift(firstValue(rec, shiftColumns))

		if assigned == "" || strings.EqualFold(assigned, "ALL") || strings.EqualFold(assigned, want) {
			members = append(members, name)
		}
	}

	return members
}

// ParseSelection parses a comma-separated list of 1-based member numbers.
func ParseSelection(input string) ([]int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptySelection
	}

	parts := strings.Split(input, ",")
	indices := make([]int, 0, len(parts))

	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, ErrInvalidInput
		}

		indices = append(indices, n)
	}

	return indices, nil
}

// ValidateAbsentees checks a 1-based selection against the roster size and
// the exact number of absentees expected. Count is checked before range.
func ValidateAbsentees(indices []int, rosterLen, expected int) error {
	switch {
	case len(indices) < expected:
		return &SelectionError{Err: ErrTooFew, N: expected - len(indices)}
	case len(indices) > expected:
		return &SelectionError{Err: ErrTooMany, N: len(indices) - expected}
	}

	seen := make(map[int]struct{}, len(indices))

	for _, i := range indices {
		if i < 1 || i > rosterLen {
			return &SelectionError{Err: ErrInvalidIndex}
		}

		if _, dup := seen[i]; dup {
			return &SelectionError{Err: ErrDuplicate}
		}

		seen[i] = struct{}{}
	}

	return nil
}

// SelectAbsentees parses and validates input, returning the chosen names.
func SelectAbsentees(input string, roster []string, expected int) ([]string, error) {
	indices, err := ParseSelection(input)
	if err != nil {
		return nil, &SelectionError{Err: err, N: expected}
	}

	err = ValidateAbsentees(indices, len(roster), expected)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(indices))
	for _, i := range indices {
		names = append(names, roster[i-1])
	}

	return names, nil
}

// PresentMembers is the roster minus the absentees. With no roster the
// present members are synthesized as "Team Member N".
func PresentMembers(roster, absent []string, presentCount int) []string {
	if len(roster) == 0 {
		out := make([]string, 0, presentCount)
		for i := 1; i <= presentCount; i++ {
			out = append(out, fmt.Sprintf("Team Member %d", i))
		}

		return out
	}

	out := make([]string, 0, len(roster))

	for _, m := range roster {
		if !slices.Contains(absent, m) {
			out = append(out, m)
		}
	}

	return out
}

// Entry is one confirmed attendance submission.
type Entry struct {
	Date    time.Time
	Shift   string
	Present []string
	Absent  []string
}

// BuildRecords returns one (date, member, shift, status) row per distinct
// member, present members first. A member listed in both is present.
func BuildRecords(e Entry) [][]string {
	date := e.Date.Format(DateLayout)
	seen := make(map[string]struct{}, len(e.Present)+len(e.Absent))

	var records [][]string

	add := func(member, status string) {
		if _, dup := seen[member]; dup {
			return
		}

		seen[member] = struct{}{}
		records = append(records, []string{date, member, e.Shift, status})
	}

	for _, m := range e.Present {
		add(m, StatusPresent)
	}

	for _, m := range e.Absent {
		add(m, StatusAbsent)
	}

	return records
}
