// Package detape builds the daily detape monitoring records.
package detape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format of the monitoring sheet.
const DateLayout = "2006-01-02"

// MaxCount bounds the number of detapes recorded in one entry.
const MaxCount = 1000

// ErrEmptyCodes is returned when some package codes are blank.
var ErrEmptyCodes = errors.New("missing package codes")

// Missing returns the 1-based positions of blank package codes.
func Missing(codes []string) []int {
	var missing []int

	for i, code := range codes {
		if strings.TrimSpace(code) == "" {
			missing = append(missing, i+1)
		}
	}

	return missing
}

// Validate returns an ErrEmptyCodes error naming the blank positions, or nil
// when every code is filled.
func Validate(codes []string) error {
	missing := Missing(codes)
	if len(missing) == 0 {
		return nil
	}

	parts := make([]string, len(missing))
	for i, pos := range missing {
		parts[i] = strconv.Itoa(pos)
	}

	return fmt.Errorf("%w: please fill in package code(s) for detape: %s", ErrEmptyCodes, strings.Join(parts, ", "))
}

// BuildRecords returns one (date, 1, package code) row per detape.
func BuildRecords(date time.Time, codes []string) [][]string {
	day := date.Format(DateLayout)

	records := make([][]string, 0, len(codes))
	for _, code := range codes {
		records = append(records, []string{day, "1", strings.TrimSpace(code)})
	}

	return records
}
