package terminal

import (
	"fmt"
	"strings"
)

// Progress bar characters.
const (
	ProgressFilled = "█"
	ProgressEmpty  = "░"
)

// DrawProgressBar draws a bar of the given width for a value clamped to [0, 1].
// Example: DrawProgressBar(0.7, 10) returns "███████░░░".
func DrawProgressBar(value float64, width int) string {
	if width <= 0 {
		return ""
	}

	value = min(max(value, 0), 1)

	filled := int(value * float64(width))

	return strings.Repeat(ProgressFilled, filled) + strings.Repeat(ProgressEmpty, width-filled)
}

// DrawPercentBar draws a labeled percentage bar for percent in [0, 100].
// Example: "Processing rate  ██████░░░░░░░░░░░░░░  25.0%".
func DrawPercentBar(label string, percent float64, labelWidth, barWidth int) string {
	return fmt.Sprintf("%s %s %5.1f%%", PadRight(label, labelWidth), DrawProgressBar(percent/100, barWidth), percent)
}
