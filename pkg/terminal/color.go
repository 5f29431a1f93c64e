package terminal

import "github.com/fatih/color"

// Palette of status colours.
var (
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Red    = color.New(color.FgRed)
	Cyan   = color.New(color.FgCyan, color.Bold)
	Gray   = color.New(color.FgHiBlack)
	Bold   = color.New(color.Bold)
)

// Rate thresholds, in percent, for ColorForRate.
const (
	RateGood = 75.0
	RateFair = 40.0
)

// Colorize applies c to text unless colour is disabled in the config.
// When enabled, fatih/color still drops codes for non-terminal output.
func (cfg Config) Colorize(c *color.Color, text string) string {
	if cfg.NoColor || c == nil {
		return text
	}

	return c.Sprint(text)
}

// ColorForRate picks green, yellow or red for a processing rate in percent.
func ColorForRate(percent float64) *color.Color {
	switch {
	case percent >= RateGood:
		return Green
	case percent >= RateFair:
		return Yellow
	default:
		return Red
	}
}
