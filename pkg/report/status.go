package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/midanish/PTEO-Shift-Report/pkg/store"
	"github.com/midanish/PTEO-Shift-Report/pkg/terminal"
)

// RenderStatus writes the capture and analysis state of the session.
func RenderStatus(w io.Writer, st store.Status, now time.Time, cfg terminal.Config) error {
	lines := []string{
		captureLine("Before shift:", st.BeforeCaptured, st.BeforeLots, st.BeforeTotal, st.BeforeAt, now, cfg),
		captureLine("After shift: ", st.AfterCaptured, st.AfterLots, st.AfterTotal, st.AfterAt, now, cfg),
		analysisLine(st, now, cfg),
	}

	for _, line := range lines {
		_, err := fmt.Fprintln(w, line)
		if err != nil {
			return err
		}
	}

	return nil
}

func captureLine(label string, captured bool, lots, total int, at, now time.Time, cfg terminal.Config) string {
	if !captured {
		return label + " " + cfg.Colorize(terminal.Red, "not captured")
	}

	text := fmt.Sprintf("captured %d critical lots (out of %d total), %s",
		lots, total, humanize.RelTime(at, now, "ago", "from now"))

	return label + " " + cfg.Colorize(terminal.Green, text)
}

func analysisLine(st store.Status, now time.Time, cfg terminal.Config) string {
	const label = "Analysis:    "

	switch {
	case st.Analyzed:
		return label + " " + cfg.Colorize(terminal.Green, "up to date, "+humanize.RelTime(st.AnalyzedAt, now, "ago", "from now"))
	case st.Ready():
		return label + " " + cfg.Colorize(terminal.Yellow, "pending, run analyze")
	case st.BeforeCaptured:
		return label + " " + cfg.Colorize(terminal.Gray, "waiting for after shift capture")
	default:
		return label + " " + cfg.Colorize(terminal.Gray, "please capture before shift data first")
	}
}
