package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
	"github.com/midanish/PTEO-Shift-Report/pkg/terminal"
)

// ErrBeforeMissing is returned when the after snapshot is captured first.
var ErrBeforeMissing = errors.New("please capture before shift data first")

func newCaptureCommand(app *App) *cobra.Command {
	var fromCSV string

	cmd := &cobra.Command{
		Use:       "capture before|after",
		Short:     "Capture the critical lots at the start or end of the shift",
		Long:      "Read the lot tracking sheet, keep the overdue-class lots and store them for this shift. Capturing after also runs the analysis.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(lot.TagBefore), string(lot.TagAfter)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runCapture(cmd, lot.Tag(args[0]), fromCSV)
		},
	}

	cmd.Flags().StringVar(&fromCSV, "from-csv", "", "read the lots from a CSV export instead of the sheet")

	return cmd
}

func (a *App) runCapture(cmd *cobra.Command, tag lot.Tag, fromCSV string) error {
	ctx := cmd.Context()

	sess, err := a.openSession(cmd, observability.ModeCLI, true)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	if tag == lot.TagAfter && !sess.store.Status().BeforeCaptured {
		return ErrBeforeMissing
	}

	var reader sheets.Reader

	if fromCSV != "" {
		reader = sheets.CSVFile{Path: fromCSV}
	} else {
		reader, err = a.NewBackend(sess.cfg).Reader(ctx, sess.cfg.Sheets.Lots)
		if err != nil {
			return err
		}
	}

	stats, err := sess.store.CaptureFrom(ctx, tag, reader, sess.cfg.Classification.Policy())
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("%s shift data captured: %d critical lots (out of %d total)",
		capitalize(string(tag)), stats.CriticalLots, stats.TotalLots)
	a.printf(cmd.OutOrStdout(), "%s\n", sess.term.Colorize(terminal.Green, msg))

	if tag != lot.TagAfter {
		return nil
	}

	return a.runAnalysis(ctx, cmd, sess, analyzeOptions{format: "text"})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
