package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/midanish/PTEO-Shift-Report/pkg/config"
	"github.com/midanish/PTEO-Shift-Report/pkg/console"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/sheets"
)

// Ledger sheet names.
const (
	ledgerAttendance = "attendance"
	ledgerDetape     = "detape"
)

func newAttendanceCommand(app *App) *cobra.Command {
	var ledger string

	cmd := &cobra.Command{
		Use:   "attendance",
		Short: "Record the pre-shift team attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runAttendance(cmd, ledger)
		},
	}

	cmd.Flags().StringVar(&ledger, "ledger", "", "record into this SQLite file instead of the attendance sheet")

	return cmd
}

func (a *App) runAttendance(cmd *cobra.Command, ledgerPath string) (err error) {
	ctx := cmd.Context()

	sess, err := a.openSession(cmd, observability.ModeConsole, false)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	backend := a.NewBackend(sess.cfg)
	prompter := console.NewPrompter(a.Stdin, cmd.OutOrStdout(), sess.term)

	records, closeRecords, err := openRecords(ctx, backend, ledgerPath, sess.cfg.Attendance.Ledger, ledgerAttendance, sess.cfg.Sheets.Attendance)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, closeRecords())
	}()

	roster, rosterErr := backend.Reader(ctx, sess.cfg.Sheets.Members)
	if rosterErr != nil {
		sess.providers.Logger.WarnContext(ctx, "members sheet unavailable", slog.Any("error", rosterErr))
		prompter.Fail(fmt.Sprintf("Error loading team members: %v", rosterErr))
	}

	_, err = console.AttendanceFlow{
		Shifts:   sess.cfg.Attendance.Shifts,
		TeamSize: sess.cfg.Attendance.TeamSize,
		Roster:   roster,
		Records:  records,
		Now:      a.Now,
		Logger:   sess.providers.Logger,
	}.Run(ctx, prompter)

	return err
}

func newDetapeCommand(app *App) *cobra.Command {
	var ledger string

	cmd := &cobra.Command{
		Use:   "detape",
		Short: "Record the day's detapes and their package codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runDetape(cmd, ledger)
		},
	}

	cmd.Flags().StringVar(&ledger, "ledger", "", "record into this SQLite file instead of the detape sheet")

	return cmd
}

func (a *App) runDetape(cmd *cobra.Command, ledgerPath string) (err error) {
	ctx := cmd.Context()

	sess, err := a.openSession(cmd, observability.ModeConsole, false)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	records, closeRecords, err := openRecords(ctx, a.NewBackend(sess.cfg), ledgerPath, sess.cfg.Attendance.Ledger, ledgerDetape, sess.cfg.Sheets.Detape)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, closeRecords())
	}()

	prompter := console.NewPrompter(a.Stdin, cmd.OutOrStdout(), sess.term)

	_, err = console.DetapeFlow{
		Records: records,
		Now:     a.Now,
		Logger:  sess.providers.Logger,
	}.Run(ctx, prompter)

	return err
}

// openRecords returns the record destination: the ledger named by the flag or
// the config, otherwise the configured sheet.
func openRecords(
	ctx context.Context,
	backend Backend,
	flagPath, configPath, ledgerSheet string,
	sheet config.SheetConfig,
) (sheets.Appender, func() error, error) {
	path := flagPath
	if path == "" {
		path = configPath
	}

	if path == "" {
		appender, err := backend.Appender(ctx, sheet)
		if err != nil {
			return nil, nil, err
		}

		return appender, func() error { return nil }, nil
	}

	ledger, err := sheets.OpenLedger(path)
	if err != nil {
		return nil, nil, err
	}

	return ledger.Sheet(ledgerSheet), ledger.Close, nil
}
