package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/report"
	"github.com/midanish/PTEO-Shift-Report/pkg/terminal"
	"github.com/midanish/PTEO-Shift-Report/pkg/version"
)

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which snapshots are captured and whether the analysis is current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.openSession(cmd, observability.ModeCLI, true)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			return report.RenderStatus(cmd.OutOrStdout(), sess.store.Status(), app.Now(), sess.term)
		},
	}
}

func newResetCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard both snapshots and the analysis state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.openSession(cmd, observability.ModeCLI, true)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			err = sess.store.ClearAll()
			if err != nil {
				return err
			}

			app.printf(cmd.OutOrStdout(), "%s\n", sess.term.Colorize(terminal.Green, "Analysis reset successfully"))

			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
