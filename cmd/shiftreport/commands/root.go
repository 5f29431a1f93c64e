// Package commands implements the shiftreport subcommands.
package commands

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/midanish/PTEO-Shift-Report/pkg/config"
)

// Options are the persistent flags of the root command.
type Options struct {
	ConfigPath string
	SessionDir string
	Verbose    bool
	Quiet      bool
	NoColor    bool
}

// App carries the dependencies shared by every subcommand.
type App struct {
	Options Options

	// NewBackend opens the spreadsheets for a loaded configuration.
	NewBackend func(cfg *config.Config) Backend
	// Now is the clock used for stamps and record dates.
	Now func() time.Time
	// Stdin feeds the interactive flows.
	Stdin io.Reader
}

// NewApp returns an App wired to Google Sheets, the wall clock and stdin.
func NewApp() *App {
	return &App{
		NewBackend: newGoogleBackend,
		Now:        time.Now,
		Stdin:      os.Stdin,
	}
}

// NewRootCommand builds the shiftreport command tree.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shiftreport",
		Short: "PTEO shift report - lot processing delta between shift start and end",
		Long: `shiftreport compares the critical lots on the tracking sheet at the start
and end of a shift and reports what was processed.

Workflow:
  capture before   at the start of the shift
  capture after    at the end of the shift (runs the analysis)
  analyze          re-render the report, export CSVs, plot charts
  attendance       record the team check-in
  detape           record the day's detapes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.Options.ConfigPath, "config", "", "config file (default: ./shiftreport.yaml)")
	flags.StringVar(&app.Options.SessionDir, "session-dir", "", "directory holding the shift session (overrides session.dir)")
	flags.BoolVarP(&app.Options.Verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&app.Options.Quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&app.Options.NoColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newCaptureCommand(app),
		newAnalyzeCommand(app),
		newStatusCommand(app),
		newResetCommand(app),
		newAttendanceCommand(app),
		newDetapeCommand(app),
		newVersionCommand(),
	)

	return rootCmd
}
