package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/midanish/PTEO-Shift-Report/pkg/delta"
	"github.com/midanish/PTEO-Shift-Report/pkg/export"
	"github.com/midanish/PTEO-Shift-Report/pkg/observability"
	"github.com/midanish/PTEO-Shift-Report/pkg/plot"
	"github.com/midanish/PTEO-Shift-Report/pkg/report"
)

// ErrSnapshotsMissing is returned when analysis runs without both captures.
var ErrSnapshotsMissing = errors.New("both before and after shift data needed for analysis")

const plotDirPerm = 0o750

type analyzeOptions struct {
	format      string
	plotPath    string
	exportDir   string
	metricsFile string
}

func newAnalyzeCommand(app *App) *cobra.Command {
	opts := analyzeOptions{format: report.FormatText}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare the captured snapshots and report processed lots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.openSession(cmd, observability.ModeCLI, true)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			return app.runAnalysis(cmd.Context(), cmd, sess, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", report.FormatText, "Output format: text, json, yaml")
	cmd.Flags().StringVar(&opts.plotPath, "plot", "", "write the status charts as an HTML page to this file")
	cmd.Flags().StringVar(&opts.exportDir, "export", "", "write one CSV per non-empty bucket into this directory")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write shift figures in Prometheus text format to this file")

	return cmd
}

func (a *App) runAnalysis(ctx context.Context, cmd *cobra.Command, sess *session, opts analyzeOptions) error {
	before, after := sess.store.Pair()
	if before == nil || after == nil {
		return ErrSnapshotsMissing
	}

	policy := sess.cfg.Classification.Policy()

	result, err := delta.NewAnalyzer(policy, sess.providers, sess.metrics).Analyze(ctx, before, after)
	if err != nil {
		return err
	}

	now := a.Now()
	doc := report.Build(before, after, result, policy, now)

	if !a.Options.Quiet {
		err = report.Write(cmd.OutOrStdout(), opts.format, doc, sess.term)
		if err != nil {
			return err
		}
	}

	notes := cmd.ErrOrStderr()

	if opts.plotPath != "" {
		err = writePlot(opts.plotPath, result)
		if err != nil {
			return err
		}

		a.printf(notes, "Charts written to %s\n", opts.plotPath)
	}

	if opts.exportDir != "" {
		paths, exportErr := export.WriteBuckets(opts.exportDir, result, export.Stamp(now))
		if exportErr != nil {
			return exportErr
		}

		if len(paths) == 0 {
			a.printf(notes, "No analysis data available for export\n")
		}

		for _, path := range paths {
			a.printf(notes, "Exported %s\n", path)
		}
	}

	if opts.metricsFile != "" {
		err = observability.WriteShiftTextfile(ctx, opts.metricsFile, doc.Figures())
		if err != nil {
			return err
		}
	}

	return sess.store.MarkAnalyzed(now)
}

func writePlot(path string, result *delta.Result) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		err = os.MkdirAll(dir, plotDirPerm)
		if err != nil {
			return fmt.Errorf("create plot directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return plot.WritePage(f, result)
}
