package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/midanish/PTEO-Shift-Report/pkg/terminal"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

const (
	maxCellWidth = 28
	rateBarWidth = 30
	timeLayout   = "2006-01-02 15:04"
)

// Write renders doc in the given format.
func Write(w io.Writer, format string, doc Document, cfg terminal.Config) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return RenderText(w, doc, cfg)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		err := enc.Encode(doc)
		if err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}

		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (want text, json or yaml)", ErrUnknownFormat, format)
	}
}

// RenderText writes the human-readable shift report.
func RenderText(w io.Writer, doc Document, cfg terminal.Config) error {
	var sb strings.Builder

	sb.WriteString(terminal.DrawHeader("SHIFT REPORT", doc.GeneratedAt.Format(timeLayout), cfg.Width))
	sb.WriteString("\n\n")

	sb.WriteString(summaryTable(doc))
	sb.WriteString("\n\n")

	bar := terminal.DrawPercentBar("Processing rate", doc.ProcessingRate, 16, rateBarWidth)
	sb.WriteString(cfg.Colorize(terminal.ColorForRate(doc.ProcessingRate), bar))
	sb.WriteString("\n")

	for _, b := range doc.Buckets {
		sb.WriteString("\n")
		sb.WriteString(terminal.DrawSeparator(cfg.Width))
		sb.WriteString("\n")
		sb.WriteString(cfg.Colorize(terminal.Cyan, b.Title))
		sb.WriteString("\n")

		if b.Stats.Count == 0 {
			sb.WriteString(cfg.Colorize(terminal.Gray, "No "+strings.ToLower(b.Title)+" lots found"))
			sb.WriteString("\n")

			continue
		}

		fmt.Fprintf(&sb, "Lots: %d   Total QTY: %s\n", b.Stats.Count, b.Stats.QtyText())
		sb.WriteString(detailTable(b))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

func summaryTable(doc Document) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Metric", "Value"})

	for _, line := range doc.Summary {
		tbl.AppendRow(table.Row{line.Metric, line.Value})
	}

	return tbl.Render()
}

func detailTable(b Bucket) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false

	header := make(table.Row, len(b.Columns))
	for i, col := range b.Columns {
		header[i] = col
	}

	tbl.AppendHeader(header)

	for _, row := range b.Rows {
		cells := make(table.Row, len(b.Columns))
		for i, col := range b.Columns {
			cells[i] = terminal.TruncateWithEllipsis(row[col], maxCellWidth)
		}

		tbl.AppendRow(cells)
	}

	return tbl.Render()
}
