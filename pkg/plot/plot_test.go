package plot_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midanish/PTEO-Shift-Report/pkg/delta"
	"github.com/midanish/PTEO-Shift-Report/pkg/lot"
	"github.com/midanish/PTEO-Shift-Report/pkg/plot"
)

func rows(keys ...string) []lot.Row {
	out := make([]lot.Row, 0, len(keys))
	for _, k := range keys {
		out = append(out, lot.RowFromStrings(map[string]string{lot.ColLotNumber: k}))
	}

	return out
}

func TestCharts(t *testing.T) {
	t.Parallel()

	result := &delta.Result{
		ProcessedRegular:  rows("C"),
		ProcessedSplit:    rows("A"),
		InProgressRegular: rows("B"),
	}

	assert.Len(t, plot.Charts(result), 2)

	nothingProcessed := &delta.Result{InProgressRegular: rows("B")}
	assert.Len(t, plot.Charts(nothingProcessed), 1)
}

func TestWritePage(t *testing.T) {
	t.Parallel()

	result := &delta.Result{
		ProcessedRegular: rows("C", "D"),
		ProcessedSplit:   rows("A"),
		InProgressSplit:  rows("B"),
	}

	var buf bytes.Buffer

	require.NoError(t, plot.WritePage(&buf, result))

	html := buf.String()
	assert.Contains(t, html, plot.TitleStatus)
	assert.Contains(t, html, plot.TitleCategories)
	assert.Contains(t, html, "#2E8B57")
	assert.Contains(t, html, "#FF9800")
}
