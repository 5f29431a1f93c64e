// Package plot draws the shift pie charts as a standalone HTML page.
package plot

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/midanish/PTEO-Shift-Report/pkg/delta"
)

const (
	chartHeight = "400px"
	pieRadius   = "60%"
	labelFormat = "{b}: {c} ({d}%)"

	colorProcessed  = "#2E8B57"
	colorInProgress = "#FF6B6B"
	colorRegular    = "#4CAF50"
	colorSplit      = "#FF9800"
)

// Chart titles.
const (
	TitleStatus     = "Lot Processing Status"
	TitleCategories = "Processed Lot Categories"
)

type slice struct {
	name  string
	value int
	color string
}

func newPie(title string, slices []slice) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Left: "center"}),
		charts.WithInitializationOpts(opts.Initialization{Height: chartHeight}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
	)

	data := make([]opts.PieData, 0, len(slices))
	for _, s := range slices {
		data = append(data, opts.PieData{
			Name:      s.name,
			Value:     s.value,
			ItemStyle: &opts.ItemStyle{Color: s.color},
		})
	}

	pie.AddSeries(title, data).
		SetSeriesOptions(
			charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: labelFormat}),
		)

	return pie
}

// Charts returns the pies for result: processing status always, and the
// processed categories only when something was processed.
func Charts(result *delta.Result) []*charts.Pie {
	processed := len(result.Processed())

	pies := []*charts.Pie{
		newPie(TitleStatus, []slice{
			{"Processed", processed, colorProcessed},
			{"In Progress", len(result.InProgress()), colorInProgress},
		}),
	}

	if processed > 0 {
		pies = append(pies, newPie(TitleCategories, []slice{
			{"Regular Processed", len(result.ProcessedRegular), colorRegular},
			{"Split Low Yield", len(result.ProcessedSplit), colorSplit},
		}))
	}

	return pies
}

// WritePage renders the charts of result as one HTML page.
func WritePage(w io.Writer, result *delta.Result) error {
	page := components.NewPage()
	page.PageTitle = "Shift Report"

	for _, pie := range Charts(result) {
		page.AddCharts(pie)
	}

	return page.Render(w)
}
