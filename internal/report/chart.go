// chart.go renders the yearly occupancy trajectory, as a standalone
// interactive HTML page and as a static PNG with bootstrap error bars.
package report

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ecostats/dynocc-go/internal/analysis"
	"github.com/ecostats/dynocc-go/internal/errors"
)

const (
	defaultChartWidth  = 800
	defaultChartHeight = 500

	chartTitle    = "Occupancy trajectory"
	chartSubtitle = "Occupied sites per year: truth, naive observation and model expectation"
)

// seriesPoints is one trajectory series pivoted back into vectors.
type seriesPoints struct {
	years  []int
	counts []float64
	ses    []float64
}

// chartSeriesOrder fixes the render and color order of the series.
var chartSeriesOrder = []analysis.TrajectorySeries{
	analysis.SeriesTrue,
	analysis.SeriesObserved,
	analysis.SeriesExpected,
}

// collectSeries pivots the long-format rows into per-series vectors, keyed by
// series name. Absent series, e.g. truth for imported field data, are simply
// missing from the map.
func collectSeries(rows []analysis.TrajectoryRow) map[analysis.TrajectorySeries]*seriesPoints {
	series := make(map[analysis.TrajectorySeries]*seriesPoints)
	for _, row := range rows {
		points := series[row.Series]
		if points == nil {
			points = &seriesPoints{}
			series[row.Series] = points
		}
		points.years = append(points.years, row.Year)
		points.counts = append(points.counts, row.Count)
		points.ses = append(points.ses, row.StdErr)
	}
	return series
}

func emptyTrajectoryError() error {
	return errors.Newf("trajectory is empty, nothing to chart").
		Component(serviceName).
		Category(errors.CategoryChart).
		Build()
}

// RenderTrajectoryHTML writes the trajectory as a standalone HTML page with
// an interactive chart. Zero or negative dimensions select the defaults.
func RenderTrajectoryHTML(rows []analysis.TrajectoryRow, filename string, width, height int) error {
	if len(rows) == 0 {
		return emptyTrajectoryError()
	}
	if width <= 0 {
		width = defaultChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	series := collectSeries(rows)
	expected := series[analysis.SeriesExpected]
	if expected == nil {
		return emptyTrajectoryError()
	}

	years := make([]string, len(expected.years))
	for i, year := range expected.years {
		years[i] = strconv.Itoa(year)
	}

	// Helper function to create a pointer to a boolean
	boolPtr := func(b bool) *bool { return &b }

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  fmt.Sprintf("%dpx", width),
			Height: fmt.Sprintf("%dpx", height),
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    chartTitle,
			Subtitle: chartSubtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: boolPtr(true)}),
		charts.WithLegendOpts(opts.Legend{Show: boolPtr(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Year",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Occupied sites",
		}),
		charts.WithGridOpts(opts.Grid{
			ContainLabel: boolPtr(true),
			Left:         "3%",
			Right:        "4%",
		}),
	)

	line.SetXAxis(years)
	for _, name := range chartSeriesOrder {
		points := series[name]
		if points == nil {
			continue
		}
		data := make([]opts.LineData, len(points.counts))
		for i, count := range points.counts {
			data[i] = opts.LineData{Value: count}
		}
		line.AddSeries(string(name), data)
	}

	if !strings.HasSuffix(filename, ".html") {
		filename += ".html"
	}
	file, err := os.Create(filename)
	if err != nil {
		return errors.New(err).
			Component(serviceName).
			Category(errors.CategoryChart).
			FileContext(filename, 0).
			Build()
	}
	defer file.Close()

	if err := line.Render(file); err != nil {
		return errors.New(err).
			Component(serviceName).
			Category(errors.CategoryChart).
			Context("format", "html").
			FileContext(filename, 0).
			Build()
	}
	logWritten(filename)
	return nil
}

// expectedErrors pairs the expected counts with their bootstrap standard
// errors for the error bar plotter.
type expectedErrors struct {
	plotter.XYs
	plotter.YErrors
}

// RenderTrajectoryPNG writes the trajectory as a static PNG chart. The
// expected series carries error bars when bootstrap standard errors are
// available. Zero or negative dimensions select the defaults.
func RenderTrajectoryPNG(rows []analysis.TrajectoryRow, filename string, width, height int) error {
	if len(rows) == 0 {
		return emptyTrajectoryError()
	}
	if width <= 0 {
		width = defaultChartWidth
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	series := collectSeries(rows)
	if series[analysis.SeriesExpected] == nil {
		return emptyTrajectoryError()
	}

	p := plot.New()
	p.Title.Text = chartTitle
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Occupied sites"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for idx, name := range chartSeriesOrder {
		points := series[name]
		if points == nil {
			continue
		}

		xys := make(plotter.XYs, len(points.counts))
		for i, count := range points.counts {
			xys[i] = plotter.XY{X: float64(points.years[i]), Y: count}
		}
		line, scatter, err := plotter.NewLinePoints(xys)
		if err != nil {
			return chartRenderError(err, filename)
		}
		line.Color = plotutil.Color(idx)
		scatter.Color = plotutil.Color(idx)
		scatter.Shape = plotutil.Shape(idx)
		p.Add(line, scatter)
		p.Legend.Add(string(name), line, scatter)

		if name != analysis.SeriesExpected || !anyFinite(points.ses) {
			continue
		}
		errData := expectedErrors{XYs: xys, YErrors: make(plotter.YErrors, len(points.ses))}
		for i, se := range points.ses {
			if math.IsNaN(se) {
				se = 0
			}
			errData.YErrors[i].Low = se
			errData.YErrors[i].High = se
		}
		bars, err := plotter.NewYErrorBars(errData)
		if err != nil {
			return chartRenderError(err, filename)
		}
		bars.Color = plotutil.Color(idx)
		p.Add(bars)
	}

	if !strings.HasSuffix(filename, ".png") {
		filename += ".png"
	}
	// Dimensions are configured in pixels; vg lengths are typographic, so
	// convert at the usual 96 dpi.
	w := vg.Length(width) * vg.Inch / 96
	h := vg.Length(height) * vg.Inch / 96
	if err := p.Save(w, h, filename); err != nil {
		return chartRenderError(err, filename)
	}
	logWritten(filename)
	return nil
}

func anyFinite(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func chartRenderError(err error, filename string) error {
	return errors.New(err).
		Component(serviceName).
		Category(errors.CategoryChart).
		Context("format", "png").
		FileContext(filename, 0).
		Build()
}
