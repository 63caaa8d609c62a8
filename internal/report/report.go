// Package report renders pipeline results for people and machines: a console
// digest, table and CSV artifacts, trajectory charts, the dataset export and
// a JSON run summary.
package report

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ecostats/dynocc-go/internal/analysis"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/datasetio"
	"github.com/ecostats/dynocc-go/internal/errors"
)

// WriteAll prints the console summary and writes every artifact the output
// settings enable into the configured output directory.
func WriteAll(settings *conf.Settings, result *analysis.PipelineResult) error {
	PrintSummary(result)

	out := &settings.Output
	if !out.File.Enabled && !out.Chart.Enabled && !out.Dataset.Enabled && !out.Summary.Enabled {
		return nil
	}

	dir := out.File.Path
	if dir == "" {
		dir = "output"
	}
	// Expands environment variables and creates the directory.
	dir = conf.GetBasePath(dir)
	if _, err := os.Stat(dir); err != nil {
		return errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "create-output-dir").
			FileContext(dir, 0).
			Build()
	}

	if out.File.Enabled {
		if err := writeTables(dir, out.File.Type, result); err != nil {
			return err
		}
	}
	if out.Chart.Enabled {
		if err := writeCharts(dir, out.Chart.Format, out.Chart.Width, out.Chart.Height, result); err != nil {
			return err
		}
	}
	if out.Dataset.Enabled {
		if err := datasetio.Export(filepath.Join(dir, "dataset"), result.Dataset, result.TrueStates); err != nil {
			return err
		}
	}
	if out.Summary.Enabled {
		if err := WriteSummary(settings, result, filepath.Join(dir, "summary")); err != nil {
			return err
		}
	}
	return nil
}

// writeTables writes the result tables in the configured flavor. Tables for
// stages that produced nothing, a failed test or a skipped assessment, are
// not written.
func writeTables(dir, flavor string, result *analysis.PipelineResult) error {
	csv := strings.EqualFold(flavor, "csv")

	type table struct {
		name  string
		skip  bool
		text  func(string) error
		comma func(string) error
	}
	tables := []table{
		{
			name:  "ranking",
			text:  func(path string) error { return WriteRankingTable(result.Ranking, path) },
			comma: func(path string) error { return WriteRankingCsv(result.Ranking, path) },
		},
		{
			name:  "lrt",
			skip:  result.LRT == nil,
			text:  func(path string) error { return WriteLRTTable(result.LRT, path) },
			comma: func(path string) error { return WriteLRTCsv(result.LRT, path) },
		},
		{
			name:  "gof",
			skip:  result.GOF == nil,
			text:  func(path string) error { return WriteGOFTable(result.GOF, path) },
			comma: func(path string) error { return WriteGOFCsv(result.GOF, path) },
		},
		{
			name:  "trajectory",
			text:  func(path string) error { return WriteTrajectoryTable(result.Trajectory, path) },
			comma: func(path string) error { return WriteTrajectoryCsv(result.Trajectory, path) },
		},
	}

	for _, tbl := range tables {
		if tbl.skip {
			continue
		}
		path := filepath.Join(dir, tbl.name)
		write := tbl.text
		if csv {
			write = tbl.comma
		}
		if err := write(path); err != nil {
			return err
		}
	}
	return nil
}

// writeCharts renders the trajectory chart in the configured format.
func writeCharts(dir, format string, width, height int, result *analysis.PipelineResult) error {
	path := filepath.Join(dir, "trajectory")
	switch strings.ToLower(format) {
	case "png", "":
		return RenderTrajectoryPNG(result.Trajectory, path, width, height)
	case "html":
		return RenderTrajectoryHTML(result.Trajectory, path, width, height)
	case "both":
		if err := RenderTrajectoryPNG(result.Trajectory, path, width, height); err != nil {
			return err
		}
		return RenderTrajectoryHTML(result.Trajectory, path, width, height)
	default:
		return errors.Newf("unsupported chart format %q, want png, html or both", format).
			Component(serviceName).
			Category(errors.CategoryConfiguration).
			Build()
	}
}
