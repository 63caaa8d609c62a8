package datasetio

import (
	"bufio"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ecostats/dynocc-go/internal/colext"
	"github.com/ecostats/dynocc-go/internal/errors"
)

// Export writes the dataset to dir as a set of CSV files, creating the
// directory if needed. A non-nil truth matrix of latent occupancy states
// (sites by years, values 0 or 1) is written alongside as truth.csv.
func Export(dir string, ds *colext.Dataset, truth *mat.Dense) error {
	began := time.Now()

	if err := ds.Validate(); err != nil {
		return err
	}
	d := ds.Design
	if truth != nil {
		rows, cols := truth.Dims()
		if rows != d.Sites || cols != d.Years {
			return errors.Newf("truth matrix is %dx%d, want %dx%d (sites x years)",
				rows, cols, d.Sites, d.Years).
				Component(serviceName).
				Category(errors.CategoryDataShape).
				DesignContext(d.Sites, d.Years, d.Occasions).
				Build()
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "create-dataset-dir").
			FileContext(dir, 0).
			Build()
	}

	files := 0
	if err := writeDesign(filepath.Join(dir, designFile), d); err != nil {
		return err
	}
	files++

	if err := writeMatrixCSV(filepath.Join(dir, detectionsFile), detectionHeader(d), ds.Observations); err != nil {
		return err
	}
	files++

	if truth != nil {
		if err := writeMatrixCSV(filepath.Join(dir, truthFile), truthHeader(d.Years), truth); err != nil {
			return err
		}
		files++
	}

	if len(ds.SiteCovs) > 0 {
		if err := writeSiteCovs(filepath.Join(dir, siteCovsFile), d.Sites, ds.SiteCovs); err != nil {
			return err
		}
		files++
	}

	for _, name := range sortedCovNames(ds.YearlyCovs) {
		path := filepath.Join(dir, yearlyCovPrefix+name+".csv")
		if err := writeMatrixCSV(path, intervalHeader(d.Years), ds.YearlyCovs[name]); err != nil {
			return err
		}
		files++
	}

	for _, name := range sortedCovNames(ds.ObsCovs) {
		path := filepath.Join(dir, obsCovPrefix+name+".csv")
		if err := writeMatrixCSV(path, detectionHeader(d), ds.ObsCovs[name]); err != nil {
			return err
		}
		files++
	}

	logger.Info("dataset exported",
		"path", dir,
		"files", files,
		"sites", d.Sites,
		"years", d.Years,
		"occasions", d.Occasions,
		"duration_ms", time.Since(began).Milliseconds())
	return nil
}

// writeDesign writes the survey dimensions as a single-row CSV file.
func writeDesign(path string, d colext.SurveyDesign) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	content := fmt.Sprintf("sites,years,occasions\n%d,%d,%d\n", d.Sites, d.Years, d.Occasions)
	if _, err := file.WriteString(content); err != nil {
		return writeError(err, path)
	}
	return nil
}

// writeMatrixCSV writes one matrix as a CSV file with the given header.
// NaN cells are written as the missing token.
func writeMatrixCSV(path string, header []string, m *mat.Dense) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := fmt.Fprintln(w, strings.Join(header, ",")); err != nil {
		return writeError(err, path)
	}

	rows, cols := m.Dims()
	cells := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cells[j] = formatCell(m.At(i, j))
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, ",")); err != nil {
			return writeError(err, path)
		}
	}
	if err := w.Flush(); err != nil {
		return writeError(err, path)
	}
	return nil
}

// writeSiteCovs writes all site covariates as one CSV file, one column per
// covariate in sorted name order.
func writeSiteCovs(path string, sites int, covs map[string][]float64) error {
	file, err := createFile(path)
	if err != nil {
		return err
	}
	defer file.Close()

	names := slices.Sorted(maps.Keys(covs))

	w := bufio.NewWriter(file)
	if _, err := fmt.Fprintln(w, strings.Join(names, ",")); err != nil {
		return writeError(err, path)
	}

	cells := make([]string, len(names))
	for i := 0; i < sites; i++ {
		for j, name := range names {
			cells[j] = formatCell(covs[name][i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, ",")); err != nil {
			return writeError(err, path)
		}
	}
	if err := w.Flush(); err != nil {
		return writeError(err, path)
	}
	return nil
}

// sortedCovNames returns the covariate map keys in sorted order so exports
// are deterministic.
func sortedCovNames(covs map[string]*mat.Dense) []string {
	return slices.Sorted(maps.Keys(covs))
}

// formatCell renders one matrix cell, using the missing token for NaN.
func formatCell(v float64) string {
	if math.IsNaN(v) {
		return missingToken
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func createFile(path string) (*os.File, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "create-dataset-file").
			FileContext(path, 0).
			Build()
	}
	return file, nil
}

func writeError(err error, path string) error {
	return errors.New(err).
		Component(serviceName).
		Category(errors.CategoryFileIO).
		Context("operation", "write-dataset-file").
		FileContext(path, 0).
		Build()
}
