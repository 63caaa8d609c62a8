package datasetio

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ecostats/dynocc-go/internal/colext"
	"github.com/ecostats/dynocc-go/internal/errors"
)

// Load reads a dataset directory written by Export. The returned slice holds
// the number of truly occupied sites per year when truth.csv is present, nil
// otherwise.
func Load(dir string) (*colext.Dataset, []int, error) {
	began := time.Now()

	design, err := readDesign(filepath.Join(dir, designFile))
	if err != nil {
		return nil, nil, err
	}

	obs, err := readMatrixCSV(filepath.Join(dir, detectionsFile), design.Sites, design.SecondaryPeriods(), true)
	if err != nil {
		return nil, nil, err
	}

	siteCovs, err := readSiteCovs(filepath.Join(dir, siteCovsFile), design.Sites)
	if err != nil {
		return nil, nil, err
	}

	yearlyCovs, err := readCovFiles(dir, yearlyCovPrefix, design.Sites, design.Years-1, false)
	if err != nil {
		return nil, nil, err
	}

	// Observation covariates may have gaps wherever the survey itself has
	// gaps, so the missing token is allowed.
	obsCovs, err := readCovFiles(dir, obsCovPrefix, design.Sites, design.SecondaryPeriods(), true)
	if err != nil {
		return nil, nil, err
	}

	ds, err := colext.NewDataset(design, obs, siteCovs, yearlyCovs, obsCovs)
	if err != nil {
		return nil, nil, err
	}

	trueCounts, err := readTruth(filepath.Join(dir, truthFile), design)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("dataset files read",
		"path", dir,
		"site_covs", len(siteCovs),
		"yearly_covs", len(yearlyCovs),
		"obs_covs", len(obsCovs),
		"truth", trueCounts != nil,
		"duration_ms", time.Since(began).Milliseconds())
	return ds, trueCounts, nil
}

// readDesign parses the survey dimensions file and validates them.
func readDesign(path string) (colext.SurveyDesign, error) {
	var d colext.SurveyDesign

	records, err := readRecords(path)
	if err != nil {
		return d, err
	}
	if len(records) != 2 {
		return d, parseErrorf(path, "expected a header row and one design row, found %d rows", len(records))
	}
	row := records[1]
	if len(row) != 3 {
		return d, parseErrorf(path, "expected 3 design values (sites,years,occasions), found %d", len(row))
	}

	dims := make([]int, 3)
	for i, cell := range row {
		v, err := strconv.Atoi(strings.TrimSpace(cell))
		if err != nil {
			return d, parseErrorf(path, "design value %q is not an integer", cell)
		}
		dims[i] = v
	}
	d = colext.SurveyDesign{Sites: dims[0], Years: dims[1], Occasions: dims[2]}
	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}

// readMatrixCSV reads one CSV file into a matrix of the expected shape.
// When allowMissing is set, the missing token and empty cells become NaN.
func readMatrixCSV(path string, rows, cols int, allowMissing bool) (*mat.Dense, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	if got := len(records) - 1; got != rows {
		return nil, parseErrorf(path, "expected %d data rows, found %d", rows, got)
	}
	if got := len(records[0]); got != cols {
		return nil, parseErrorf(path, "expected %d columns, found %d", cols, got)
	}

	m := mat.NewDense(rows, cols, nil)
	for i, record := range records[1:] {
		if len(record) != cols {
			return nil, parseErrorf(path, "row %d has %d values, want %d", i+1, len(record), cols)
		}
		for j, cell := range record {
			v, err := parseCell(cell, allowMissing)
			if err != nil {
				return nil, parseErrorf(path, "row %d column %s: invalid value %q",
					i+1, records[0][j], strings.TrimSpace(cell))
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// readSiteCovs reads the optional site covariate file. Covariate names come
// from the header row.
func readSiteCovs(path string, sites int) (map[string][]float64, error) {
	exists, err := statOptional(path)
	if err != nil || !exists {
		return nil, err
	}

	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	header := records[0]
	if got := len(records) - 1; got != sites {
		return nil, parseErrorf(path, "expected %d data rows, found %d", sites, got)
	}

	covs := make(map[string][]float64, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, parseErrorf(path, "column %d has an empty covariate name", j+1)
		}
		if _, dup := covs[name]; dup {
			return nil, parseErrorf(path, "duplicate covariate name %q", name)
		}
		covs[name] = make([]float64, sites)
	}

	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, parseErrorf(path, "row %d has %d values, want %d", i+1, len(record), len(header))
		}
		for j, cell := range record {
			v, err := parseCell(cell, false)
			if err != nil {
				return nil, parseErrorf(path, "row %d column %s: invalid value %q",
					i+1, strings.TrimSpace(header[j]), strings.TrimSpace(cell))
			}
			covs[strings.TrimSpace(header[j])][i] = v
		}
	}
	return covs, nil
}

// readCovFiles reads every covariate file in dir matching prefix. The
// covariate name is the file name with the prefix and extension stripped.
func readCovFiles(dir, prefix string, rows, cols int, allowMissing bool) (map[string]*mat.Dense, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"*.csv"))
	if err != nil {
		return nil, errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "glob-covariate-files").
			Context("prefix", prefix).
			Build()
	}
	if len(matches) == 0 {
		return nil, nil
	}

	covs := make(map[string]*mat.Dense, len(matches))
	for _, path := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), prefix), ".csv")
		if name == "" {
			return nil, parseErrorf(path, "covariate file name carries no covariate name")
		}
		m, err := readMatrixCSV(path, rows, cols, allowMissing)
		if err != nil {
			return nil, err
		}
		covs[name] = m
	}
	return covs, nil
}

// readTruth reads the optional latent state file and reduces it to occupied
// site counts per year.
func readTruth(path string, d colext.SurveyDesign) ([]int, error) {
	exists, err := statOptional(path)
	if err != nil || !exists {
		return nil, err
	}

	truth, err := readMatrixCSV(path, d.Sites, d.Years, false)
	if err != nil {
		return nil, err
	}

	counts := make([]int, d.Years)
	for t := 0; t < d.Years; t++ {
		for i := 0; i < d.Sites; i++ {
			switch truth.At(i, t) {
			case 0:
			case 1:
				counts[t]++
			default:
				return nil, parseErrorf(path, "row %d column year_%d: latent state must be 0 or 1", i+1, t+1)
			}
		}
	}
	return counts, nil
}

// readRecords reads one CSV file into records. Field count consistency is
// checked by the callers so shape errors can name the offending row.
func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "open-dataset-file").
			FileContext(path, 0).
			Build()
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileParsing).
			FileContext(path, 0).
			Build()
	}
	if len(records) == 0 {
		return nil, parseErrorf(path, "file is empty")
	}
	return records, nil
}

// parseCell converts one CSV cell to a float64. The missing token and empty
// cells map to NaN when missing values are allowed.
func parseCell(cell string, allowMissing bool) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == missingToken || cell == "" {
		if !allowMissing {
			return 0, errors.NewStd("missing value not allowed")
		}
		return math.NaN(), nil
	}
	return strconv.ParseFloat(cell, 64)
}

// statOptional reports whether an optional dataset file exists.
func statOptional(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.New(err).
			Component(serviceName).
			Category(errors.CategoryFileIO).
			Context("operation", "stat-dataset-file").
			FileContext(path, 0).
			Build()
	}
	return true, nil
}

func parseErrorf(path, format string, args ...any) error {
	return errors.Newf(format, args...).
		Component(serviceName).
		Category(errors.CategoryFileParsing).
		FileContext(path, 0).
		Build()
}
