// dataset.go holds the observation matrix and covariates a model is fitted
// against, plus the reshaping from the raw site x year x occasion survey array
// into the wide layout the likelihood consumes.
package colext

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ecostats/dynocc-go/internal/errors"
)

// Dataset bundles the wide observation matrix with the covariates a model
// formula may reference. Covariate maps may be nil when a battery uses none
// of that kind.
type Dataset struct {
	Design SurveyDesign

	// Observations is Sites x (Years*Occasions). Entries are 0, 1, or NaN
	// for occasions that were not surveyed.
	Observations *mat.Dense

	// SiteCovs hold one value per site, e.g. elevation.
	SiteCovs map[string][]float64

	// YearlyCovs hold one value per site and between-season interval,
	// Sites x (Years-1), e.g. precipitation driving colonization.
	YearlyCovs map[string]*mat.Dense

	// ObsCovs hold one value per site and secondary period,
	// Sites x (Years*Occasions), e.g. survey effort driving detection.
	ObsCovs map[string]*mat.Dense
}

// NewDataset validates every shape against the design and returns the
// assembled dataset. Nil covariate maps are allowed.
func NewDataset(design SurveyDesign, obs *mat.Dense, siteCovs map[string][]float64,
	yearlyCovs, obsCovs map[string]*mat.Dense) (*Dataset, error) {
	ds := &Dataset{
		Design:       design,
		Observations: obs,
		SiteCovs:     siteCovs,
		YearlyCovs:   yearlyCovs,
		ObsCovs:      obsCovs,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Validate checks the design and every array shape, and that observations are
// 0, 1 or NaN.
func (ds *Dataset) Validate() error {
	if err := ds.Design.Validate(); err != nil {
		return err
	}
	d := ds.Design
	if ds.Observations == nil {
		return shapeError("dataset has no observation matrix", d)
	}
	r, c := ds.Observations.Dims()
	if r != d.Sites || c != d.SecondaryPeriods() {
		return shapeErrorf(d, "observation matrix is %dx%d, want %dx%d",
			r, c, d.Sites, d.SecondaryPeriods())
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := ds.Observations.At(i, j)
			if math.IsNaN(v) || v == 0 || v == 1 {
				continue
			}
			return shapeErrorf(d, "observation at site %d, period %d is %v, want 0, 1 or NaN", i, j, v)
		}
	}
	for name, vals := range ds.SiteCovs {
		if len(vals) != d.Sites {
			return shapeErrorf(d, "site covariate %q has %d values, want %d", name, len(vals), d.Sites)
		}
	}
	for name, m := range ds.YearlyCovs {
		r, c := m.Dims()
		if r != d.Sites || c != d.Years-1 {
			return shapeErrorf(d, "yearly covariate %q is %dx%d, want %dx%d",
				name, r, c, d.Sites, d.Years-1)
		}
	}
	for name, m := range ds.ObsCovs {
		r, c := m.Dims()
		if r != d.Sites || c != d.SecondaryPeriods() {
			return shapeErrorf(d, "observation covariate %q is %dx%d, want %dx%d",
				name, r, c, d.Sites, d.SecondaryPeriods())
		}
	}
	return nil
}

// Reshape flattens a Sites x Years x Occasions detection array into the wide
// Sites x (Years*Occasions) matrix the likelihood consumes, columns grouped by
// year with occasion varying fastest. Values must be 0, 1 or NaN.
func Reshape(design SurveyDesign, detections [][][]float64) (*mat.Dense, error) {
	if err := design.Validate(); err != nil {
		return nil, err
	}
	if len(detections) != design.Sites {
		return nil, shapeErrorf(design, "detection array has %d sites, want %d",
			len(detections), design.Sites)
	}
	wide := mat.NewDense(design.Sites, design.SecondaryPeriods(), nil)
	for i, site := range detections {
		if len(site) != design.Years {
			return nil, shapeErrorf(design, "site %d has %d years, want %d", i, len(site), design.Years)
		}
		for t, year := range site {
			if len(year) != design.Occasions {
				return nil, shapeErrorf(design, "site %d year %d has %d occasions, want %d",
					i, t, len(year), design.Occasions)
			}
			for o, v := range year {
				if !math.IsNaN(v) && v != 0 && v != 1 {
					return nil, shapeErrorf(design, "site %d year %d occasion %d is %v, want 0, 1 or NaN",
						i, t, o, v)
				}
				wide.Set(i, design.Column(t, o), v)
			}
		}
	}
	return wide, nil
}

// WithObservations returns a shallow copy of the dataset sharing the
// covariates but carrying a different observation matrix. The parametric
// bootstrap uses this to refit simulated detection histories against the
// original covariates.
func (ds *Dataset) WithObservations(obs *mat.Dense) *Dataset {
	clone := *ds
	clone.Observations = obs
	return &clone
}

// Resample builds a new dataset from the given site indexes, typically drawn
// with replacement by the nonparametric bootstrap. Covariate rows follow their
// sites.
func (ds *Dataset) Resample(idx []int) (*Dataset, error) {
	d := ds.Design
	for _, i := range idx {
		if i < 0 || i >= d.Sites {
			return nil, shapeErrorf(d, "resample index %d out of range [0,%d)", i, d.Sites)
		}
	}
	design := d
	design.Sites = len(idx)

	obs := mat.NewDense(design.Sites, d.SecondaryPeriods(), nil)
	for row, i := range idx {
		obs.SetRow(row, ds.Observations.RawRowView(i))
	}

	var siteCovs map[string][]float64
	if ds.SiteCovs != nil {
		siteCovs = make(map[string][]float64, len(ds.SiteCovs))
		for name, vals := range ds.SiteCovs {
			picked := make([]float64, len(idx))
			for row, i := range idx {
				picked[row] = vals[i]
			}
			siteCovs[name] = picked
		}
	}
	return &Dataset{
		Design:       design,
		Observations: obs,
		SiteCovs:     siteCovs,
		YearlyCovs:   resampleRows(ds.YearlyCovs, idx),
		ObsCovs:      resampleRows(ds.ObsCovs, idx),
	}, nil
}

func resampleRows(covs map[string]*mat.Dense, idx []int) map[string]*mat.Dense {
	if covs == nil {
		return nil
	}
	out := make(map[string]*mat.Dense, len(covs))
	for name, m := range covs {
		_, c := m.Dims()
		picked := mat.NewDense(len(idx), c, nil)
		for row, i := range idx {
			picked.SetRow(row, m.RawRowView(i))
		}
		out[name] = picked
	}
	return out
}

// ObservedOccupied returns, per year, the number of sites with at least one
// detection in that year. Missing occasions count as no detection.
func (ds *Dataset) ObservedOccupied() []int {
	d := ds.Design
	counts := make([]int, d.Years)
	for i := 0; i < d.Sites; i++ {
		for t := 0; t < d.Years; t++ {
			for o := 0; o < d.Occasions; o++ {
				v := ds.Observations.At(i, d.Column(t, o))
				if !math.IsNaN(v) && v == 1 {
					counts[t]++
					break
				}
			}
		}
	}
	return counts
}

// anyDetection reports whether the site has at least one detection in the
// given year.
func (ds *Dataset) anyDetection(site, year int) bool {
	for o := 0; o < ds.Design.Occasions; o++ {
		v := ds.Observations.At(site, ds.Design.Column(year, o))
		if !math.IsNaN(v) && v == 1 {
			return true
		}
	}
	return false
}

func shapeError(msg string, d SurveyDesign) error {
	return errors.Newf("%s", msg).
		Component("colext").
		Category(errors.CategoryDataShape).
		DesignContext(d.Sites, d.Years, d.Occasions).
		Build()
}

func shapeErrorf(d SurveyDesign, format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("colext").
		Category(errors.CategoryDataShape).
		DesignContext(d.Sites, d.Years, d.Occasions).
		Build()
}
