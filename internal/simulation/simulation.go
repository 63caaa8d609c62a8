// Package simulation generates synthetic multi-season occupancy surveys. A
// latent occupancy state per site evolves through yearly colonization and
// persistence, and imperfect detection thins the truth into the observed
// detection histories. Covariates act on the logit scale: elevation on initial
// occupancy, precipitation on colonization, forest cover on persistence and
// survey effort on detection.
package simulation

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ecostats/dynocc-go/internal/colext"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/errors"
)

// Canonical covariate names, shared by the generator output and the candidate
// model formulas.
const (
	CovElevation     = "elev"
	CovPrecipitation = "precip"
	CovForest        = "forest"
	CovEffort        = "effort"
)

// Covariates are drawn uniformly on this interval, a stand-in for
// standardized environmental measurements.
const (
	covMin = -2.0
	covMax = 2.0
)

// Config holds everything the generator needs. Yearly means for persistence,
// colonization and detection are drawn uniformly from their ranges; the beta
// coefficients scale the covariate effects on the logit scale.
type Config struct {
	Design colext.SurveyDesign
	Seed   uint64

	MeanPsi1           float64 // initial occupancy at covariate zero
	PhiMin, PhiMax     float64 // yearly persistence mean range
	GammaMin, GammaMax float64 // yearly colonization mean range
	PMin, PMax         float64 // yearly detection mean range

	BetaPsi   float64 // elevation effect on initial occupancy
	BetaGamma float64 // precipitation effect on colonization
	BetaPhi   float64 // forest effect on persistence
	BetaP     float64 // effort effect on detection
}

// FromSettings maps the application configuration onto a generator config.
func FromSettings(s *conf.Settings) Config {
	return Config{
		Design: colext.SurveyDesign{
			Sites:     s.Survey.Sites,
			Years:     s.Survey.Years,
			Occasions: s.Survey.Occasions,
		},
		Seed:      s.Simulation.Seed,
		MeanPsi1:  s.Simulation.MeanPsi1,
		PhiMin:    s.Simulation.PhiRange.Min,
		PhiMax:    s.Simulation.PhiRange.Max,
		GammaMin:  s.Simulation.GammaRange.Min,
		GammaMax:  s.Simulation.GammaRange.Max,
		PMin:      s.Simulation.PRange.Min,
		PMax:      s.Simulation.PRange.Max,
		BetaPsi:   s.Simulation.BetaPsi,
		BetaGamma: s.Simulation.BetaGamma,
		BetaPhi:   s.Simulation.BetaPhi,
		BetaP:     s.Simulation.BetaP,
	}
}

// Validate checks the design and the probability ranges.
func (c Config) Validate() error {
	if err := c.Design.Validate(); err != nil {
		return err
	}
	if c.MeanPsi1 <= 0 || c.MeanPsi1 >= 1 {
		return errors.Newf("initial occupancy mean must be strictly between 0 and 1, got %g", c.MeanPsi1).
			Component("simulation").
			Category(errors.CategoryValidation).
			Build()
	}
	for _, r := range []struct {
		name     string
		min, max float64
	}{
		{"persistence", c.PhiMin, c.PhiMax},
		{"colonization", c.GammaMin, c.GammaMax},
		{"detection", c.PMin, c.PMax},
	} {
		if r.min < 0 || r.max > 1 || r.min > r.max {
			return errors.Newf("%s range [%g, %g] must lie within [0, 1] with min <= max",
				r.name, r.min, r.max).
				Component("simulation").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	return nil
}

// Result carries everything one generator run produced: latent states, raw
// detections, covariates and the drawn yearly means.
type Result struct {
	Design colext.SurveyDesign

	// TrueStates is the latent occupancy, Sites x Years with 0/1 entries.
	TrueStates *mat.Dense

	// Detections is the raw Sites x Years x Occasions survey array, before
	// reshaping into the wide layout.
	Detections [][][]float64

	Elevation     []float64  // per site
	Precipitation *mat.Dense // Sites x (Years-1)
	Forest        *mat.Dense // Sites x (Years-1)
	Effort        *mat.Dense // Sites x (Years*Occasions)

	// Yearly means drawn from the configured ranges, before covariate
	// effects. MeanPhi and MeanGamma cover the Years-1 intervals, MeanP
	// every year.
	MeanPhi   []float64
	MeanGamma []float64
	MeanP     []float64
}

// Generate draws one complete synthetic survey from a single deterministic
// stream seeded by cfg.Seed. The draw order is fixed: covariates first, then
// yearly means, then latent states, then detections.
func Generate(cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := cfg.Design
	began := time.Now()

	src := rand.NewPCG(cfg.Seed, 0)
	rng := rand.New(src)
	covDist := distuv.Uniform{Min: covMin, Max: covMax, Src: src}

	r := &Result{
		Design:        d,
		TrueStates:    mat.NewDense(d.Sites, d.Years, nil),
		Detections:    make([][][]float64, d.Sites),
		Elevation:     make([]float64, d.Sites),
		Precipitation: mat.NewDense(d.Sites, d.Years-1, nil),
		Forest:        mat.NewDense(d.Sites, d.Years-1, nil),
		Effort:        mat.NewDense(d.Sites, d.SecondaryPeriods(), nil),
		MeanPhi:       make([]float64, d.Years-1),
		MeanGamma:     make([]float64, d.Years-1),
		MeanP:         make([]float64, d.Years),
	}

	for i := range r.Elevation {
		r.Elevation[i] = covDist.Rand()
	}
	fillUniform(r.Precipitation, &covDist)
	fillUniform(r.Forest, &covDist)
	fillUniform(r.Effort, &covDist)

	drawMeans(r.MeanPhi, cfg.PhiMin, cfg.PhiMax, src)
	drawMeans(r.MeanGamma, cfg.GammaMin, cfg.GammaMax, src)
	drawMeans(r.MeanP, cfg.PMin, cfg.PMax, src)

	logitPsi1 := colext.Logit(cfg.MeanPsi1)
	for i := 0; i < d.Sites; i++ {
		psi := colext.InvLogit(logitPsi1 + cfg.BetaPsi*r.Elevation[i])
		occupied := rng.Float64() < psi
		setState(r.TrueStates, i, 0, occupied)
		for t := 1; t < d.Years; t++ {
			if occupied {
				phi := colext.InvLogit(colext.Logit(r.MeanPhi[t-1]) + cfg.BetaPhi*r.Forest.At(i, t-1))
				occupied = rng.Float64() < phi
			} else {
				gamma := colext.InvLogit(colext.Logit(r.MeanGamma[t-1]) + cfg.BetaGamma*r.Precipitation.At(i, t-1))
				occupied = rng.Float64() < gamma
			}
			setState(r.TrueStates, i, t, occupied)
		}
	}

	for i := 0; i < d.Sites; i++ {
		site := make([][]float64, d.Years)
		for t := 0; t < d.Years; t++ {
			year := make([]float64, d.Occasions)
			if r.TrueStates.At(i, t) == 1 {
				for o := 0; o < d.Occasions; o++ {
					col := d.Column(t, o)
					p := colext.InvLogit(colext.Logit(r.MeanP[t]) + cfg.BetaP*r.Effort.At(i, col))
					if rng.Float64() < p {
						year[o] = 1
					}
				}
			}
			site[t] = year
		}
		r.Detections[i] = site
	}

	logger.Info("synthetic survey generated",
		"sites", d.Sites,
		"years", d.Years,
		"occasions", d.Occasions,
		"seed", cfg.Seed,
		"occupied_first_year", r.TrueOccupied()[0],
		"duration_ms", time.Since(began).Milliseconds())
	return r, nil
}

func fillUniform(m *mat.Dense, dist *distuv.Uniform) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, dist.Rand())
		}
	}
}

func drawMeans(dst []float64, minVal, maxVal float64, src rand.Source) {
	dist := distuv.Uniform{Min: minVal, Max: maxVal, Src: src}
	for i := range dst {
		dst[i] = dist.Rand()
	}
}

func setState(m *mat.Dense, site, year int, occupied bool) {
	if occupied {
		m.Set(site, year, 1)
	} else {
		m.Set(site, year, 0)
	}
}

// Dataset reshapes the raw detections and labels the covariates with their
// canonical names, producing the dataset the candidate models are fitted to.
func (r *Result) Dataset() (*colext.Dataset, error) {
	wide, err := colext.Reshape(r.Design, r.Detections)
	if err != nil {
		return nil, err
	}
	return colext.NewDataset(r.Design, wide,
		map[string][]float64{CovElevation: r.Elevation},
		map[string]*mat.Dense{
			CovPrecipitation: r.Precipitation,
			CovForest:        r.Forest,
		},
		map[string]*mat.Dense{CovEffort: r.Effort},
	)
}

// TrueOccupied returns the yearly count of occupied sites in the latent
// states.
func (r *Result) TrueOccupied() []int {
	counts := make([]int, r.Design.Years)
	for t := 0; t < r.Design.Years; t++ {
		for i := 0; i < r.Design.Sites; i++ {
			if r.TrueStates.At(i, t) == 1 {
				counts[t]++
			}
		}
	}
	return counts
}
