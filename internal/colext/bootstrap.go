// bootstrap.go runs the two resampling procedures built on refits: the
// parametric goodness-of-fit bootstrap and the nonparametric site bootstrap
// for trajectory standard errors. Trials run on a bounded worker pool; every
// trial draws from its own deterministic substream of the procedure seed, so
// results are identical at any worker count.
package colext

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/ecostats/dynocc-go/internal/cpuspec"
	"github.com/ecostats/dynocc-go/internal/errors"
)

// GOFOptions configures the parametric bootstrap goodness-of-fit assessment.
type GOFOptions struct {
	// Trials is the number of simulated datasets to refit.
	Trials int
	// Seed feeds the per-trial substreams.
	Seed uint64
	// Workers bounds the concurrent refits; zero picks a count from the CPU.
	Workers int
	// Fit carries the optimizer settings for the refits.
	Fit FitOptions
}

// StatResult locates one observed fit statistic within its simulated null
// distribution.
type StatResult struct {
	Name      string
	Observed  float64
	Simulated []float64 // one value per successful trial, in trial order
	PValue    float64
}

// GOFResult is the outcome of ParametricBootstrap.
type GOFResult struct {
	Model    string
	Trials   int
	Failed   int
	Stats    []StatResult
	Duration time.Duration
}

// ParametricBootstrap simulates datasets from the fitted model, refits the
// same specification to each, and locates the observed statistics within the
// simulated null distributions. The p-value is (1+b)/(N+1) where b counts
// simulated statistics at least as extreme as the observed one. Trials whose
// refit fails are dropped from the distribution and counted in Failed.
func ParametricBootstrap(ctx context.Context, m *FittedModel, stats []FitStat, opts GOFOptions) (*GOFResult, error) {
	if opts.Trials < 1 {
		return nil, errors.Newf("goodness-of-fit bootstrap needs at least one trial, got %d", opts.Trials).
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	}
	if len(stats) == 0 {
		stats = DefaultFitStats()
	}

	observed := make([]float64, len(stats))
	for k, s := range stats {
		observed[k] = s.Compute(m)
	}

	began := time.Now()
	trialStats := make([][]float64, opts.Trials) // nil entry marks a failed trial

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(resolveWorkers(opts.Workers))
	for trial := 0; trial < opts.Trials; trial++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(trial)))
			sim := m.Data.WithObservations(m.Simulate(rng))
			refit, err := Fit(m.Spec, sim, opts.Fit)
			if err != nil {
				// Non-fatal, the trial just drops out of the distribution.
				GetLogger().Debug("bootstrap refit failed",
					"model", m.Spec.Name,
					"trial", trial,
					"error", err)
				return nil
			}
			vals := make([]float64, len(stats))
			for k, s := range stats {
				vals[k] = s.Compute(refit)
			}
			trialStats[trial] = vals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.New(err).
			Component("colext").
			Category(errors.CategoryCancellation).
			ModelContext(m.Spec.Name, m.K()).
			Build()
	}

	ok := 0
	for _, vals := range trialStats {
		if vals != nil {
			ok++
		}
	}
	if ok == 0 {
		return nil, errors.Newf("all %d bootstrap refits of model %s failed", opts.Trials, m.Spec.Name).
			Component("colext").
			Category(errors.CategoryBootstrap).
			ModelContext(m.Spec.Name, m.K()).
			Build()
	}

	result := &GOFResult{
		Model:    m.Spec.Name,
		Trials:   opts.Trials,
		Failed:   opts.Trials - ok,
		Stats:    make([]StatResult, len(stats)),
		Duration: time.Since(began),
	}
	for k, s := range stats {
		sim := make([]float64, 0, ok)
		extreme := 0
		for _, vals := range trialStats {
			if vals == nil {
				continue
			}
			sim = append(sim, vals[k])
			if vals[k] >= observed[k] {
				extreme++
			}
		}
		result.Stats[k] = StatResult{
			Name:      s.Name,
			Observed:  observed[k],
			Simulated: sim,
			PValue:    float64(1+extreme) / float64(1+len(sim)),
		}
	}

	GetLogger().Info("goodness-of-fit bootstrap finished",
		"model", m.Spec.Name,
		"trials", opts.Trials,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// NonparOptions configures the nonparametric site bootstrap.
type NonparOptions struct {
	// Resamples is the number of with-replacement site resamples to refit.
	Resamples int
	// Seed feeds the per-resample substreams.
	Seed uint64
	// Workers bounds the concurrent refits; zero picks a count from the CPU.
	Workers int
	// Fit carries the optimizer settings for the refits.
	Fit FitOptions
}

// NonparResult carries the bootstrap standard errors of the expected
// occupied-site count per year.
type NonparResult struct {
	Model      string
	Resamples  int
	Failed     int
	ExpectedSE []float64 // per year, on the site-count scale
	Duration   time.Duration
}

// NonparametricBootstrap resamples sites with replacement, refits the model to
// each resample, and returns the standard deviation of the expected
// occupied-site count per year across resamples.
func NonparametricBootstrap(ctx context.Context, m *FittedModel, opts NonparOptions) (*NonparResult, error) {
	if opts.Resamples < 2 {
		return nil, errors.Newf("nonparametric bootstrap needs at least two resamples, got %d", opts.Resamples).
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	}

	d := m.Data.Design
	began := time.Now()
	expected := make([][]float64, opts.Resamples) // nil entry marks a failed resample

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(resolveWorkers(opts.Workers))
	for b := 0; b < opts.Resamples; b++ {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(b)))
			idx := make([]int, d.Sites)
			for i := range idx {
				idx[i] = rng.IntN(d.Sites)
			}
			resampled, err := m.Data.Resample(idx)
			if err != nil {
				return err
			}
			refit, err := Fit(m.Spec, resampled, opts.Fit)
			if err != nil {
				GetLogger().Debug("bootstrap resample refit failed",
					"model", m.Spec.Name,
					"resample", b,
					"error", err)
				return nil
			}
			expected[b] = refit.ExpectedOccupied()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.New(err).
				Component("colext").
				Category(errors.CategoryCancellation).
				ModelContext(m.Spec.Name, m.K()).
				Build()
		}
		return nil, err
	}

	ok := 0
	for _, vals := range expected {
		if vals != nil {
			ok++
		}
	}
	if ok < 2 {
		return nil, errors.Newf("nonparametric bootstrap of model %s kept %d of %d resamples, need at least two",
			m.Spec.Name, ok, opts.Resamples).
			Component("colext").
			Category(errors.CategoryBootstrap).
			ModelContext(m.Spec.Name, m.K()).
			Build()
	}

	ses := make([]float64, d.Years)
	column := make([]float64, 0, ok)
	for t := 0; t < d.Years; t++ {
		column = column[:0]
		for _, vals := range expected {
			if vals == nil {
				continue
			}
			column = append(column, vals[t])
		}
		ses[t] = stat.StdDev(column, nil)
		if math.IsNaN(ses[t]) {
			ses[t] = 0
		}
	}

	result := &NonparResult{
		Model:      m.Spec.Name,
		Resamples:  opts.Resamples,
		Failed:     opts.Resamples - ok,
		ExpectedSE: ses,
		Duration:   time.Since(began),
	}
	GetLogger().Info("nonparametric bootstrap finished",
		"model", m.Spec.Name,
		"resamples", opts.Resamples,
		"failed", result.Failed,
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// resolveWorkers maps the configured worker count to the pool size, between 1
// and 8 workers. Unset counts come from the CPU's performance cores.
func resolveWorkers(requested int) int {
	workers := requested
	if workers <= 0 {
		workers = cpuspec.GetCPUSpec().GetOptimalThreadCount()
	}
	return clampInt(workers, 1, 8)
}

// clampInt ensures a value is between min and max (inclusive).
func clampInt(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
