// run.go drives one end-to-end pipeline execution. Every stage takes the
// previous stage's output as an explicit value; nothing is shared through
// package state, so a run is reproducible from its settings alone.
package analysis

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ecostats/dynocc-go/internal/colext"
	"github.com/ecostats/dynocc-go/internal/conf"
	"github.com/ecostats/dynocc-go/internal/datasetio"
	"github.com/ecostats/dynocc-go/internal/errors"
	"github.com/ecostats/dynocc-go/internal/simulation"
)

// PipelineResult gathers everything one pipeline run produced. Stage failures
// that do not invalidate the rest of the run are recorded in the Err fields
// instead of aborting.
type PipelineResult struct {
	Design     colext.SurveyDesign
	Dataset    *colext.Dataset
	TrueCounts []int // nil when the latent states are unknown

	// TrueStates is the full latent occupancy matrix when the dataset was
	// simulated in this run, nil otherwise. Dataset export includes it.
	TrueStates *mat.Dense

	Battery *Battery
	Ranking []RankedModel

	// Selected names the model feeding goodness of fit, the nonparametric
	// bootstrap and the trajectory: the configured model when available,
	// otherwise the AIC best.
	Selected string

	LRT    *colext.LRTResult
	LRTErr error

	GOF    *colext.GOFResult
	GOFErr error

	Bootstrap    *colext.NonparResult
	BootstrapErr error

	Trajectory []TrajectoryRow

	Elapsed time.Duration
}

// Run prepares a dataset according to the settings, generating a synthetic
// survey or loading one from the input directory, and executes the pipeline
// on it.
func Run(ctx context.Context, settings *conf.Settings) (*PipelineResult, error) {
	if settings.Input.Path != "" {
		ds, trueCounts, err := datasetio.Load(settings.Input.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("dataset loaded",
			"path", settings.Input.Path,
			"sites", ds.Design.Sites,
			"years", ds.Design.Years,
			"occasions", ds.Design.Occasions,
			"truth", trueCounts != nil)
		return Execute(ctx, settings, ds, trueCounts)
	}

	generated, err := simulation.Generate(simulation.FromSettings(settings))
	if err != nil {
		return nil, err
	}
	ds, err := generated.Dataset()
	if err != nil {
		return nil, err
	}
	result, err := Execute(ctx, settings, ds, generated.TrueOccupied())
	if err != nil {
		return nil, err
	}
	result.TrueStates = generated.TrueStates
	return result, nil
}

// Execute runs fitting, ranking, the likelihood ratio test, goodness of fit,
// the nonparametric bootstrap and the trajectory assembly on a prepared
// dataset.
func Execute(ctx context.Context, settings *conf.Settings, ds *colext.Dataset, trueCounts []int) (*PipelineResult, error) {
	began := time.Now()
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	fitOpts := colext.FitOptions{
		MaxIterations: settings.Fitting.MaxIterations,
		Tolerance:     settings.Fitting.Tolerance,
	}
	result := &PipelineResult{
		Design:     ds.Design,
		Dataset:    ds,
		TrueCounts: trueCounts,
	}

	result.Battery = FitBattery(CandidateSpecs(), ds, fitOpts)
	result.Ranking = result.Battery.Ranking()
	if len(result.Ranking) == 0 {
		return nil, errors.Newf("no candidate model converged").
			Component("analysis").
			Category(errors.CategoryNonConvergence).
			Context("failed", result.Battery.Failed()).
			Build()
	}

	result.LRT, result.LRTErr = runLRT(result.Battery, settings)
	if result.LRTErr != nil {
		logger.Warn("likelihood ratio test failed",
			"simple", settings.Selection.LRT.Simple,
			"rich", settings.Selection.LRT.Rich,
			"error", result.LRTErr)
	}

	selected := result.Ranking[0].Model
	result.Selected = result.Ranking[0].Name
	if name := settings.GOF.Model; name != "" {
		named, err := result.Battery.Model(name)
		if err != nil {
			logger.Warn("configured model unavailable, falling back to AIC best",
				"model", name,
				"best", result.Selected,
				"error", err)
			result.GOFErr = err
		} else {
			selected = named
			result.Selected = name
		}
	}

	if settings.GOF.Enabled && result.GOFErr == nil {
		gof, err := colext.ParametricBootstrap(ctx, selected, colext.DefaultFitStats(), colext.GOFOptions{
			Trials:  settings.GOF.Trials,
			Seed:    settings.GOF.Seed,
			Workers: settings.GOF.Workers,
			Fit:     fitOpts,
		})
		switch {
		case err == nil:
			result.GOF = gof
		case errors.IsCategory(err, errors.CategoryCancellation):
			return nil, err
		default:
			logger.Warn("goodness-of-fit assessment failed",
				"model", result.Selected,
				"error", err)
			result.GOFErr = err
		}
	}

	boot, err := colext.NonparametricBootstrap(ctx, selected, colext.NonparOptions{
		Resamples: settings.Bootstrap.Resamples,
		Seed:      settings.Bootstrap.Seed,
		Workers:   settings.Bootstrap.Workers,
		Fit:       fitOpts,
	})
	switch {
	case err == nil:
		result.Bootstrap = boot
	case errors.IsCategory(err, errors.CategoryCancellation):
		return nil, err
	default:
		logger.Warn("trajectory bootstrap failed, standard errors unavailable",
			"model", result.Selected,
			"error", err)
		result.BootstrapErr = err
	}

	var stdErrs []float64
	if result.Bootstrap != nil {
		stdErrs = result.Bootstrap.ExpectedSE
	}
	result.Trajectory = BuildTrajectory(trueCounts, ds.ObservedOccupied(), selected.ExpectedOccupied(), stdErrs)

	result.Elapsed = time.Since(began)
	logger.Info("pipeline finished",
		"candidates", len(result.Battery.Outcomes),
		"converged", len(result.Ranking),
		"best", result.Ranking[0].Name,
		"selected", result.Selected,
		"duration_ms", result.Elapsed.Milliseconds())
	return result, nil
}

// runLRT resolves the configured model pair and runs the test. Any failure,
// an unknown name, a failed fit or non-nested models, is reported by the
// caller and leaves the rest of the pipeline untouched.
func runLRT(b *Battery, settings *conf.Settings) (*colext.LRTResult, error) {
	simple, err := b.Model(settings.Selection.LRT.Simple)
	if err != nil {
		return nil, err
	}
	rich, err := b.Model(settings.Selection.LRT.Rich)
	if err != nil {
		return nil, err
	}
	return colext.LikelihoodRatioTest(simple, rich)
}
