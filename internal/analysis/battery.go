// Package analysis orchestrates the occupancy pipeline: it fits the candidate
// model battery to a dataset, ranks the fits by AIC, runs the configured
// likelihood ratio test, assesses goodness of fit by parametric bootstrap, and
// assembles the yearly occupancy trajectory with nonparametric bootstrap
// standard errors.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/ecostats/dynocc-go/internal/colext"
	"github.com/ecostats/dynocc-go/internal/errors"
	"github.com/ecostats/dynocc-go/internal/simulation"
)

// Candidate model names, fixed across the pipeline and its outputs.
const (
	ModelNull   = "null"
	ModelPsi    = "psi"
	ModelGamma  = "gam"
	ModelPhi    = "phi"
	ModelP      = "p"
	ModelTrue   = "true"
	ModelGlobal = "global"
)

// CandidateSpecs returns the seven standard candidate models, from the
// constant-parameter null model to the global model with all four covariate
// effects. The "true" model matches the structure the simulator generates
// from: covariates on occupancy, colonization and persistence, constant
// detection.
func CandidateSpecs() []colext.ModelSpec {
	elev := colext.WithCovariate(simulation.CovElevation)
	precip := colext.WithCovariate(simulation.CovPrecipitation)
	forest := colext.WithCovariate(simulation.CovForest)
	effort := colext.WithCovariate(simulation.CovEffort)

	return []colext.ModelSpec{
		{Name: ModelNull},
		{Name: ModelPsi, Psi: elev},
		{Name: ModelGamma, Gamma: precip},
		{Name: ModelPhi, Phi: forest},
		{Name: ModelP, P: effort},
		{Name: ModelTrue, Psi: elev, Gamma: precip, Phi: forest},
		{Name: ModelGlobal, Psi: elev, Gamma: precip, Phi: forest, P: effort},
	}
}

// FitOutcome records one battery entry: the fitted model, or the error that
// kept it out of the ranking.
type FitOutcome struct {
	Spec  colext.ModelSpec
	Model *colext.FittedModel
	Err   error
}

// Battery holds every candidate fit attempt in battery order. A failed fit
// stays recorded so reports can name it; it simply drops out of the ranking.
type Battery struct {
	Outcomes []FitOutcome
}

// FitBattery fits every specification to the dataset, continuing past
// individual failures.
func FitBattery(specs []colext.ModelSpec, ds *colext.Dataset, opts colext.FitOptions) *Battery {
	battery := &Battery{Outcomes: make([]FitOutcome, 0, len(specs))}
	for _, spec := range specs {
		began := time.Now()
		model, err := colext.Fit(spec, ds, opts)
		outcome := FitOutcome{Spec: spec, Model: model, Err: err}
		battery.Outcomes = append(battery.Outcomes, outcome)
		if err != nil {
			logger.Warn("candidate model failed",
				"model", spec.Name,
				"formula", spec.String(),
				"error", err)
			continue
		}
		logger.Info("candidate model fitted",
			"model", spec.Name,
			"formula", spec.String(),
			"loglik", model.LogLik,
			"aic", model.AIC(),
			"params", model.K(),
			"duration_ms", time.Since(began).Milliseconds())
	}
	return battery
}

// Model returns the named fitted model, or an error when the name is unknown
// or its fit failed.
func (b *Battery) Model(name string) (*colext.FittedModel, error) {
	for i := range b.Outcomes {
		outcome := &b.Outcomes[i]
		if outcome.Spec.Name != name {
			continue
		}
		if outcome.Err != nil {
			return nil, errors.New(outcome.Err).
				Component("analysis").
				Category(errors.CategoryNonConvergence).
				Context("model", name).
				Build()
		}
		return outcome.Model, nil
	}
	return nil, errors.NotFoundError("no candidate model named %q", name)
}

// Failed returns the names of the candidates whose fit failed, in battery
// order.
func (b *Battery) Failed() []string {
	var names []string
	for i := range b.Outcomes {
		if b.Outcomes[i].Err != nil {
			names = append(names, b.Outcomes[i].Spec.Name)
		}
	}
	return names
}

// RankedModel is one row of the AIC ranking table.
type RankedModel struct {
	Rank     int
	Name     string
	Formula  string
	K        int
	LogLik   float64
	AIC      float64
	DeltaAIC float64
	Weight   float64
	Model    *colext.FittedModel
}

// Ranking sorts the converged fits by ascending AIC and attaches delta AIC
// and Akaike weights. Exact ties keep battery order.
func (b *Battery) Ranking() []RankedModel {
	var ranked []RankedModel
	for i := range b.Outcomes {
		outcome := &b.Outcomes[i]
		if outcome.Err != nil {
			continue
		}
		ranked = append(ranked, RankedModel{
			Name:    outcome.Spec.Name,
			Formula: outcome.Spec.String(),
			K:       outcome.Model.K(),
			LogLik:  outcome.Model.LogLik,
			AIC:     outcome.Model.AIC(),
			Model:   outcome.Model,
		})
	}
	if len(ranked) == 0 {
		return ranked
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AIC < ranked[j].AIC
	})

	best := ranked[0].AIC
	weightSum := 0.0
	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].DeltaAIC = ranked[i].AIC - best
		ranked[i].Weight = math.Exp(-0.5 * ranked[i].DeltaAIC)
		weightSum += ranked[i].Weight
	}
	for i := range ranked {
		ranked[i].Weight /= weightSum
	}
	return ranked
}
