// stats.go holds the scalar discrepancy statistics the goodness-of-fit
// bootstrap resamples, and the likelihood ratio test between nested fits.
package colext

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ecostats/dynocc-go/internal/errors"
)

// FitStat is a scalar discrepancy between a fitted model and its data. Larger
// values mean worse fit.
type FitStat struct {
	Name    string
	Compute func(*FittedModel) float64
}

// DefaultFitStats returns the statistics the goodness-of-fit assessment
// reports: the sum of squared residuals and the Freeman-Tukey discrepancy.
func DefaultFitStats() []FitStat {
	return []FitStat{
		{Name: "SSE", Compute: SSE},
		{Name: "Freeman-Tukey", Compute: FreemanTukey},
	}
}

// SSE sums the squared detection residuals over all surveyed occasions.
func SSE(m *FittedModel) float64 {
	res := m.Residuals()
	d := m.Data.Design
	sum := 0.0
	for site := 0; site < d.Sites; site++ {
		for col := 0; col < d.SecondaryPeriods(); col++ {
			r := res.At(site, col)
			if math.IsNaN(r) {
				continue
			}
			sum += r * r
		}
	}
	return sum
}

// FreemanTukey sums the squared differences between the square roots of
// observed and fitted detections over all surveyed occasions, a chi-square
// style discrepancy that stays stable for small expected values.
func FreemanTukey(m *FittedModel) float64 {
	fitted := m.Fitted()
	d := m.Data.Design
	sum := 0.0
	for site := 0; site < d.Sites; site++ {
		for col := 0; col < d.SecondaryPeriods(); col++ {
			y := m.Data.Observations.At(site, col)
			if math.IsNaN(y) {
				continue
			}
			diff := math.Sqrt(y) - math.Sqrt(fitted.At(site, col))
			sum += diff * diff
		}
	}
	return sum
}

// LRTResult summarizes a likelihood ratio test between two nested fits.
type LRTResult struct {
	Simple    string  // name of the reduced model
	Rich      string  // name of the richer model
	Statistic float64 // 2 * (logLik rich - logLik simple)
	DF        int     // parameter count difference
	PValue    float64 // upper chi-square tail probability
}

// LikelihoodRatioTest compares a reduced model against a richer model it is
// nested in. Both fits must come from the same dataset.
func LikelihoodRatioTest(simple, rich *FittedModel) (*LRTResult, error) {
	if simple.Data.Design != rich.Data.Design {
		return nil, errors.Newf("likelihood ratio test needs models fitted to the same dataset, got %v and %v",
			simple.Data.Design, rich.Data.Design).
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	}
	if !simple.Spec.NestedIn(rich.Spec) {
		return nil, errors.Newf("model %s is not nested in model %s", simple.Spec.Name, rich.Spec.Name).
			Component("colext").
			Category(errors.CategoryNonNested).
			Context("simple", simple.Spec.Name).
			Context("rich", rich.Spec.Name).
			Build()
	}
	df := rich.K() - simple.K()
	if df <= 0 {
		return nil, errors.Newf("model %s adds no parameters over model %s, nothing to test",
			rich.Spec.Name, simple.Spec.Name).
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	}

	stat := 2 * (rich.LogLik - simple.LogLik)
	if stat < 0 {
		// A properly nested pair cannot have a negative statistic; tiny
		// negative values arise from optimizer tolerance.
		GetLogger().Debug("clamping negative likelihood ratio statistic",
			"simple", simple.Spec.Name,
			"rich", rich.Spec.Name,
			"statistic", stat)
		stat = 0
	}
	dist := distuv.ChiSquared{K: float64(df)}
	return &LRTResult{
		Simple:    simple.Spec.Name,
		Rich:      rich.Spec.Name,
		Statistic: stat,
		DF:        df,
		PValue:    dist.Survival(stat),
	}, nil
}
