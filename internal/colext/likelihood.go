// likelihood.go evaluates the dynamic occupancy likelihood. Each site
// contributes one two-state hidden Markov chain over the primary seasons;
// the forward pass is rescaled every season so long histories stay inside
// floating point range.
package colext

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ecostats/dynocc-go/internal/errors"
)

// InvLogit maps a logit-scale value to a probability, stable for large |x|.
func InvLogit(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Logit maps a probability in (0,1) to the logit scale.
func Logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// binding resolves a model specification against a dataset once, so the
// optimizer's hot path reads raw slices instead of map lookups. Coefficient
// vectors are packed psi block first, then gamma, phi and p.
type binding struct {
	spec   ModelSpec
	design SurveyDesign
	obs    *mat.Dense

	psiCov []float64  // nil when intercept-only
	gamCov *mat.Dense // Sites x (Years-1), nil when intercept-only
	phiCov *mat.Dense // Sites x (Years-1), nil when intercept-only
	pCov   *mat.Dense // Sites x (Years*Occasions), nil when intercept-only

	gamOff, phiOff, pOff int // psi block starts at 0
	n                    int
}

// newBinding checks that every covariate the spec references exists in the
// dataset and precomputes the coefficient block offsets.
func newBinding(spec ModelSpec, ds *Dataset) (*binding, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	b := &binding{
		spec:   spec,
		design: ds.Design,
		obs:    ds.Observations,
	}
	if name := spec.Psi.Covariate; name != "" {
		vals, ok := ds.SiteCovs[name]
		if !ok {
			return nil, missingCovariate(spec.Name, "site", name)
		}
		b.psiCov = vals
	}
	if name := spec.Gamma.Covariate; name != "" {
		m, ok := ds.YearlyCovs[name]
		if !ok {
			return nil, missingCovariate(spec.Name, "yearly", name)
		}
		b.gamCov = m
	}
	if name := spec.Phi.Covariate; name != "" {
		m, ok := ds.YearlyCovs[name]
		if !ok {
			return nil, missingCovariate(spec.Name, "yearly", name)
		}
		b.phiCov = m
	}
	if name := spec.P.Covariate; name != "" {
		m, ok := ds.ObsCovs[name]
		if !ok {
			return nil, missingCovariate(spec.Name, "observation", name)
		}
		b.pCov = m
	}
	b.gamOff = spec.Psi.Terms()
	b.phiOff = b.gamOff + spec.Gamma.Terms()
	b.pOff = b.phiOff + spec.Phi.Terms()
	b.n = b.pOff + spec.P.Terms()
	return b, nil
}

func missingCovariate(model, kind, name string) error {
	return errors.Newf("model %s references unknown %s covariate %q", model, kind, name).
		Component("colext").
		Category(errors.CategoryNotFound).
		Context("model", model).
		Context("covariate", name).
		Build()
}

func (b *binding) nParams() int {
	return b.n
}

// psiProb returns the initial occupancy probability for a site.
func (b *binding) psiProb(coefs []float64, site int) float64 {
	x := coefs[0]
	if b.psiCov != nil {
		x += coefs[1] * b.psiCov[site]
	}
	return InvLogit(x)
}

// gammaProb returns the colonization probability for the interval between
// seasons t and t+1 (interval index t, zero-based).
func (b *binding) gammaProb(coefs []float64, site, interval int) float64 {
	x := coefs[b.gamOff]
	if b.gamCov != nil {
		x += coefs[b.gamOff+1] * b.gamCov.At(site, interval)
	}
	return InvLogit(x)
}

// phiProb returns the persistence probability for the interval between
// seasons t and t+1.
func (b *binding) phiProb(coefs []float64, site, interval int) float64 {
	x := coefs[b.phiOff]
	if b.phiCov != nil {
		x += coefs[b.phiOff+1] * b.phiCov.At(site, interval)
	}
	return InvLogit(x)
}

// detProb returns the detection probability for one secondary period
// (wide-layout column), conditional on occupancy.
func (b *binding) detProb(coefs []float64, site, column int) float64 {
	x := coefs[b.pOff]
	if b.pCov != nil {
		x += coefs[b.pOff+1] * b.pCov.At(site, column)
	}
	return InvLogit(x)
}

// detectionFactor returns the probability of the observed detection history in
// one season, conditional on the latent state. Missing occasions contribute
// nothing, so an all-missing season returns 1 for both states. A season with
// any detection has zero probability under the unoccupied state.
func (b *binding) detectionFactor(coefs []float64, site, year int, occupied bool) float64 {
	prob := 1.0
	for o := 0; o < b.design.Occasions; o++ {
		col := b.design.Column(year, o)
		y := b.obs.At(site, col)
		if math.IsNaN(y) {
			continue
		}
		if !occupied {
			if y == 1 {
				return 0
			}
			continue
		}
		p := b.detProb(coefs, site, col)
		if y == 1 {
			prob *= p
		} else {
			prob *= 1 - p
		}
	}
	return prob
}

// siteLogLik runs one scaled forward pass over the site's seasons and returns
// its log-likelihood contribution. The bool is false when the history has zero
// probability or the arithmetic degenerates.
func (b *binding) siteLogLik(coefs []float64, site int) (float64, bool) {
	psi := b.psiProb(coefs, site)
	a0 := (1 - psi) * b.detectionFactor(coefs, site, 0, false)
	a1 := psi * b.detectionFactor(coefs, site, 0, true)

	ll := 0.0
	scale := a0 + a1
	if scale <= 0 || math.IsNaN(scale) {
		return 0, false
	}
	ll += math.Log(scale)
	a0 /= scale
	a1 /= scale

	for t := 1; t < b.design.Years; t++ {
		gamma := b.gammaProb(coefs, site, t-1)
		phi := b.phiProb(coefs, site, t-1)
		n0 := a0*(1-gamma) + a1*(1-phi)
		n1 := a0*gamma + a1*phi
		a0 = n0 * b.detectionFactor(coefs, site, t, false)
		a1 = n1 * b.detectionFactor(coefs, site, t, true)
		scale = a0 + a1
		if scale <= 0 || math.IsNaN(scale) {
			return 0, false
		}
		ll += math.Log(scale)
		a0 /= scale
		a1 /= scale
	}
	return ll, true
}

// negLogLik evaluates the negative log-likelihood at the packed coefficient
// vector. Degenerate evaluations return +Inf, which the optimizer treats as an
// out-of-bounds step.
func (b *binding) negLogLik(coefs []float64) float64 {
	total := 0.0
	for site := 0; site < b.design.Sites; site++ {
		ll, ok := b.siteLogLik(coefs, site)
		if !ok {
			return math.Inf(1)
		}
		total += ll
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return math.Inf(1)
	}
	return -total
}
