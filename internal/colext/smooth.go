// smooth.go derives occupancy estimates from a fitted model: the smoothed
// (forward-backward) posterior of the latent states, the projected marginal
// trajectory, and the fitted detection probabilities with their residuals.
package colext

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// resolve returns the model's covariate binding, rebuilding it when the model
// was reconstructed outside Fit. The spec and data of a fitted model are
// consistent, so a rebuild failure is a programming error.
func (m *FittedModel) resolve() *binding {
	if m.bind == nil {
		b, err := newBinding(m.Spec, m.Data)
		if err != nil {
			panic(fmt.Sprintf("colext: inconsistent fitted model %s: %v", m.Spec.Name, err))
		}
		m.bind = b
	}
	return m.bind
}

// SmoothedOccupancy returns the posterior probability that each site was
// occupied in each season, conditional on the site's full detection history.
// The result is Sites x Years.
func (m *FittedModel) SmoothedOccupancy() *mat.Dense {
	b := m.resolve()
	d := b.design
	out := mat.NewDense(d.Sites, d.Years, nil)

	for site := 0; site < d.Sites; site++ {
		alpha := make([][2]float64, d.Years)
		beta := make([][2]float64, d.Years)

		// Forward pass, renormalized each season.
		psi := b.psiProb(m.Coefs, site)
		a0 := (1 - psi) * b.detectionFactor(m.Coefs, site, 0, false)
		a1 := psi * b.detectionFactor(m.Coefs, site, 0, true)
		normalize2(&a0, &a1)
		alpha[0] = [2]float64{a0, a1}
		for t := 1; t < d.Years; t++ {
			gamma := b.gammaProb(m.Coefs, site, t-1)
			phi := b.phiProb(m.Coefs, site, t-1)
			n0 := a0*(1-gamma) + a1*(1-phi)
			n1 := a0*gamma + a1*phi
			a0 = n0 * b.detectionFactor(m.Coefs, site, t, false)
			a1 = n1 * b.detectionFactor(m.Coefs, site, t, true)
			normalize2(&a0, &a1)
			alpha[t] = [2]float64{a0, a1}
		}

		// Backward pass, same renormalization so products stay bounded.
		beta[d.Years-1] = [2]float64{1, 1}
		for t := d.Years - 2; t >= 0; t-- {
			gamma := b.gammaProb(m.Coefs, site, t)
			phi := b.phiProb(m.Coefs, site, t)
			d0 := b.detectionFactor(m.Coefs, site, t+1, false)
			d1 := b.detectionFactor(m.Coefs, site, t+1, true)
			b0 := (1-gamma)*d0*beta[t+1][0] + gamma*d1*beta[t+1][1]
			b1 := (1-phi)*d0*beta[t+1][0] + phi*d1*beta[t+1][1]
			normalize2(&b0, &b1)
			beta[t] = [2]float64{b0, b1}
		}

		for t := 0; t < d.Years; t++ {
			num := alpha[t][1] * beta[t][1]
			den := alpha[t][0]*beta[t][0] + num
			if den > 0 {
				out.Set(site, t, num/den)
			} else {
				// Zero-probability corner, fall back to the filtered estimate.
				out.Set(site, t, alpha[t][1])
			}
		}
	}
	return out
}

func normalize2(a, b *float64) {
	s := *a + *b
	if s > 0 {
		*a /= s
		*b /= s
	}
}

// SmoothedMean returns the yearly mean of the smoothed occupancy across sites,
// the finite-sample analogue of the occupancy probability trajectory.
func (m *FittedModel) SmoothedMean() []float64 {
	sm := m.SmoothedOccupancy()
	d := m.Data.Design
	means := make([]float64, d.Years)
	for t := 0; t < d.Years; t++ {
		sum := 0.0
		for site := 0; site < d.Sites; site++ {
			sum += sm.At(site, t)
		}
		means[t] = sum / float64(d.Sites)
	}
	return means
}

// ExpectedOccupied returns the expected number of occupied sites per year,
// the smoothed mean scaled by the site count.
func (m *FittedModel) ExpectedOccupied() []float64 {
	means := m.SmoothedMean()
	out := make([]float64, len(means))
	for t, v := range means {
		out[t] = v * float64(m.Data.Design.Sites)
	}
	return out
}

// ProjectedOccupancy returns the marginal occupancy probability per site and
// season obtained by iterating the initial occupancy through the
// colonization/persistence recursion. Unlike the smoothed estimate it ignores
// the detection data. The result is Sites x Years.
func (m *FittedModel) ProjectedOccupancy() *mat.Dense {
	b := m.resolve()
	d := b.design
	out := mat.NewDense(d.Sites, d.Years, nil)
	for site := 0; site < d.Sites; site++ {
		psi := b.psiProb(m.Coefs, site)
		out.Set(site, 0, psi)
		for t := 1; t < d.Years; t++ {
			gamma := b.gammaProb(m.Coefs, site, t-1)
			phi := b.phiProb(m.Coefs, site, t-1)
			psi = psi*phi + (1-psi)*gamma
			out.Set(site, t, psi)
		}
	}
	return out
}

// Fitted returns the expected detection probability per site and secondary
// period, projected occupancy times detection probability. The result is
// Sites x (Years*Occasions), defined for missing occasions as well.
func (m *FittedModel) Fitted() *mat.Dense {
	b := m.resolve()
	d := b.design
	proj := m.ProjectedOccupancy()
	out := mat.NewDense(d.Sites, d.SecondaryPeriods(), nil)
	for site := 0; site < d.Sites; site++ {
		for t := 0; t < d.Years; t++ {
			psi := proj.At(site, t)
			for o := 0; o < d.Occasions; o++ {
				col := d.Column(t, o)
				out.Set(site, col, psi*b.detProb(m.Coefs, site, col))
			}
		}
	}
	return out
}

// Residuals returns observed minus fitted detection values, NaN where the
// occasion was not surveyed.
func (m *FittedModel) Residuals() *mat.Dense {
	d := m.Data.Design
	fitted := m.Fitted()
	out := mat.NewDense(d.Sites, d.SecondaryPeriods(), nil)
	for site := 0; site < d.Sites; site++ {
		for col := 0; col < d.SecondaryPeriods(); col++ {
			y := m.Data.Observations.At(site, col)
			out.Set(site, col, y-fitted.At(site, col))
		}
	}
	return out
}
