// simulate.go draws synthetic detection histories from a fitted model. The
// parametric bootstrap refits these draws to build the null distribution of
// its fit statistics.
package colext

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// Simulate draws one detection matrix from the fitted parameters, preserving
// the dataset's covariates and its missingness pattern. The caller owns the
// generator, so independent trials can run on independent streams.
func (m *FittedModel) Simulate(rng *rand.Rand) *mat.Dense {
	b := m.resolve()
	d := b.design
	out := mat.NewDense(d.Sites, d.SecondaryPeriods(), nil)

	for site := 0; site < d.Sites; site++ {
		occupied := rng.Float64() < b.psiProb(m.Coefs, site)
		for t := 0; t < d.Years; t++ {
			if t > 0 {
				if occupied {
					occupied = rng.Float64() < b.phiProb(m.Coefs, site, t-1)
				} else {
					occupied = rng.Float64() < b.gammaProb(m.Coefs, site, t-1)
				}
			}
			for o := 0; o < d.Occasions; o++ {
				col := d.Column(t, o)
				if math.IsNaN(m.Data.Observations.At(site, col)) {
					out.Set(site, col, math.NaN())
					continue
				}
				y := 0.0
				if occupied && rng.Float64() < b.detProb(m.Coefs, site, col) {
					y = 1
				}
				out.Set(site, col, y)
			}
		}
	}
	return out
}
