// formula.go defines the linear predictor formulas and the model
// specifications built from them. Each of the four occupancy parameters gets
// an intercept plus at most one named covariate on the logit scale.
package colext

import (
	"fmt"
	"strings"

	"github.com/ecostats/dynocc-go/internal/errors"
)

// Formula selects the linear predictor for one parameter: an intercept alone,
// or an intercept plus one named covariate.
type Formula struct {
	// Covariate names the dataset covariate whose effect is estimated.
	// Empty means intercept-only.
	Covariate string
}

// Intercept returns the constant formula.
func Intercept() Formula {
	return Formula{}
}

// WithCovariate returns a formula with an intercept and one covariate effect.
func WithCovariate(name string) Formula {
	return Formula{Covariate: name}
}

// HasCovariate reports whether the formula estimates a covariate effect.
func (f Formula) HasCovariate() bool {
	return f.Covariate != ""
}

// Terms returns the number of coefficients the formula contributes.
func (f Formula) Terms() int {
	if f.HasCovariate() {
		return 2
	}
	return 1
}

func (f Formula) String() string {
	if f.HasCovariate() {
		return f.Covariate
	}
	return "."
}

// NestedIn reports whether f is a special case of rich: intercept-only
// formulas nest in anything, covariate formulas only in themselves.
func (f Formula) NestedIn(rich Formula) bool {
	return !f.HasCovariate() || f.Covariate == rich.Covariate
}

// ModelSpec names one candidate model and assigns a formula to each of the
// four parameters of the dynamic occupancy model.
type ModelSpec struct {
	Name  string
	Psi   Formula // initial occupancy
	Gamma Formula // colonization
	Phi   Formula // persistence
	P     Formula // detection
}

// NumParams returns the total coefficient count, the K in AIC.
func (s ModelSpec) NumParams() int {
	return s.Psi.Terms() + s.Gamma.Terms() + s.Phi.Terms() + s.P.Terms()
}

// String renders the spec in the compact psi(..)gam(..)phi(..)p(..) notation,
// a dot marking an intercept-only parameter.
func (s ModelSpec) String() string {
	return fmt.Sprintf("psi(%s)gam(%s)phi(%s)p(%s)", s.Psi, s.Gamma, s.Phi, s.P)
}

// CoefNames returns display names for the packed coefficient vector, in the
// order Fit stores it: psi block, gamma block, phi block, p block.
func (s ModelSpec) CoefNames() []string {
	names := make([]string, 0, s.NumParams())
	for _, block := range []struct {
		label   string
		formula Formula
	}{
		{"psi", s.Psi},
		{"gam", s.Gamma},
		{"phi", s.Phi},
		{"p", s.P},
	} {
		names = append(names, block.label+"(Int)")
		if block.formula.HasCovariate() {
			names = append(names, block.label+"("+block.formula.Covariate+")")
		}
	}
	return names
}

// NestedIn reports whether s is nested in rich: every parameter's formula must
// be a special case of the richer model's formula for that parameter.
func (s ModelSpec) NestedIn(rich ModelSpec) bool {
	return s.Psi.NestedIn(rich.Psi) &&
		s.Gamma.NestedIn(rich.Gamma) &&
		s.Phi.NestedIn(rich.Phi) &&
		s.P.NestedIn(rich.P)
}

// Validate checks the spec is usable: a non-empty name and covariate names
// without whitespace.
func (s ModelSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return errors.Newf("model specification has no name").
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	}
	for _, f := range []Formula{s.Psi, s.Gamma, s.Phi, s.P} {
		if f.Covariate != strings.TrimSpace(f.Covariate) {
			return errors.Newf("model %s references covariate %q with surrounding whitespace",
				s.Name, f.Covariate).
				Component("colext").
				Category(errors.CategoryValidation).
				Build()
		}
	}
	return nil
}
