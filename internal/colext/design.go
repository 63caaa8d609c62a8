// Package colext fits dynamic (multi-season) occupancy models by maximum
// likelihood. A two-state hidden Markov chain per site links initial occupancy
// (psi), yearly colonization (gamma) and persistence (phi) to repeated
// detection/non-detection surveys with imperfect detection (p). The package
// provides the likelihood engine, model fitting, smoothed occupancy estimates,
// likelihood ratio tests, and the bootstrap machinery built on top of refits.
package colext

import (
	"github.com/ecostats/dynocc-go/internal/errors"
)

// SurveyDesign is the immutable sampling frame: Sites surveyed over Years
// primary seasons, with Occasions secondary surveys within each season.
// It defines every array shape downstream.
type SurveyDesign struct {
	Sites     int // number of surveyed sites
	Years     int // number of primary seasons
	Occasions int // secondary survey occasions within each season
}

// Validate checks that the design can support a dynamic occupancy model.
// At least two seasons are required because colonization and persistence
// describe between-season transitions.
func (d SurveyDesign) Validate() error {
	switch {
	case d.Sites < 1:
		return errors.Newf("survey design needs at least one site, got %d", d.Sites).
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	case d.Years < 2:
		return errors.Newf("survey design needs at least two primary seasons, got %d", d.Years).
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	case d.Occasions < 1:
		return errors.Newf("survey design needs at least one secondary occasion, got %d", d.Occasions).
			Component("colext").
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// SecondaryPeriods returns the column count of the wide observation layout,
// Years*Occasions.
func (d SurveyDesign) SecondaryPeriods() int {
	return d.Years * d.Occasions
}

// Column maps a zero-based (year, occasion) pair to its wide-layout column.
// Columns group by year, occasion varying fastest.
func (d SurveyDesign) Column(year, occasion int) int {
	return year*d.Occasions + occasion
}

// YearOccasion is the inverse of Column.
func (d SurveyDesign) YearOccasion(column int) (year, occasion int) {
	return column / d.Occasions, column % d.Occasions
}
