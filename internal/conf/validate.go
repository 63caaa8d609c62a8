// conf/validate.go

package conf

import (
	"errors"
	"fmt"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	// Validate survey design
	if err := validateSurveySettings(&settings.Survey); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate simulation settings
	if err := validateSimulationSettings(&settings.Simulation); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate fitting settings
	if err := validateFittingSettings(&settings.Fitting); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate selection settings
	if err := validateSelectionSettings(&settings.Selection); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate goodness-of-fit settings
	if err := validateGOFSettings(&settings.GOF); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate bootstrap settings
	if err := validateBootstrapSettings(&settings.Bootstrap); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// Validate output settings
	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	// If there are any errors, return the ValidationError
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateSurveySettings validates the survey design dimensions
func validateSurveySettings(settings *SurveyConfig) error {
	var errs []string

	if settings.Sites < 1 {
		errs = append(errs, "survey sites must be at least 1")
	}

	// Transition probabilities need at least two seasons
	if settings.Years < 2 {
		errs = append(errs, "survey years must be at least 2")
	}

	if settings.Occasions < 1 {
		errs = append(errs, "survey occasions must be at least 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("survey settings errors: %v", errs)
	}

	return nil
}

// validateSimulationSettings validates the simulation parameter set
func validateSimulationSettings(settings *SimulationConfig) error {
	var errs []string

	if settings.MeanPsi1 <= 0 || settings.MeanPsi1 >= 1 {
		errs = append(errs, "simulation meanpsi1 must be strictly between 0 and 1")
	}

	for _, pr := range []struct {
		name string
		r    Range
	}{
		{"phirange", settings.PhiRange},
		{"gammarange", settings.GammaRange},
		{"prange", settings.PRange},
	} {
		if pr.r.Min < 0 || pr.r.Max > 1 {
			errs = append(errs, fmt.Sprintf("simulation %s must lie within [0, 1]", pr.name))
		}
		if pr.r.Min > pr.r.Max {
			errs = append(errs, fmt.Sprintf("simulation %s min must not exceed max", pr.name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("simulation settings errors: %v", errs)
	}

	return nil
}

// validateFittingSettings validates the optimizer settings
func validateFittingSettings(settings *FittingConfig) error {
	var errs []string

	if settings.MaxIterations < 1 {
		errs = append(errs, "fitting maxiterations must be at least 1")
	}

	if settings.Tolerance <= 0 {
		errs = append(errs, "fitting tolerance must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("fitting settings errors: %v", errs)
	}

	return nil
}

// validateSelectionSettings validates the model comparison settings
func validateSelectionSettings(settings *SelectionConfig) error {
	if settings.LRT.Simple == "" || settings.LRT.Rich == "" {
		return errors.New("selection lrt model names must not be empty")
	}

	if settings.LRT.Simple == settings.LRT.Rich {
		return errors.New("selection lrt simple and rich must name different models")
	}

	return nil
}

// validateGOFSettings validates the goodness-of-fit bootstrap settings
func validateGOFSettings(settings *GOFConfig) error {
	var errs []string

	if settings.Enabled && settings.Trials < 1 {
		errs = append(errs, "gof trials must be at least 1 when enabled")
	}

	if settings.Workers < 0 {
		errs = append(errs, "gof workers must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("gof settings errors: %v", errs)
	}

	return nil
}

// validateBootstrapSettings validates the nonparametric bootstrap settings
func validateBootstrapSettings(settings *BootstrapConfig) error {
	var errs []string

	if settings.Resamples < 1 {
		errs = append(errs, "bootstrap resamples must be at least 1")
	}

	if settings.Workers < 0 {
		errs = append(errs, "bootstrap workers must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("bootstrap settings errors: %v", errs)
	}

	return nil
}

// validateOutputSettings validates the output artifact settings
func validateOutputSettings(settings *OutputConfig) error {
	var errs []string

	if settings.File.Enabled {
		switch settings.File.Type {
		case "table", "csv", "":
			// Empty string falls back to table output
		default:
			errs = append(errs, fmt.Sprintf("output file type must be table or csv, got %s", settings.File.Type))
		}
	}

	if settings.Chart.Enabled {
		switch settings.Chart.Format {
		case "png", "html", "both":
		default:
			errs = append(errs, fmt.Sprintf("output chart format must be png, html or both, got %s", settings.Chart.Format))
		}

		if settings.Chart.Width < 100 || settings.Chart.Height < 100 {
			errs = append(errs, "output chart dimensions must be at least 100 pixels")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("output settings errors: %v", errs)
	}

	return nil
}
