// fit.go wraps the numerical optimization: maximum likelihood estimates via
// quasi-Newton search with finite-difference gradients, a simplex fallback
// when the gradient search stalls, and standard errors from the inverse
// Hessian at the optimum.
package colext

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/ecostats/dynocc-go/internal/errors"
)

// FitOptions controls the likelihood maximization.
type FitOptions struct {
	// MaxIterations caps the major iterations of each optimizer run.
	MaxIterations int
	// Tolerance is the gradient norm below which the search stops.
	Tolerance float64
}

// DefaultFitOptions returns the optimizer settings used when a zero value is
// passed to Fit.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		MaxIterations: 500,
		Tolerance:     1e-6,
	}
}

func (o FitOptions) withDefaults() FitOptions {
	def := DefaultFitOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = def.MaxIterations
	}
	if o.Tolerance <= 0 {
		o.Tolerance = def.Tolerance
	}
	return o
}

// FittedModel is one maximum-likelihood fit of a model specification to a
// dataset. All downstream estimates, the smoothed occupancy, the projected
// trajectory, fitted values and simulated datasets, derive from it without
// refitting.
type FittedModel struct {
	Spec ModelSpec
	Data *Dataset

	// Coefs holds the logit-scale estimates, packed psi, gamma, phi, p.
	Coefs []float64
	// StdErrs holds the asymptotic standard errors, NaN when the Hessian
	// could not be inverted.
	StdErrs []float64
	// LogLik is the maximized log-likelihood.
	LogLik float64

	bind *binding
}

// Coef pairs one estimated coefficient with its standard error.
type Coef struct {
	Name     string
	Estimate float64
	StdErr   float64
}

// K returns the number of estimated parameters.
func (m *FittedModel) K() int {
	return len(m.Coefs)
}

// AIC returns Akaike's information criterion, -2*logLik + 2*K.
func (m *FittedModel) AIC() float64 {
	return -2*m.LogLik + 2*float64(m.K())
}

// Coefficients returns the named estimates in packed order.
func (m *FittedModel) Coefficients() []Coef {
	names := m.Spec.CoefNames()
	coefs := make([]Coef, len(names))
	for i, name := range names {
		coefs[i] = Coef{Name: name, Estimate: m.Coefs[i], StdErr: m.StdErrs[i]}
	}
	return coefs
}

// isFailureStatus reports whether the optimizer terminated without reaching
// any convergence criterion.
func isFailureStatus(s optimize.Status) bool {
	switch s {
	case optimize.NotTerminated, optimize.Failure, optimize.IterationLimit,
		optimize.RuntimeLimit, optimize.FunctionEvaluationLimit,
		optimize.GradientEvaluationLimit:
		return true
	default:
		return false
	}
}

// Fit maximizes the likelihood of the specification on the dataset and returns
// the fitted model. A quasi-Newton search runs first; if it stalls, a simplex
// search restarts from the best point found. Failure of both returns a
// non-convergence error and no model.
func Fit(spec ModelSpec, data *Dataset, opts FitOptions) (*FittedModel, error) {
	opts = opts.withDefaults()
	bind, err := newBinding(spec, data)
	if err != nil {
		return nil, err
	}

	nll := bind.negLogLik
	problem := optimize.Problem{
		Func: nll,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, nll, x, nil)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIterations,
		GradientThreshold: opts.Tolerance,
	}

	// Zero start puts every probability at 0.5.
	start := make([]float64, bind.nParams())

	began := time.Now()
	result, optErr := optimize.Minimize(problem, start, settings, &optimize.BFGS{})
	if optErr != nil || result == nil || isFailureStatus(result.Status) || !isFinite(result.F) {
		retryFrom := start
		if result != nil && len(result.X) == bind.nParams() && isFinite(result.F) {
			retryFrom = result.X
		}
		GetLogger().Debug("gradient search stalled, retrying with simplex",
			"model", spec.Name,
			"error", optErr)
		result, optErr = optimize.Minimize(problem, retryFrom, settings, &optimize.NelderMead{})
	}
	if optErr != nil || result == nil || isFailureStatus(result.Status) || !isFinite(result.F) {
		return nil, nonConvergenceError(spec, bind, result, optErr)
	}

	model := &FittedModel{
		Spec:    spec,
		Data:    data,
		Coefs:   append([]float64(nil), result.X...),
		StdErrs: standardErrors(spec, nll, result.X),
		LogLik:  -result.F,
		bind:    bind,
	}
	GetLogger().Debug("model fitted",
		"model", spec.Name,
		"loglik", model.LogLik,
		"aic", model.AIC(),
		"params", model.K(),
		"func_evals", result.FuncEvaluations,
		"duration_ms", time.Since(began).Milliseconds())
	return model, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// standardErrors inverts the finite-difference Hessian at the optimum. When
// the Hessian is not positive definite the model is kept but every standard
// error is NaN.
func standardErrors(spec ModelSpec, nll func([]float64) float64, x []float64) []float64 {
	n := len(x)
	ses := make([]float64, n)
	for i := range ses {
		ses[i] = math.NaN()
	}

	hess := mat.NewSymDense(n, nil)
	fd.Hessian(hess, nll, x, nil)

	var chol mat.Cholesky
	if !chol.Factorize(hess) {
		GetLogger().Warn("hessian not positive definite, standard errors unavailable",
			"model", spec.Name)
		return ses
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		GetLogger().Warn("hessian inversion failed, standard errors unavailable",
			"model", spec.Name,
			"error", err)
		return ses
	}
	for i := 0; i < n; i++ {
		if v := cov.At(i, i); v > 0 {
			ses[i] = math.Sqrt(v)
		}
	}
	return ses
}

func nonConvergenceError(spec ModelSpec, bind *binding, result *optimize.Result, optErr error) error {
	var cause error
	switch {
	case optErr != nil:
		cause = fmt.Errorf("model %s did not converge: %w", spec.Name, optErr)
	case result != nil:
		cause = fmt.Errorf("model %s did not converge: optimizer status %v", spec.Name, result.Status)
	default:
		cause = fmt.Errorf("model %s did not converge", spec.Name)
	}
	return errors.New(cause).
		Component("colext").
		Category(errors.CategoryNonConvergence).
		ModelContext(spec.Name, bind.nParams()).
		Build()
}
