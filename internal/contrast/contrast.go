// Package contrast decides whether two candidate soil scenarios produce
// instrument responses an FDEM sensor can tell apart from its noise.
package contrast

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
	"github.com/geodetica/fdemsurvey/internal/petro"
)

// Solver computes the instrument response of one layered-earth model under
// one sensor configuration. Implementations report numerical failures as
// forward.FaultError.
type Solver interface {
	Simulate(ctx context.Context, m forward.LayeredEarthModel, cfg entities.SensorConfig) (forward.Response, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, m forward.LayeredEarthModel, cfg entities.SensorConfig) (forward.Response, error)

func (f SolverFunc) Simulate(ctx context.Context, m forward.LayeredEarthModel, cfg entities.SensorConfig) (forward.Response, error) {
	return f(ctx, m, cfg)
}

// ProfileError ties an error to the profile whose simulation raised it.
type ProfileError struct {
	Profile string
	Err     error
}

func (e *ProfileError) Error() string { return fmt.Sprintf("profile %q: %v", e.Profile, e.Err) }

func (e *ProfileError) Unwrap() error { return e.Err }

// Channel is the verdict for one instrument channel.
type Channel struct {
	ContrastPPM float64 `json:"contrast_ppm"`
	Detectable  bool    `json:"detectable"`
}

// Result is the outcome of one two-profile comparison. A and B are the raw
// responses the verdicts were derived from.
type Result struct {
	QP Channel          `json:"qp"`
	IP Channel          `json:"ip"`
	A  forward.Response `json:"response_a"`
	B  forward.Response `json:"response_b"`
}

// Evaluator runs the comparison pipeline: assemble both profiles into
// solver models, simulate both under the shared configuration, classify the
// per-channel contrast against the instrument noise level.
type Evaluator struct {
	solver Solver
	petro  petro.Model
}

func NewEvaluator(solver Solver, pm petro.Model) *Evaluator {
	return &Evaluator{solver: solver, petro: pm}
}

// Evaluate compares profiles a and b under cfg. Validation and assembly
// errors fail fast before any solver call; a solver fault on either profile
// aborts the whole evaluation, wrapped with the offending profile's name.
// There is no partial result and no retry.
func (e *Evaluator) Evaluate(ctx context.Context, a, b entities.SoilProfile, cfg entities.SensorConfig) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	profiles := [2]entities.SoilProfile{a, b}
	var models [2]forward.LayeredEarthModel
	for i, p := range profiles {
		m, err := forward.Assemble(p, e.petro)
		if err != nil {
			return Result{}, err
		}
		models[i] = m
	}

	// The two simulations are independent; run both and wait.
	var (
		responses [2]forward.Response
		errs      [2]error
		wg        sync.WaitGroup
	)
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = e.solver.Simulate(ctx, models[i], cfg)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return Result{}, &ProfileError{Profile: profiles[i].Name, Err: err}
		}
	}
	return classify(responses[0], responses[1], cfg.NoisePPM), nil
}

// EvaluateSweep runs the same two-profile comparison across several
// candidate sensor configurations, one result per configuration in input
// order. Any failing configuration fails the whole sweep.
func (e *Evaluator) EvaluateSweep(ctx context.Context, a, b entities.SoilProfile, cfgs []entities.SensorConfig) ([]Result, error) {
	results := make([]Result, len(cfgs))
	errs := make([]error, len(cfgs))

	var wg sync.WaitGroup
	for i, cfg := range cfgs {
		wg.Add(1)
		go func(i int, cfg entities.SensorConfig) {
			defer wg.Done()
			results[i], errs[i] = e.Evaluate(ctx, a, b, cfg)
		}(i, cfg)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("configuration %d: %w", i, err)
		}
	}
	return results, nil
}

// classify turns two responses into per-channel verdicts. Strict
// inequality: contrast equal to the noise level is not detectable.
func classify(a, b forward.Response, noisePPM float64) Result {
	qp := math.Abs(b.Quadrature - a.Quadrature)
	ip := math.Abs(b.InPhase - a.InPhase)
	return Result{
		QP: Channel{ContrastPPM: qp, Detectable: qp > noisePPM},
		IP: Channel{ContrastPPM: ip, Detectable: ip > noisePPM},
		A:  a,
		B:  b,
	}
}
