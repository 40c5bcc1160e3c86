package forward

import "errors"

// ErrInvalidProfile marks a soil profile the solver model cannot be built
// from. Raised before any solver call.
var ErrInvalidProfile = errors.New("invalid soil profile")

// ErrSolverFault marks a numerical failure reported by the forward solver
// for a specific model/frequency combination. Retrying the same inputs
// reproduces the fault, so callers adjust inputs instead.
var ErrSolverFault = errors.New("solver numeric fault")

// FaultError carries the solver's description of a numeric fault. Matches
// ErrSolverFault through errors.Is.
type FaultError struct {
	Reason string
}

func (e *FaultError) Error() string {
	if e.Reason == "" {
		return "solver numeric fault"
	}
	return "solver numeric fault: " + e.Reason
}

func (e *FaultError) Is(target error) bool { return target == ErrSolverFault }
