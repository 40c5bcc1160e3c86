package solver

import (
	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
)

// Wire types of the forward-solver HTTP contract (POST /v1/forward).
// The simulator serves them, the Remote adapter consumes them.

// Request carries one layered model and the shared sensor configuration.
type Request struct {
	Model  forward.LayeredEarthModel `json:"model"`
	Config entities.SensorConfig     `json:"config"`
}

// Result is the 200 response body.
type Result struct {
	InPhase    float64 `json:"in_phase_ppm"`
	Quadrature float64 `json:"quadrature_ppm"`
}

// Fault is the 422 response body.
type Fault struct {
	Code   string `json:"error"`
	Detail string `json:"detail"`
}

// FaultCodeNumeric marks a numerical solver failure, the only recoverable
// fault class the contract defines.
const FaultCodeNumeric = "numeric_fault"
