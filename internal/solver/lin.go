package solver

import (
	"context"
	"fmt"
	"math"

	"github.com/geodetica/fdemsurvey/internal/forward"
	"github.com/geodetica/fdemsurvey/internal/model/entities"
)

const mu0 = 4 * math.Pi * 1e-7 // vacuum permeability [H/m]

// DefaultMaxInductionNumber bounds where the low-induction-number
// approximation is trusted.
const DefaultMaxInductionNumber = 0.15

// LIN is an in-process solver stand-in built on the McNeill cumulative
// response functions. Quadrature comes from the conductivity column,
// in-phase from susceptibility, both depth-weighted per coil orientation.
// Models outside the approximation's validity raise the same numeric fault
// the real solver raises when its Hankel kernel overflows.
type LIN struct {
	MaxInductionNumber float64 // zero means DefaultMaxInductionNumber
}

func NewLIN() *LIN { return &LIN{MaxInductionNumber: DefaultMaxInductionNumber} }

func (l *LIN) limit() float64 {
	if l.MaxInductionNumber > 0 {
		return l.MaxInductionNumber
	}
	return DefaultMaxInductionNumber
}

// Simulate implements contrast.Solver.
func (l *LIN) Simulate(_ context.Context, m forward.LayeredEarthModel, cfg entities.SensorConfig) (forward.Response, error) {
	if err := cfg.Validate(); err != nil {
		return forward.Response{}, err
	}
	n := len(m.Conductivities)
	if n == 0 || len(m.Susceptibilities) != n || len(m.Permittivities) != n || len(m.Thicknesses) != n-1 {
		return forward.Response{}, fmt.Errorf("%w: malformed layered model", forward.ErrInvalidProfile)
	}

	s := cfg.Separation()
	omegaMu := 2 * math.Pi * cfg.Frequency * mu0

	// Validity guard. Thick conductive layers at high frequency push the
	// induction number past the limit, the regime where the real solver
	// faults too.
	for i, sigma := range m.Conductivities {
		if sigma <= 0 {
			continue
		}
		skinDepth := math.Sqrt(2 / (omegaMu * sigma))
		if b := s / skinDepth; b > l.limit() {
			return forward.Response{}, &forward.FaultError{
				Reason: fmt.Sprintf("induction number %.3g at layer %d exceeds %.3g", b, i, l.limit()),
			}
		}
	}

	cum := cumulativeResponse(cfg.Orientation)

	// Depth is normalized by coil separation; instrument height shifts the
	// whole column down.
	var sigmaA, kappaA float64
	z := cfg.Height / s
	prev := cum(z)
	for i := 0; i < n; i++ {
		next := 0.0 // terminal layer reaches to infinity
		if i < n-1 {
			z += m.Thicknesses[i] / s
			next = cum(z)
		}
		w := prev - next
		sigmaA += m.Conductivities[i] * w
		kappaA += m.Susceptibilities[i] * w
		prev = next
	}

	return forward.Response{
		InPhase:    kappaA / 4 * 1e6,
		Quadrature: omegaMu * sigmaA * s * s / 4 * 1e6,
	}, nil
}

// cumulativeResponse returns R(z), the fraction of the instrument response
// originating below normalized depth z, for one coil orientation.
func cumulativeResponse(o entities.CoilOrientation) func(float64) float64 {
	switch o {
	case entities.OrientationVCP:
		return func(z float64) float64 { return math.Sqrt(4*z*z+1) - 2*z }
	case entities.OrientationPRP:
		return func(z float64) float64 { return 1 - 2*z/math.Sqrt(4*z*z+1) }
	default:
		return func(z float64) float64 { return 1 / math.Sqrt(4*z*z+1) }
	}
}
