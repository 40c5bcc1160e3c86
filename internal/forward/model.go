// Package forward defines the layered-earth model handed to the
// electromagnetic forward solver, its assembly from soil profiles, and the
// solver fault taxonomy.
package forward

import (
	"fmt"
	"math"

	"github.com/geodetica/fdemsurvey/internal/model/entities"
	"github.com/geodetica/fdemsurvey/internal/petro"
)

// Response is the secondary field at the receiver, in parts per million of
// the primary field, split into in-phase and quadrature components.
type Response struct {
	InPhase    float64 `json:"in_phase_ppm"`
	Quadrature float64 `json:"quadrature_ppm"`
}

// LayeredEarthModel is the solver-facing projection of a soil profile:
// parallel per-layer sequences in surface-down order. Thicknesses has one
// entry less than the other sequences because the terminal layer is
// half-infinite.
type LayeredEarthModel struct {
	Thicknesses      []float64 `json:"thicknesses_m"`
	Susceptibilities []float64 `json:"susceptibilities"`
	Conductivities   []float64 `json:"conductivities"`
	Permittivities   []float64 `json:"permittivities"`
}

// Layers is the number of layers in the model.
func (m LayeredEarthModel) Layers() int { return len(m.Conductivities) }

// Assemble validates a profile and projects it into the solver model,
// deriving each layer's bulk conductivity through the petrophysical model.
// Layer order is preserved. The terminal thickness, when supplied, is
// checked but not emitted; the bottom layer is half-infinite either way.
func Assemble(profile entities.SoilProfile, pm petro.Model) (LayeredEarthModel, error) {
	n := len(profile.Layers)
	if n == 0 {
		return LayeredEarthModel{}, fmt.Errorf("%w: profile %q has no layers", ErrInvalidProfile, profile.Name)
	}

	m := LayeredEarthModel{
		Thicknesses:      make([]float64, 0, n-1),
		Susceptibilities: make([]float64, 0, n),
		Conductivities:   make([]float64, 0, n),
		Permittivities:   make([]float64, 0, n),
	}
	for i, layer := range profile.Layers {
		terminal := i == n-1
		if layer.Thickness == nil && !terminal {
			return LayeredEarthModel{}, fmt.Errorf("%w: profile %q layer %d: only the terminal layer may omit thickness", ErrInvalidProfile, profile.Name, i)
		}
		if layer.Thickness != nil && *layer.Thickness <= 0 {
			return LayeredEarthModel{}, fmt.Errorf("%w: profile %q layer %d: thickness %g is not positive", ErrInvalidProfile, profile.Name, i, *layer.Thickness)
		}
		if layer.DielectricPermittivity != 0 {
			return LayeredEarthModel{}, fmt.Errorf("%w: profile %q layer %d: nonzero dielectric permittivity is not supported", ErrInvalidProfile, profile.Name, i)
		}

		sigma, err := pm.Conductivity(layer.VolumetricMoisture(), layer.PoreWaterConductivity, layer.ClayContent)
		if err != nil {
			return LayeredEarthModel{}, fmt.Errorf("profile %q layer %d: %w", profile.Name, i, err)
		}
		if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
			return LayeredEarthModel{}, fmt.Errorf("%w: profile %q layer %d: conductivity %g is not finite and non-negative", ErrInvalidProfile, profile.Name, i, sigma)
		}

		if !terminal {
			m.Thicknesses = append(m.Thicknesses, *layer.Thickness)
		}
		m.Susceptibilities = append(m.Susceptibilities, layer.MagneticSusceptibility)
		m.Conductivities = append(m.Conductivities, sigma)
		m.Permittivities = append(m.Permittivities, 0)
	}
	return m, nil
}
