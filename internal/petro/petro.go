// Package petro converts soil hydrological state into bulk electrical
// conductivity with a clay-branched generalized Archie law.
package petro

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMoisture marks a volumetric moisture outside the physical range.
var ErrInvalidMoisture = errors.New("invalid volumetric moisture")

// Fallback coefficients for low-clay soils.
const (
	DefaultC = 1.45
	DefaultM = 1.25
)

// clayBranchPct is the clay content at and above which clay-derived
// coefficients replace the fallbacks. The step at the boundary is part of
// the calibrated law and must not be smoothed.
const clayBranchPct = 5.0

// Model holds the fallback Archie coefficients used below the clay branch.
type Model struct {
	FallbackC float64
	FallbackM float64
}

// Default returns the model with the standard low-clay coefficients.
func Default() Model { return Model{FallbackC: DefaultC, FallbackM: DefaultM} }

// NewModel returns a model with custom fallback coefficients.
func NewModel(c, m float64) Model { return Model{FallbackC: c, FallbackM: m} }

// Coefficients returns the Archie coefficients (c, m) for a clay content in
// percent by weight. From 5 % upward both are derived from the clay content,
// below that the fallbacks apply unchanged.
func (p Model) Coefficients(clayPct float64) (c, m float64) {
	if clayPct >= clayBranchPct {
		return 0.6 * math.Pow(clayPct, 0.55), 0.92 * math.Pow(clayPct, 0.2)
	}
	return p.FallbackC, p.FallbackM
}

// Conductivity computes bulk electrical conductivity in S/m from volumetric
// moisture theta (volume fraction), pore-water conductivity sigmaW (S/m) and
// clay content (percent). Negative moisture is rejected before it reaches
// the fractional exponent.
func (p Model) Conductivity(theta, sigmaW, clayPct float64) (float64, error) {
	if theta < 0 {
		return 0, fmt.Errorf("%w: got %g", ErrInvalidMoisture, theta)
	}
	c, m := p.Coefficients(clayPct)
	return c * sigmaW * math.Pow(theta, m), nil
}
