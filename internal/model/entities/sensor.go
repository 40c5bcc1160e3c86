package entities

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig marks a sensor configuration the simulation refuses to run.
var ErrInvalidConfig = errors.New("invalid sensor configuration")

// CoilOrientation is the transmitter/receiver coil geometry.
type CoilOrientation string

const (
	OrientationHCP CoilOrientation = "hcp" // horizontal coplanar
	OrientationVCP CoilOrientation = "vcp" // vertical coplanar
	OrientationPRP CoilOrientation = "prp" // perpendicular
)

// SensorConfig describes one FDEM instrument setup: coil geometry, operating
// frequency and the noise floor used for detectability verdicts.
type SensorConfig struct {
	OffsetX     float64         `json:"offset_x"`     // receiver offset along line [m]
	OffsetY     float64         `json:"offset_y"`     // receiver offset across line [m]
	OffsetZ     float64         `json:"offset_z"`     // receiver vertical offset [m]
	Height      float64         `json:"height"`       // instrument height above ground [m]
	Frequency   float64         `json:"frequency_hz"` // operating frequency [Hz]
	Moment      float64         `json:"moment"`       // transmitter dipole moment [A*m^2]
	Orientation CoilOrientation `json:"orientation"`
	NoisePPM    float64         `json:"noise_ppm"` // noise level, applies to both channels
}

// Separation is the transmitter to receiver distance in meters.
func (c SensorConfig) Separation() float64 {
	return math.Sqrt(c.OffsetX*c.OffsetX + c.OffsetY*c.OffsetY + c.OffsetZ*c.OffsetZ)
}

// Validate checks the configuration before any simulation runs.
func (c SensorConfig) Validate() error {
	if c.NoisePPM < 0 {
		return fmt.Errorf("%w: noise level must be non-negative, got %g", ErrInvalidConfig, c.NoisePPM)
	}
	if c.Frequency <= 0 {
		return fmt.Errorf("%w: frequency must be positive, got %g", ErrInvalidConfig, c.Frequency)
	}
	if c.Moment <= 0 {
		return fmt.Errorf("%w: transmitter moment must be positive, got %g", ErrInvalidConfig, c.Moment)
	}
	switch c.Orientation {
	case OrientationHCP, OrientationVCP, OrientationPRP:
	default:
		return fmt.Errorf("%w: unknown coil orientation %q", ErrInvalidConfig, c.Orientation)
	}
	if c.Separation() <= 0 {
		return fmt.Errorf("%w: receiver must not coincide with transmitter", ErrInvalidConfig)
	}
	return nil
}
