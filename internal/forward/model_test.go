package forward

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodetica/fdemsurvey/internal/model/entities"
	"github.com/geodetica/fdemsurvey/internal/petro"
)

// Two-layer reference profile: wet loam over moist clay half-space.
func referenceProfile() entities.SoilProfile {
	return entities.SoilProfile{
		Name: "scenario-a",
		Layers: []entities.Layer{
			{
				Thickness:              entities.Thickness(0.5),
				MagneticSusceptibility: 4e-4,
				BulkDensity:            1.4,
				GravimetricMoisture:    0.35,
				PoreWaterConductivity:  0.015,
				ClayContent:            33,
			},
			{
				MagneticSusceptibility: 1e-4,
				BulkDensity:            1.1,
				GravimetricMoisture:    0.25,
				PoreWaterConductivity:  0.025,
				ClayContent:            40,
			},
		},
	}
}

func TestAssembleReferenceProfile(t *testing.T) {
	m, err := Assemble(referenceProfile(), petro.Default())
	require.NoError(t, err)

	require.Equal(t, 2, m.Layers())
	require.Len(t, m.Thicknesses, 1)
	assert.InDelta(t, 0.5, m.Thicknesses[0], 1e-12)

	assert.InDelta(t, 0.016439, m.Conductivities[0], 1e-5)
	assert.InDelta(t, 0.009517, m.Conductivities[1], 1e-5)

	assert.Equal(t, []float64{4e-4, 1e-4}, m.Susceptibilities)
	assert.Equal(t, []float64{0, 0}, m.Permittivities)
}

func TestAssembleSingleLayerHalfSpace(t *testing.T) {
	p := entities.SoilProfile{
		Name: "half-space",
		Layers: []entities.Layer{
			{BulkDensity: 1.4, GravimetricMoisture: 0.15, PoreWaterConductivity: 0.015, ClayContent: 33},
		},
	}
	m, err := Assemble(p, petro.Default())
	require.NoError(t, err)
	assert.Empty(t, m.Thicknesses)
	require.Equal(t, 1, m.Layers())
	assert.InDelta(t, 0.003425, m.Conductivities[0], 1e-5)
}

// The terminal thickness is unconstrained: a supplied value is validated
// but never emitted, the bottom layer stays half-infinite.
func TestAssembleTerminalThicknessDropped(t *testing.T) {
	p := referenceProfile()
	p.Layers[1].Thickness = entities.Thickness(3.0)
	m, err := Assemble(p, petro.Default())
	require.NoError(t, err)
	assert.Len(t, m.Thicknesses, 1)
}

func TestAssembleValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*entities.SoilProfile)
		wantErr error
	}{
		{
			name:    "empty profile",
			mutate:  func(p *entities.SoilProfile) { p.Layers = nil },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "missing thickness above terminal layer",
			mutate:  func(p *entities.SoilProfile) { p.Layers[0].Thickness = nil },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "zero thickness",
			mutate:  func(p *entities.SoilProfile) { p.Layers[0].Thickness = entities.Thickness(0) },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "negative thickness",
			mutate:  func(p *entities.SoilProfile) { p.Layers[0].Thickness = entities.Thickness(-0.5) },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "negative terminal thickness",
			mutate:  func(p *entities.SoilProfile) { p.Layers[1].Thickness = entities.Thickness(-1) },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "nonzero permittivity",
			mutate:  func(p *entities.SoilProfile) { p.Layers[1].DielectricPermittivity = 4.2 },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "negative moisture",
			mutate:  func(p *entities.SoilProfile) { p.Layers[0].GravimetricMoisture = -0.1 },
			wantErr: petro.ErrInvalidMoisture,
		},
		{
			name:    "negative pore water conductivity",
			mutate:  func(p *entities.SoilProfile) { p.Layers[0].PoreWaterConductivity = -0.02 },
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "non-finite pore water conductivity",
			mutate:  func(p *entities.SoilProfile) { p.Layers[0].PoreWaterConductivity = math.Inf(1) },
			wantErr: ErrInvalidProfile,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := referenceProfile()
			tt.mutate(&p)
			_, err := Assemble(p, petro.Default())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFaultErrorMatchesSentinel(t *testing.T) {
	err := &FaultError{Reason: "hankel kernel overflow"}
	assert.ErrorIs(t, err, ErrSolverFault)
	assert.Contains(t, err.Error(), "hankel kernel overflow")
}
