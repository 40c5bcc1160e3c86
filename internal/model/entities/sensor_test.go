package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() SensorConfig {
	return SensorConfig{
		OffsetX:     1.0,
		Height:      0.1,
		Frequency:   9000,
		Moment:      1,
		Orientation: OrientationHCP,
		NoisePPM:    30,
	}
}

func TestSensorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SensorConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *SensorConfig) {}},
		{name: "zero noise allowed", mutate: func(c *SensorConfig) { c.NoisePPM = 0 }},
		{name: "negative noise", mutate: func(c *SensorConfig) { c.NoisePPM = -1 }, wantErr: true},
		{name: "zero frequency", mutate: func(c *SensorConfig) { c.Frequency = 0 }, wantErr: true},
		{name: "negative frequency", mutate: func(c *SensorConfig) { c.Frequency = -9000 }, wantErr: true},
		{name: "zero moment", mutate: func(c *SensorConfig) { c.Moment = 0 }, wantErr: true},
		{name: "unknown orientation", mutate: func(c *SensorConfig) { c.Orientation = "slanted" }, wantErr: true},
		{name: "vcp orientation", mutate: func(c *SensorConfig) { c.Orientation = OrientationVCP }},
		{name: "prp orientation", mutate: func(c *SensorConfig) { c.Orientation = OrientationPRP }},
		{name: "coincident receiver", mutate: func(c *SensorConfig) { c.OffsetX, c.OffsetY, c.OffsetZ = 0, 0, 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSeparation(t *testing.T) {
	c := SensorConfig{OffsetX: 3, OffsetY: 4}
	assert.InDelta(t, 5.0, c.Separation(), 1e-12)
}

func TestLayerVolumetricMoisture(t *testing.T) {
	l := Layer{BulkDensity: 1.4, GravimetricMoisture: 0.35}
	assert.InDelta(t, 0.49, l.VolumetricMoisture(), 1e-12)
}

func TestLayerHalfInfinite(t *testing.T) {
	assert.True(t, Layer{}.HalfInfinite())
	assert.False(t, Layer{Thickness: Thickness(0.3)}.HalfInfinite())
}
