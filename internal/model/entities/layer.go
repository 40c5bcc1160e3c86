package entities

// Layer is one horizontal slab of a soil profile.
type Layer struct {
	Thickness              *float64 `json:"thickness_m,omitempty"` // meters; nil marks the half-infinite terminal layer
	MagneticSusceptibility float64  `json:"susceptibility"`        // SI volume susceptibility
	BulkDensity            float64  `json:"bulk_density"`          // g/cm^3
	GravimetricMoisture    float64  `json:"gravimetric_moisture"`  // g water / g dry soil
	PoreWaterConductivity  float64  `json:"water_conductivity"`    // S/m
	ClayContent            float64  `json:"clay_content"`          // % by weight
	DielectricPermittivity float64  `json:"permittivity"`          // relative; zero in this pipeline
}

// Thickness wraps a finite layer thickness for inline profile literals.
func Thickness(v float64) *float64 { return &v }

// HalfInfinite reports whether the layer extends downward without bound.
func (l Layer) HalfInfinite() bool { return l.Thickness == nil }

// VolumetricMoisture is the water volume fraction, gravimetric content
// scaled by bulk density (water density 1 g/cm^3 cancels the units).
func (l Layer) VolumetricMoisture() float64 {
	return l.GravimetricMoisture * l.BulkDensity
}
