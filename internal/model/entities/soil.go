package entities

// SoilProfile is an ordered stack of layers, surface first. Faults raised
// while simulating a profile are reported under its name.
type SoilProfile struct {
	Name   string  `json:"name"`
	Layers []Layer `json:"layers"`
}
