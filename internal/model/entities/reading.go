package entities

// Reading is one sample reported by the earthing device.
// Moisture is a percentage (noisy input may leave 0..100), Voltage is the AC
// leakage voltage between ground and neutral, in volts.
type Reading struct {
	Moisture float64 `json:"moisture"`
	Voltage  float64 `json:"voltage"`
}
