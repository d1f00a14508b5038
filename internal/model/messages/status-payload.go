package messages

// StatusPayload is the body of GET /data on the device.
//
// The minimal variant only carries moisture and voltage. The extended variant
// adds the device's own verdict flags and the raw ADC counts. Pointers let the
// decoder tell a missing field from a zero value.
type StatusPayload struct {
	Moisture *float64 `json:"moisture"`
	Voltage  *float64 `json:"voltage"`

	SoilGood     *bool `json:"soilGood,omitempty"`
	VoltGood     *bool `json:"voltGood,omitempty"`
	EarthingGood *bool `json:"earthingGood,omitempty"`

	MoistureRaw *int `json:"moistureRaw,omitempty"`
	VoltageRaw  *int `json:"voltageRaw,omitempty"`
}

// HasDeviceVerdict reports whether the device supplied both sub-flags.
func (p StatusPayload) HasDeviceVerdict() bool {
	return p.SoilGood != nil && p.VoltGood != nil
}
