package messages

import "time"

// AlarmEvent is published (retained) on the alarm topic so the physical red LED
// and buzzer follow the dashboard alert indicators.
type AlarmEvent struct {
	ID        string    `json:"id"`
	Active    bool      `json:"active"`
	RedLED    bool      `json:"red_led"`
	Buzzer    bool      `json:"buzzer"`
	SoilGood  bool      `json:"soil_good"`
	VoltGood  bool      `json:"volt_good"`
	Moisture  float64   `json:"moisture"`
	Voltage   float64   `json:"voltage"`
	Timestamp time.Time `json:"timestamp"`
}
