package entities

// Verdict is the pass/fail determination for a single reading.
type Verdict struct {
	SoilGood    bool `json:"soil_good"`
	VoltGood    bool `json:"volt_good"`
	OverallGood bool `json:"overall_good"`
}

// SafetyState is the dashboard-level safety state driven by Verdict.OverallGood.
type SafetyState string

const (
	StateSafe  SafetyState = "SAFE"
	StateAlert SafetyState = "ALERT"
)

// State maps the verdict to its safety state.
func (v Verdict) State() SafetyState {
	if v.OverallGood {
		return StateSafe
	}
	return StateAlert
}
