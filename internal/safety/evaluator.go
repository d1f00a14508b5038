// Package safety turns raw earthing readings into a safety verdict.
package safety

import (
	"math"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
)

// Thresholds are the earthing bounds. They mirror the device firmware:
// earthingGood = moisture >= 25 && 2.55 <= voltage <= 2.61.
type Thresholds struct {
	SoilMin float64 // %
	VoltMin float64 // V
	VoltMax float64 // V
}

// Default is the only threshold set the dashboard uses. It is compiled in and
// never changed at runtime.
var Default = Thresholds{SoilMin: 25, VoltMin: 2.55, VoltMax: 2.61}

// Evaluate maps a reading to a verdict. Both voltage bounds are inclusive.
// A non-finite value (NaN, ±Inf) never counts as good.
func Evaluate(r model.Reading, t Thresholds) model.Verdict {
	soilGood := finite(r.Moisture) && r.Moisture >= t.SoilMin
	voltGood := finite(r.Voltage) && r.Voltage >= t.VoltMin && r.Voltage <= t.VoltMax
	return model.Verdict{
		SoilGood:    soilGood,
		VoltGood:    voltGood,
		OverallGood: soilGood && voltGood,
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Evaluator picks the verdict source for a status payload.
// With TrustDevice set, the device's soilGood/voltGood flags win when both are
// present; otherwise the verdict is computed locally from Thresholds.
type Evaluator struct {
	Thresholds  Thresholds
	TrustDevice bool
}

// NewEvaluator returns an evaluator on the default thresholds.
func NewEvaluator(trustDevice bool) Evaluator {
	return Evaluator{Thresholds: Default, TrustDevice: trustDevice}
}

// Verdict evaluates a payload already validated by the poller.
// The overall flag is always the AND of the two sub-flags, even when the device
// also sent earthingGood.
func (e Evaluator) Verdict(r model.Reading, p model.StatusPayload) model.Verdict {
	if e.TrustDevice && p.HasDeviceVerdict() {
		soil, volt := *p.SoilGood, *p.VoltGood
		return model.Verdict{SoilGood: soil, VoltGood: volt, OverallGood: soil && volt}
	}
	return Evaluate(r, e.Thresholds)
}
