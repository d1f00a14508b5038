package dashboard

import (
	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
	"github.com/LeonardoBeccarini/earthing_monitor/internal/safety"
	"github.com/LeonardoBeccarini/earthing_monitor/pkg/rolling"
)

// SeriesCapacity is the number of voltage samples on the trend chart
// (20 samples at 1 Hz, about 20 seconds).
const SeriesCapacity = 20

// State is what one poll tick hands to the next one and to the renderer.
type State struct {
	Reading      model.Reading
	Verdict      model.Verdict
	Series       *rolling.Series
	Connectivity model.Connectivity

	// Fresh is true when this tick obtained a new reading.
	Fresh bool
	// Seen is true once any reading has been obtained.
	Seen bool
}

// InitialState is the dashboard state before the first poll: disconnected,
// no reading, a zero-filled series.
func InitialState() State {
	return State{Series: rolling.New(SeriesCapacity, 0)}
}

// Step folds one poll outcome into the previous state. prev is never mutated.
// On error only connectivity changes: reading, verdict and series stay as
// they were so the last good values remain on screen.
func Step(prev State, s Sample, err error, ev safety.Evaluator) State {
	if err != nil {
		next := prev
		next.Connectivity = model.Disconnected
		next.Fresh = false
		return next
	}

	series := prev.Series.Clone()
	series.Append(s.Reading.Voltage)

	return State{
		Reading:      s.Reading,
		Verdict:      ev.Verdict(s.Reading, s.Payload),
		Series:       series,
		Connectivity: model.Connected,
		Fresh:        true,
		Seen:         true,
	}
}
