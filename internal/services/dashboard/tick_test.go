package dashboard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
	"github.com/LeonardoBeccarini/earthing_monitor/internal/safety"
)

func sample(moisture, voltage float64) Sample {
	m, v := moisture, voltage
	return Sample{
		Reading: model.Reading{Moisture: moisture, Voltage: voltage},
		Payload: model.StatusPayload{Moisture: &m, Voltage: &v},
	}
}

func TestInitialState(t *testing.T) {
	st := InitialState()
	assert.Equal(t, model.Disconnected, st.Connectivity)
	assert.False(t, st.Fresh)
	assert.False(t, st.Seen)
	require.Equal(t, SeriesCapacity, st.Series.Len())
	for _, v := range st.Series.Snapshot() {
		assert.Zero(t, v)
	}
}

func TestStep_Readings(t *testing.T) {
	ev := safety.NewEvaluator(false)
	cases := []struct {
		name    string
		m, v    float64
		verdict model.Verdict
	}{
		{"all good", 45, 2.58, model.Verdict{SoilGood: true, VoltGood: true, OverallGood: true}},
		{"dry soil", 10, 2.58, model.Verdict{SoilGood: false, VoltGood: true, OverallGood: false}},
		{"high voltage", 45, 2.70, model.Verdict{SoilGood: true, VoltGood: false, OverallGood: false}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := Step(InitialState(), sample(tc.m, tc.v), nil, ev)
			assert.Equal(t, tc.verdict, st.Verdict)
			assert.Equal(t, model.Connected, st.Connectivity)
			assert.True(t, st.Fresh)
			assert.True(t, st.Seen)
			assert.Equal(t, SeriesCapacity, st.Series.Len())
			assert.Equal(t, tc.v, st.Series.Last())
		})
	}
}

func TestStep_ErrorKeepsLastGood(t *testing.T) {
	ev := safety.NewEvaluator(false)
	prev := Step(InitialState(), sample(45, 2.58), nil, ev)
	before := prev.Series.Snapshot()

	next := Step(prev, Sample{}, &PollError{Kind: NetworkFailure, Err: errors.New("refused")}, ev)
	assert.Equal(t, model.Disconnected, next.Connectivity)
	assert.False(t, next.Fresh)
	assert.True(t, next.Seen)
	assert.Equal(t, prev.Reading, next.Reading)
	assert.Equal(t, prev.Verdict, next.Verdict)
	assert.Equal(t, before, next.Series.Snapshot())
}

func TestStep_DoesNotMutatePrevious(t *testing.T) {
	ev := safety.NewEvaluator(false)
	prev := InitialState()
	before := prev.Series.Snapshot()

	next := Step(prev, sample(45, 2.58), nil, ev)
	assert.Equal(t, before, prev.Series.Snapshot())
	assert.NotEqual(t, before, next.Series.Snapshot())
}

func TestStep_SeriesSlides(t *testing.T) {
	ev := safety.NewEvaluator(false)
	st := InitialState()
	for i := 1; i <= SeriesCapacity+5; i++ {
		st = Step(st, sample(45, float64(i)), nil, ev)
	}
	snap := st.Series.Snapshot()
	require.Len(t, snap, SeriesCapacity)
	assert.Equal(t, 6.0, snap[0])
	assert.Equal(t, float64(SeriesCapacity+5), snap[SeriesCapacity-1])
}

func TestStep_TrustDevice(t *testing.T) {
	s := sample(10, 2.70)
	soil, volt := true, true
	s.Payload.SoilGood, s.Payload.VoltGood = &soil, &volt

	trusted := Step(InitialState(), s, nil, safety.NewEvaluator(true))
	assert.True(t, trusted.Verdict.OverallGood)

	local := Step(InitialState(), s, nil, safety.NewEvaluator(false))
	assert.False(t, local.Verdict.SoilGood)
	assert.False(t, local.Verdict.VoltGood)
}
