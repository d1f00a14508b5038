package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/safety"
)

func text(t *testing.T, f *Frame, id string) string {
	t.Helper()
	s := f.Slot(id)
	require.NotNil(t, s.Text, "no text on %s", id)
	return *s.Text
}

func class(t *testing.T, f *Frame, id string) string {
	t.Helper()
	s := f.Slot(id)
	require.NotNil(t, s.Class, "no class on %s", id)
	return *s.Class
}

func TestRender_Safe(t *testing.T) {
	f := NewFrame()
	st := Step(InitialState(), sample(45, 2.58), nil, safety.NewEvaluator(false))
	Render(f.Context(), st)

	assert.Equal(t, "45", text(t, f, IDSoilValue))
	assert.Equal(t, "2.58", text(t, f, IDVoltageValue))
	assert.Equal(t, "45%", f.Slot(IDSoilBar).Style["width"])
	assert.Equal(t, "58%", f.Slot(IDVoltageBar).Style["width"])

	assert.Equal(t, "status-ring safe", class(t, f, IDStatusRing))
	assert.Equal(t, "fa-solid fa-check-circle", class(t, f, IDStatusIcon))
	assert.Equal(t, "STATUS:", text(t, f, IDStatusTitle))
	assert.Equal(t, "EARTHING GOOD", text(t, f, IDStatusDesc))
	assert.Equal(t, "status-label good", class(t, f, IDStatusDesc))

	assert.False(t, f.Slot(IDAlertIndicators).Toggles["active"])
	assert.False(t, f.Slot(IDRedLED).Toggles["on"])
	assert.False(t, f.Slot(IDBuzzer).Toggles["on"])
	assert.False(t, f.Slot(IDStatusHero).Toggles["alert-mode"])

	assert.Equal(t, ColorSuccess, f.Slot(IDSoilValue).Style["color"])
	assert.Equal(t, ColorSuccess, f.Slot(IDVoltageValue).Style["color"])
	assert.False(t, f.Slot(IDSoilCard).Toggles["warning"])
	assert.False(t, f.Slot(IDVoltageCard).Toggles["danger"])

	assert.Equal(t, "CONNECTED", text(t, f, IDBadgeText))
	assert.Equal(t, ColorSuccess, f.Slot(IDBadgeDot).Style["background-color"])

	snap := f.Snapshot()
	assert.Equal(t, ColorSuccess, snap.Chart.LineColor)
	assert.Equal(t, FillSuccess, snap.Chart.FillColor)
	require.Len(t, snap.Chart.Samples, SeriesCapacity)
	assert.Equal(t, 2.58, snap.Chart.Samples[SeriesCapacity-1])
}

func TestRender_DrySoil(t *testing.T) {
	f := NewFrame()
	st := Step(InitialState(), sample(10, 2.58), nil, safety.NewEvaluator(false))
	Render(f.Context(), st)

	assert.Equal(t, "status-ring danger", class(t, f, IDStatusRing))
	assert.Equal(t, "fa-solid fa-triangle-exclamation", class(t, f, IDStatusIcon))
	assert.Equal(t, "ALERT!", text(t, f, IDStatusTitle))
	assert.Equal(t, "EARTHING BAD", text(t, f, IDStatusDesc))
	assert.True(t, f.Slot(IDAlertIndicators).Toggles["active"])
	assert.True(t, f.Slot(IDRedLED).Toggles["on"])
	assert.True(t, f.Slot(IDBuzzer).Toggles["on"])
	assert.True(t, f.Slot(IDStatusHero).Toggles["alert-mode"])

	// soil warns, voltage stays green
	assert.Equal(t, ColorWarning, f.Slot(IDSoilValue).Style["color"])
	assert.True(t, f.Slot(IDSoilCard).Toggles["warning"])
	assert.Equal(t, ColorSuccess, f.Slot(IDVoltageValue).Style["color"])
	assert.False(t, f.Slot(IDVoltageCard).Toggles["danger"])

	snap := f.Snapshot()
	assert.Equal(t, ColorDanger, snap.Chart.LineColor)
	assert.Equal(t, FillDanger, snap.Chart.FillColor)
}

func TestRender_HighVoltage(t *testing.T) {
	f := NewFrame()
	st := Step(InitialState(), sample(45, 2.70), nil, safety.NewEvaluator(false))
	Render(f.Context(), st)

	assert.Equal(t, "ALERT!", text(t, f, IDStatusTitle))
	assert.Equal(t, ColorSuccess, f.Slot(IDSoilValue).Style["color"])
	assert.Equal(t, ColorDanger, f.Slot(IDVoltageValue).Style["color"])
	assert.True(t, f.Slot(IDVoltageCard).Toggles["danger"])
	assert.Equal(t, "70%", f.Slot(IDVoltageBar).Style["width"])
}

func TestRender_DisconnectedOnlyTouchesBadge(t *testing.T) {
	f := NewFrame()
	Render(f.Context(), InitialState())

	snap := f.Snapshot()
	assert.Len(t, snap.Elements, 2)
	assert.Contains(t, snap.Elements, IDBadgeText)
	assert.Contains(t, snap.Elements, IDBadgeDot)
	assert.Nil(t, snap.Chart.Samples)
	assert.Equal(t, "DISCONNECTED", text(t, f, IDBadgeText))
	assert.Equal(t, ColorMuted, f.Slot(IDBadgeDot).Style["background-color"])
}

func TestRender_DisconnectedKeepsLastGood(t *testing.T) {
	f := NewFrame()
	rc := f.Context()
	ev := safety.NewEvaluator(false)

	good := Step(InitialState(), sample(45, 2.58), nil, ev)
	Render(rc, good)
	before := f.Snapshot()

	down := Step(good, Sample{}, errors.New("boom"), ev)
	Render(rc, down)
	after := f.Snapshot()

	assert.Equal(t, "DISCONNECTED", *after.Elements[IDBadgeText].Text)
	for id, slot := range before.Elements {
		if id == IDBadgeText || id == IDBadgeDot {
			continue
		}
		assert.Equal(t, slot, after.Elements[id], id)
	}
	assert.Equal(t, before.Chart, after.Chart)
}

func TestRender_Rounding(t *testing.T) {
	cases := []struct {
		moisture, voltage float64
		soil, volt, bar   string
	}{
		{44.5, 2.576, "45", "2.58", "45%"},
		{44.4, 2.5849, "44", "2.58", "44%"},
		{-3, 1.5, "-3", "1.50", "0%"},
		{140, 3.4, "140", "3.40", "100%"},
	}
	for _, tc := range cases {
		f := NewFrame()
		Render(f.Context(), Step(InitialState(), sample(tc.moisture, tc.voltage), nil, safety.NewEvaluator(false)))
		assert.Equal(t, tc.soil, text(t, f, IDSoilValue))
		assert.Equal(t, tc.volt, text(t, f, IDVoltageValue))
		assert.Equal(t, tc.bar, f.Slot(IDSoilBar).Style["width"])
	}
}

func TestVoltageBarFill(t *testing.T) {
	assert.Equal(t, 0.0, VoltageBarFill(1.5))
	assert.Equal(t, 0.0, VoltageBarFill(2.0))
	assert.InDelta(t, 58.0, VoltageBarFill(2.58), 1e-9)
	assert.Equal(t, 100.0, VoltageBarFill(3.0))
	assert.Equal(t, 100.0, VoltageBarFill(12))
}

func TestRenderClock(t *testing.T) {
	f := NewFrame()
	RenderClock(f.Context(), time.Date(2024, 5, 1, 9, 4, 7, 0, time.UTC))
	assert.Equal(t, "09:04:07", text(t, f, IDClock))
}
