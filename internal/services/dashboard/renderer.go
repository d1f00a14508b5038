package dashboard

import (
	"math"
	"strconv"
	"time"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
)

// Element is one named display slot. It mirrors the few DOM operations the
// dashboard needs.
type Element interface {
	SetText(text string)
	SetStyle(property, value string)
	SetClass(class string)
	Toggle(class string, on bool)
}

// ChartSink receives the trend samples, oldest first, and the colors to draw
// them with.
type ChartSink interface {
	Update(samples []float64, lineColor, fillColor string)
}

// RenderContext holds every output handle the renderer writes to.
type RenderContext struct {
	SoilValue    Element
	SoilBar      Element
	SoilCard     Element
	VoltageValue Element
	VoltageBar   Element
	VoltageCard  Element

	StatusHero  Element
	StatusRing  Element
	StatusIcon  Element
	StatusTitle Element
	StatusDesc  Element

	BadgeText Element
	BadgeDot  Element

	AlertIndicators Element
	RedLED          Element
	Buzzer          Element

	Clock Element
	Chart ChartSink
}

const (
	ColorSuccess = "#10b981"
	ColorDanger  = "#ef4444"
	ColorWarning = "#f59e0b"
	ColorMuted   = "#94a3b8"

	FillSuccess = "rgba(16, 185, 129, 0.1)"
	FillDanger  = "rgba(239, 68, 68, 0.1)"
)

// Voltage bar scaling. Purely cosmetic, unrelated to the safety thresholds:
// 2.0 V is an empty bar, 3.0 V a full one.
const (
	voltBarBaseline = 2.0
	voltBarSpan     = 1.0
)

// Render projects st onto rc. The connectivity badge is always updated; the
// readings, verdict styling and chart only when st carries a fresh reading.
func Render(rc RenderContext, st State) {
	renderConnectivity(rc, st.Connectivity)
	if !st.Fresh {
		return
	}

	moisture := roundHalfUp(st.Reading.Moisture)
	rc.SoilValue.SetText(strconv.FormatFloat(moisture, 'f', 0, 64))
	rc.VoltageValue.SetText(strconv.FormatFloat(st.Reading.Voltage, 'f', 2, 64))

	rc.SoilBar.SetStyle("width", percent(clamp(moisture, 0, 100)))
	rc.VoltageBar.SetStyle("width", percent(VoltageBarFill(st.Reading.Voltage)))

	renderStatus(rc, st.Verdict.OverallGood)
	renderSubMetrics(rc, st.Verdict)

	line, fill := ColorDanger, FillDanger
	if st.Verdict.OverallGood {
		line, fill = ColorSuccess, FillSuccess
	}
	rc.Chart.Update(st.Series.Snapshot(), line, fill)
}

// RenderClock writes the wall clock.
func RenderClock(rc RenderContext, now time.Time) {
	rc.Clock.SetText(now.Format("15:04:05"))
}

// VoltageBarFill returns the voltage bar fill in percent, within [0, 100].
func VoltageBarFill(voltage float64) float64 {
	return clamp((voltage-voltBarBaseline)/voltBarSpan*100, 0, 100)
}

func renderConnectivity(rc RenderContext, c model.Connectivity) {
	color := ColorMuted
	if c == model.Connected {
		color = ColorSuccess
	}
	rc.BadgeText.SetText(c.String())
	rc.BadgeText.SetStyle("color", color)
	rc.BadgeDot.SetStyle("background-color", color)
}

func renderStatus(rc RenderContext, good bool) {
	if good {
		rc.StatusRing.SetClass("status-ring safe")
		rc.StatusIcon.SetClass("fa-solid fa-check-circle")
		rc.StatusTitle.SetText("STATUS:")
		rc.StatusDesc.SetText("EARTHING GOOD")
		rc.StatusDesc.SetClass("status-label good")
	} else {
		rc.StatusRing.SetClass("status-ring danger")
		rc.StatusIcon.SetClass("fa-solid fa-triangle-exclamation")
		rc.StatusTitle.SetText("ALERT!")
		rc.StatusDesc.SetText("EARTHING BAD")
		rc.StatusDesc.SetClass("status-label bad")
	}
	// red LED + buzzer follow the alert
	alert := !good
	rc.AlertIndicators.Toggle("active", alert)
	rc.RedLED.Toggle("on", alert)
	rc.Buzzer.Toggle("on", alert)
	rc.StatusHero.Toggle("alert-mode", alert)
}

func renderSubMetrics(rc RenderContext, v model.Verdict) {
	soil := ColorWarning
	if v.SoilGood {
		soil = ColorSuccess
	}
	rc.SoilValue.SetStyle("color", soil)
	rc.SoilBar.SetStyle("background-color", soil)
	rc.SoilCard.Toggle("warning", !v.SoilGood)

	volt := ColorDanger
	if v.VoltGood {
		volt = ColorSuccess
	}
	rc.VoltageValue.SetStyle("color", volt)
	rc.VoltageBar.SetStyle("background-color", volt)
	rc.VoltageCard.Toggle("danger", !v.VoltGood)
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Min(hi, math.Max(lo, x))
}

// roundHalfUp rounds .5 towards +Inf, like the browser's Math.round.
func roundHalfUp(x float64) float64 {
	r := math.Floor(x + 0.5)
	if r == 0 {
		return 0 // no "-0"
	}
	return r
}

func percent(p float64) string {
	return strconv.FormatFloat(math.Round(p*100)/100, 'f', -1, 64) + "%"
}
