package dashboard

import (
	"sync"
)

// Element ids on the dashboard page.
const (
	IDSoilValue       = "val-soil"
	IDSoilBar         = "bar-soil"
	IDSoilCard        = "card-soil"
	IDVoltageValue    = "val-voltage"
	IDVoltageBar      = "bar-voltage"
	IDVoltageCard     = "card-voltage"
	IDStatusHero      = "status-hero"
	IDStatusRing      = "main-status-ring"
	IDStatusIcon      = "main-status-icon"
	IDStatusTitle     = "main-status-title"
	IDStatusDesc      = "main-status-desc"
	IDBadgeText       = "header-status-text"
	IDBadgeDot        = "status-dot"
	IDAlertIndicators = "alert-indicators"
	IDRedLED          = "red-led-indicator"
	IDBuzzer          = "buzzer-indicator"
	IDClock           = "clock"
)

// SlotState is the accumulated state of one element.
type SlotState struct {
	Text    *string           `json:"text,omitempty"`
	Class   *string           `json:"class,omitempty"`
	Style   map[string]string `json:"style,omitempty"`
	Toggles map[string]bool   `json:"toggles,omitempty"`
}

// ChartState is what the chart sink last received.
type ChartState struct {
	Samples   []float64 `json:"samples"`
	LineColor string    `json:"line_color"`
	FillColor string    `json:"fill_color"`
}

// FrameSnapshot is the full page state pushed to browsers.
type FrameSnapshot struct {
	Seq      uint64               `json:"seq"`
	Elements map[string]SlotState `json:"elements"`
	Chart    ChartState           `json:"chart"`
}

// Frame is an in-memory page: a set of element slots and a chart. The
// scheduler goroutine writes it and commits it after each complete render;
// readers outside that goroutine use Committed, never a half-rendered page.
type Frame struct {
	mu        sync.RWMutex
	seq       uint64
	slots     map[string]*SlotState
	chart     ChartState
	committed FrameSnapshot
}

func NewFrame() *Frame {
	return &Frame{slots: make(map[string]*SlotState)}
}

// Element returns the handle for id.
func (f *Frame) Element(id string) Element {
	return &frameElement{f: f, id: id}
}

// Context binds every page element to a render context.
func (f *Frame) Context() RenderContext {
	return RenderContext{
		SoilValue:       f.Element(IDSoilValue),
		SoilBar:         f.Element(IDSoilBar),
		SoilCard:        f.Element(IDSoilCard),
		VoltageValue:    f.Element(IDVoltageValue),
		VoltageBar:      f.Element(IDVoltageBar),
		VoltageCard:     f.Element(IDVoltageCard),
		StatusHero:      f.Element(IDStatusHero),
		StatusRing:      f.Element(IDStatusRing),
		StatusIcon:      f.Element(IDStatusIcon),
		StatusTitle:     f.Element(IDStatusTitle),
		StatusDesc:      f.Element(IDStatusDesc),
		BadgeText:       f.Element(IDBadgeText),
		BadgeDot:        f.Element(IDBadgeDot),
		AlertIndicators: f.Element(IDAlertIndicators),
		RedLED:          f.Element(IDRedLED),
		Buzzer:          f.Element(IDBuzzer),
		Clock:           f.Element(IDClock),
		Chart:           frameChart{f: f},
	}
}

// Snapshot returns a deep copy of the frame.
func (f *Frame) Snapshot() FrameSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := FrameSnapshot{
		Seq:      f.seq,
		Elements: make(map[string]SlotState, len(f.slots)),
		Chart: ChartState{
			Samples:   append([]float64(nil), f.chart.Samples...),
			LineColor: f.chart.LineColor,
			FillColor: f.chart.FillColor,
		},
	}
	for id, s := range f.slots {
		out.Elements[id] = s.clone()
	}
	return out
}

// Commit records the current page as the one Committed returns. Call it from
// the rendering goroutine between renders.
func (f *Frame) Commit() FrameSnapshot {
	snap := f.Snapshot()
	f.mu.Lock()
	f.committed = snap.clone()
	f.mu.Unlock()
	return snap
}

// Committed returns a copy of the last committed page.
func (f *Frame) Committed() FrameSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.committed.clone()
}

func (s FrameSnapshot) clone() FrameSnapshot {
	out := FrameSnapshot{
		Seq: s.Seq,
		Chart: ChartState{
			Samples:   append([]float64(nil), s.Chart.Samples...),
			LineColor: s.Chart.LineColor,
			FillColor: s.Chart.FillColor,
		},
	}
	if s.Elements != nil {
		out.Elements = make(map[string]SlotState, len(s.Elements))
		for id, slot := range s.Elements {
			out.Elements[id] = slot.clone()
		}
	}
	return out
}

// Slot returns a copy of one element state.
func (f *Frame) Slot(id string) SlotState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if s, ok := f.slots[id]; ok {
		return s.clone()
	}
	return SlotState{}
}

func (f *Frame) update(id string, fn func(s *SlotState)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[id]
	if !ok {
		s = &SlotState{}
		f.slots[id] = s
	}
	fn(s)
	f.seq++
}

func (s *SlotState) clone() SlotState {
	out := SlotState{}
	if s.Text != nil {
		t := *s.Text
		out.Text = &t
	}
	if s.Class != nil {
		c := *s.Class
		out.Class = &c
	}
	if len(s.Style) > 0 {
		out.Style = make(map[string]string, len(s.Style))
		for k, v := range s.Style {
			out.Style[k] = v
		}
	}
	if len(s.Toggles) > 0 {
		out.Toggles = make(map[string]bool, len(s.Toggles))
		for k, v := range s.Toggles {
			out.Toggles[k] = v
		}
	}
	return out
}

type frameElement struct {
	f  *Frame
	id string
}

func (e *frameElement) SetText(text string) {
	e.f.update(e.id, func(s *SlotState) { s.Text = &text })
}

func (e *frameElement) SetStyle(property, value string) {
	e.f.update(e.id, func(s *SlotState) {
		if s.Style == nil {
			s.Style = make(map[string]string)
		}
		s.Style[property] = value
	})
}

func (e *frameElement) SetClass(class string) {
	e.f.update(e.id, func(s *SlotState) { s.Class = &class })
}

func (e *frameElement) Toggle(class string, on bool) {
	e.f.update(e.id, func(s *SlotState) {
		if s.Toggles == nil {
			s.Toggles = make(map[string]bool)
		}
		s.Toggles[class] = on
	})
}

type frameChart struct{ f *Frame }

func (c frameChart) Update(samples []float64, lineColor, fillColor string) {
	c.f.mu.Lock()
	defer c.f.mu.Unlock()
	c.f.chart = ChartState{
		Samples:   append([]float64(nil), samples...),
		LineColor: lineColor,
		FillColor: fillColor,
	}
	c.f.seq++
}

// Charts fans one chart update out to several sinks.
func Charts(sinks ...ChartSink) ChartSink {
	return multiChart(sinks)
}

type multiChart []ChartSink

func (m multiChart) Update(samples []float64, lineColor, fillColor string) {
	for _, s := range m {
		if s != nil {
			s.Update(samples, lineColor, fillColor)
		}
	}
}
