package dashboard

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Y range suggested for the trend; it widens to fit samples outside it.
const (
	trendSuggestedMin = 2.4
	trendSuggestedMax = 2.8
)

// TrendChart is a ChartSink that renders the voltage trend as a PNG.
type TrendChart struct {
	Width, Height int

	mu      sync.RWMutex
	samples []float64
	line    drawing.Color
	fill    drawing.Color
	logger  *log.Logger
}

func NewTrendChart(logger *log.Logger) *TrendChart {
	if logger == nil {
		logger = log.Default()
	}
	return &TrendChart{
		Width:  640,
		Height: 240,
		line:   drawing.Color{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
		fill:   drawing.Color{R: 0x3b, G: 0x82, B: 0xf6, A: 0x1a},
		logger: logger,
	}
}

func (c *TrendChart) Update(samples []float64, lineColor, fillColor string) {
	line, err := parseCSSColor(lineColor)
	if err != nil {
		c.logger.Printf("dashboard: chart line color: %v", err)
		line = c.line
	}
	fill, err := parseCSSColor(fillColor)
	if err != nil {
		c.logger.Printf("dashboard: chart fill color: %v", err)
		fill = c.fill
	}

	c.mu.Lock()
	c.samples = append(c.samples[:0], samples...)
	c.line, c.fill = line, fill
	c.mu.Unlock()
}

// Chart builds the go-chart definition for the current samples.
func (c *TrendChart) Chart() chart.Chart {
	c.mu.RLock()
	ys := append([]float64(nil), c.samples...)
	line, fill := c.line, c.fill
	c.mu.RUnlock()

	// go-chart needs at least two points
	for len(ys) < 2 {
		ys = append(ys, 0)
	}
	xs := make([]float64, len(ys))
	lo, hi := trendSuggestedMin, trendSuggestedMax
	for i, y := range ys {
		xs[i] = float64(i)
		lo = math.Min(lo, y)
		hi = math.Max(hi, y)
	}

	return chart.Chart{
		Width:  c.Width,
		Height: c.Height,
		YAxis:  chart.YAxis{Name: "V", Range: &chart.ContinuousRange{Min: lo, Max: hi}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "AC Voltage (V)",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: line,
					FillColor:   fill,
					StrokeWidth: 2,
				},
			},
		},
	}
}

func (c *TrendChart) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	ch := c.Chart()
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		c.logger.Printf("dashboard: chart render error: %v", err)
		http.Error(w, "chart render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// parseCSSColor understands the two forms the renderer emits:
// "#rrggbb" and "rgba(r, g, b, a)".
func parseCSSColor(s string) (drawing.Color, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "#") && len(s) == 7:
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return drawing.Color{}, fmt.Errorf("bad hex color %q: %w", s, err)
		}
		return drawing.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil

	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[len("rgba("):len(s)-1], ",")
		if len(parts) != 4 {
			return drawing.Color{}, fmt.Errorf("bad rgba color %q", s)
		}
		var rgb [3]uint8
		for i := 0; i < 3; i++ {
			n, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
			if err != nil {
				return drawing.Color{}, fmt.Errorf("bad rgba color %q: %w", s, err)
			}
			rgb[i] = uint8(n)
		}
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return drawing.Color{}, fmt.Errorf("bad rgba alpha %q", s)
		}
		return drawing.Color{R: rgb[0], G: rgb[1], B: rgb[2], A: uint8(math.Round(a * 255))}, nil
	}
	return drawing.Color{}, fmt.Errorf("unsupported color %q", s)
}
