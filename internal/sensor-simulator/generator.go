package sensor_simulator

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
	"github.com/LeonardoBeccarini/earthing_monitor/internal/safety"
)

// Mode selects how the simulated device behaves.
type Mode string

const (
	ModeAuto Mode = "AUTO" // healthy readings with a little noise
	ModeGood Mode = "GOOD" // tight around the nominal values
	ModeBad  Mode = "BAD"  // dry soil and low voltage
)

// ParseMode accepts AUTO, GOOD or BAD in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeAuto, ModeGood, ModeBad:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want AUTO, GOOD or BAD)", s)
	}
}

// ADC parameters used to derive the raw counts of the extended payload
// (12-bit converter, 3.3 V reference, capacitive soil sensor reading high when dry).
const (
	adcMax = 4095
	adcRef = 3.3
)

// DataGenerator produces device readings for the current mode.
type DataGenerator struct {
	mu   sync.Mutex
	mode Mode
	rnd  *rand.Rand
}

// NewDataGenerator builds a generator in AUTO mode seeded with seed.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{mode: ModeAuto, rnd: rand.New(rand.NewSource(seed))}
}

func (g *DataGenerator) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

func (g *DataGenerator) SetMode(m Mode) {
	g.mu.Lock()
	g.mode = m
	g.mu.Unlock()
}

// Next returns one reading. Moisture is a whole percentage, like the sensor
// firmware reports it.
func (g *DataGenerator) Next() model.Reading {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.mode {
	case ModeGood:
		return model.Reading{
			Moisture: float64(45 + g.intIn(-2, 2)),
			Voltage:  2.58 + g.rnd.Float64()*0.02 - 0.01,
		}
	case ModeBad:
		return model.Reading{
			Moisture: float64(10 + g.intIn(0, 5)),
			Voltage:  1.5 + g.rnd.Float64()*0.2,
		}
	default:
		return model.Reading{
			Moisture: float64(40 + g.intIn(-5, 5)),
			Voltage:  2.58 + g.rnd.Float64()*0.04 - 0.02,
		}
	}
}

// intIn returns an int in [lo, hi], both included.
func (g *DataGenerator) intIn(lo, hi int) int {
	return lo + g.rnd.Intn(hi-lo+1)
}

// Payload builds the /data body for r. The device computes its own verdict
// with the same thresholds as the dashboard; extended adds the sub-flags and
// the raw ADC counts.
func Payload(r model.Reading, extended bool) model.StatusPayload {
	m, v := r.Moisture, r.Voltage
	verdict := safety.Evaluate(r, safety.Default)
	overall := verdict.OverallGood
	p := model.StatusPayload{Moisture: &m, Voltage: &v, EarthingGood: &overall}
	if extended {
		soil, volt := verdict.SoilGood, verdict.VoltGood
		mr := moistureRaw(m)
		vr := voltageRaw(v)
		p.SoilGood, p.VoltGood = &soil, &volt
		p.MoistureRaw, p.VoltageRaw = &mr, &vr
	}
	return p
}

func moistureRaw(pct float64) int {
	return clampADC(adcMax - int(math.Round(pct/100*adcMax)))
}

func voltageRaw(v float64) int {
	return clampADC(int(math.Round(v / adcRef * adcMax)))
}

func clampADC(n int) int {
	if n < 0 {
		return 0
	}
	if n > adcMax {
		return adcMax
	}
	return n
}
