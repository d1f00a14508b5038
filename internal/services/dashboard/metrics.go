package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
)

// Metrics exports poll outcomes and the latest dashboard state.
type Metrics struct {
	registry *prometheus.Registry

	polls        *prometheus.CounterVec
	pollDuration prometheus.Histogram
	pollsSkipped prometheus.Counter
	connected    prometheus.Gauge
	checks       *prometheus.GaugeVec
	moisture     prometheus.Gauge
	voltage      prometheus.Gauge
	alarms       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earthing_polls_total",
			Help: "Device polls by result (ok, network, status, payload).",
		}, []string{"result"}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "earthing_poll_duration_seconds",
			Help:    "Duration of device polls.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		pollsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "earthing_polls_skipped_total",
			Help: "Poll ticks skipped because the previous poll was still in flight.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "earthing_device_connected",
			Help: "1 when the last poll succeeded.",
		}),
		checks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "earthing_check_good",
			Help: "Latest verdict per check (soil, voltage, overall); 1 is good.",
		}, []string{"check"}),
		moisture: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "earthing_soil_moisture_percent",
			Help: "Latest soil moisture reading.",
		}),
		voltage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "earthing_leakage_voltage_volts",
			Help: "Latest AC leakage voltage reading.",
		}),
		alarms: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "earthing_alarm_publish_total",
			Help: "Alarm publications to the broker by result (ok, error, skipped).",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.polls, m.pollDuration, m.pollsSkipped, m.connected,
		m.checks, m.moisture, m.voltage, m.alarms,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePoll records one poll outcome.
func (m *Metrics) ObservePoll(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.pollDuration.Observe(d.Seconds())
	result := "ok"
	if err != nil {
		result = "unknown"
		var pe *PollError
		if errors.As(err, &pe) {
			result = pe.Kind.String()
		}
	}
	m.polls.WithLabelValues(result).Inc()
}

func (m *Metrics) PollSkipped() {
	if m == nil {
		return
	}
	m.pollsSkipped.Inc()
}

func (m *Metrics) AlarmPublish(result string) {
	if m == nil {
		return
	}
	m.alarms.WithLabelValues(result).Inc()
}

// Observe implements Observer.
func (m *Metrics) Observe(st State) {
	if m == nil {
		return
	}
	m.connected.Set(b2f(st.Connectivity == model.Connected))
	if !st.Fresh {
		return
	}
	m.checks.WithLabelValues("soil").Set(b2f(st.Verdict.SoilGood))
	m.checks.WithLabelValues("voltage").Set(b2f(st.Verdict.VoltGood))
	m.checks.WithLabelValues("overall").Set(b2f(st.Verdict.OverallGood))
	m.moisture.Set(st.Reading.Moisture)
	m.voltage.Set(st.Reading.Voltage)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
