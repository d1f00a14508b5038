package sensor_simulator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/mux"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
	"github.com/LeonardoBeccarini/earthing_monitor/pkg/dedup"
	"github.com/LeonardoBeccarini/earthing_monitor/pkg/rabbitmq"
)

// SensorSimulator stands in for the earthing device: it serves the status
// endpoint and, when a consumer is set, drives a simulated red LED and buzzer
// from the alarm topic.
type SensorSimulator struct {
	generator *DataGenerator
	extended  bool
	consumer  rabbitmq.IConsumer
	deduper   *dedup.Deduper
	logger    *log.Logger

	mu     sync.Mutex
	redLED bool
	buzzer bool
}

// NewSensorSimulator wires a simulator. consumer may be nil.
func NewSensorSimulator(gen *DataGenerator, extended bool, consumer rabbitmq.IConsumer, logger *log.Logger) *SensorSimulator {
	if logger == nil {
		logger = log.Default()
	}
	return &SensorSimulator{
		generator: gen,
		extended:  extended,
		consumer:  consumer,
		deduper:   dedup.New(2*time.Minute, 1000),
		logger:    logger,
	}
}

// Handler serves /data and /set_mode.
func (s *SensorSimulator) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/data", s.handleData).Methods("GET")
	r.HandleFunc("/set_mode", s.handleSetMode).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) }).Methods("GET")
	return r
}

func (s *SensorSimulator) handleData(w http.ResponseWriter, _ *http.Request) {
	p := Payload(s.generator.Next(), s.extended)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(p); err != nil {
		s.logger.Printf("simulator: encode error: %v", err)
	}
}

func (s *SensorSimulator) handleSetMode(w http.ResponseWriter, r *http.Request) {
	mode, err := ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if prev := s.generator.Mode(); prev != mode {
		s.logger.Printf("simulator: mode %s -> %s", prev, mode)
	}
	s.generator.SetMode(mode)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]Mode{"mode": mode})
}

// Indicators returns the simulated red LED and buzzer state.
func (s *SensorSimulator) Indicators() (redLED, buzzer bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redLED, s.buzzer
}

// Listen consumes the alarm topic until ctx ends. Without a consumer it just
// waits for ctx.
func (s *SensorSimulator) Listen(ctx context.Context) error {
	if s.consumer == nil {
		<-ctx.Done()
		return nil
	}
	s.consumer.SetHandler(s.handleAlarm)
	return s.consumer.ConsumeMessage(ctx)
}

func (s *SensorSimulator) handleAlarm(_ string, msg mqtt.Message) error {
	return s.applyAlarm(msg.Payload())
}

func (s *SensorSimulator) applyAlarm(payload []byte) error {
	var evt model.AlarmEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("invalid AlarmEvent: %w", err)
	}

	// QoS1 redelivery carries the same event; events without an id fall
	// back to a payload hash
	key := evt.ID
	if key == "" {
		h := sha256.Sum256(payload)
		key = hex.EncodeToString(h[:])
	}
	if !s.deduper.ShouldProcess(key) {
		return nil
	}

	s.mu.Lock()
	changed := s.redLED != evt.RedLED || s.buzzer != evt.Buzzer
	s.redLED, s.buzzer = evt.RedLED, evt.Buzzer
	s.mu.Unlock()

	if changed {
		s.logger.Printf("simulator: red LED %s, buzzer %s (moisture=%.0f%% voltage=%.2fV)",
			onOff(evt.RedLED), onOff(evt.Buzzer), evt.Moisture, evt.Voltage)
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
