package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
	"github.com/LeonardoBeccarini/earthing_monitor/pkg/dedup"
	"github.com/LeonardoBeccarini/earthing_monitor/pkg/rabbitmq"
)

// AlarmConfig tunes the alarm mirror.
type AlarmConfig struct {
	BreakerFailures int
	BreakerOpenFor  time.Duration
	// Refresh re-publishes an unchanged alarm state after this long.
	Refresh time.Duration
}

// AlarmMirror publishes the alert indicator state (red LED, buzzer) to the
// broker so the device-side indicators follow the dashboard. Observe only
// hands the latest event to Run, which publishes through a circuit breaker:
// a slow or dead broker never holds up the tick loop.
type AlarmMirror struct {
	publisher rabbitmq.IPublisher
	breaker   *gobreaker.CircuitBreaker
	deduper   *dedup.Deduper
	metrics   *Metrics
	logger    *log.Logger
	now       func() time.Time

	// one slot: an unpublished event is replaced by a newer one
	pending chan model.AlarmEvent

	last *bool // Run goroutine only
}

func NewAlarmMirror(p rabbitmq.IPublisher, cfg AlarmConfig, metrics *Metrics, logger *log.Logger) *AlarmMirror {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.BreakerFailures < 1 {
		cfg.BreakerFailures = 3
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 10 * time.Second
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = 30 * time.Second
	}
	fails := uint32(cfg.BreakerFailures)
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "alarm-broker",
		Timeout: cfg.BreakerOpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= fails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Printf("dashboard: breaker %s %s -> %s", name, from, to)
		},
	})
	return &AlarmMirror{
		publisher: p,
		breaker:   cb,
		deduper:   dedup.New(cfg.Refresh, 16),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
		pending:   make(chan model.AlarmEvent, 1),
	}
}

// Observe implements Observer. Only fresh readings change the alarm; on a
// disconnected tick the physical indicators keep their last state.
// It never blocks.
func (a *AlarmMirror) Observe(st State) {
	if !st.Fresh {
		return
	}
	evt := a.event(st)
	select {
	case a.pending <- evt:
		return
	default:
	}
	// slot taken: replace the stale event
	select {
	case <-a.pending:
	default:
	}
	select {
	case a.pending <- evt:
	default:
	}
}

// Run publishes observed events until ctx is cancelled.
func (a *AlarmMirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-a.pending:
			a.handle(evt)
		}
	}
}

func (a *AlarmMirror) event(st State) model.AlarmEvent {
	active := !st.Verdict.OverallGood
	return model.AlarmEvent{
		ID:        uuid.NewString(),
		Active:    active,
		RedLED:    active,
		Buzzer:    active,
		SoilGood:  st.Verdict.SoilGood,
		VoltGood:  st.Verdict.VoltGood,
		Moisture:  st.Reading.Moisture,
		Voltage:   st.Reading.Voltage,
		Timestamp: a.now().UTC(),
	}
}

// handle publishes evt when the alarm state changed or the refresh period
// elapsed.
func (a *AlarmMirror) handle(evt model.AlarmEvent) {
	active := evt.Active
	key := strconv.FormatBool(active)
	if a.last == nil || *a.last != active {
		a.deduper.Forget(key)
	}
	if !a.deduper.ShouldProcess(key) {
		return
	}

	b, err := json.Marshal(evt)
	if err != nil {
		a.logger.Printf("dashboard: alarm marshal error: %v", err)
		return
	}

	_, err = a.breaker.Execute(func() (any, error) {
		return nil, a.publisher.PublishMessageQos(1, true, b)
	})
	switch {
	case err == nil:
		a.last = &active
		a.metrics.AlarmPublish("ok")
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		a.metrics.AlarmPublish("skipped")
		a.deduper.Forget(key)
	default:
		a.logger.Printf("dashboard: alarm publish error: %v", err)
		a.metrics.AlarmPublish("error")
		a.deduper.Forget(key)
	}
}

// BreakerState returns the breaker state, for logs and tests.
func (a *AlarmMirror) BreakerState() gobreaker.State {
	return a.breaker.State()
}
