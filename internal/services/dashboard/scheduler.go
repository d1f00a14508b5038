package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/safety"
)

// Source is the polling side of the scheduler.
type Source interface {
	Poll(ctx context.Context) (Sample, error)
}

// Observer is notified on the scheduler goroutine after every poll tick.
type Observer interface {
	Observe(st State)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(st State)

func (f ObserverFunc) Observe(st State) { f(st) }

// SchedulerConfig wires a Scheduler.
type SchedulerConfig struct {
	Source     Source
	Evaluator  safety.Evaluator
	Context    RenderContext
	PollEvery  time.Duration
	ClockEvery time.Duration
	Metrics    *Metrics
	Observers  []Observer
	// Publish is called after every render (poll or clock) with no state;
	// typically it pushes the frame to websocket clients.
	Publish func()
	Logger  *log.Logger
}

// Scheduler runs the clock task and the poll task. A single goroutine owns
// the dashboard state and the render context; polls run on a helper
// goroutine and hand their result back over a channel.
type Scheduler struct {
	cfg SchedulerConfig
	now func() time.Time

	mu    sync.RWMutex
	state State
}

func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = time.Second
	}
	if cfg.ClockEvery <= 0 {
		cfg.ClockEvery = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Scheduler{cfg: cfg, now: time.Now, state: InitialState()}
}

// State returns a copy of the latest state, safe to read from any goroutine.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Series = st.Series.Clone()
	return st
}

type pollResult struct {
	sample Sample
	err    error
}

// Run blocks until ctx is cancelled. The first clock update and the first
// poll start immediately.
func (s *Scheduler) Run(ctx context.Context) {
	pollT := time.NewTicker(s.cfg.PollEvery)
	defer pollT.Stop()
	clockT := time.NewTicker(s.cfg.ClockEvery)
	defer clockT.Stop()

	results := make(chan pollResult, 1)
	inFlight := false
	startPoll := func() {
		inFlight = true
		go func() {
			start := time.Now()
			smp, err := s.cfg.Source.Poll(ctx)
			s.cfg.Metrics.ObservePoll(time.Since(start), err)
			results <- pollResult{sample: smp, err: err}
		}()
	}

	s.tickClock(s.now())
	startPoll()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-clockT.C:
			s.tickClock(now)
		case <-pollT.C:
			if inFlight {
				s.cfg.Metrics.PollSkipped()
				continue
			}
			startPoll()
		case r := <-results:
			inFlight = false
			s.apply(r.sample, r.err)
		}
	}
}

func (s *Scheduler) tickClock(now time.Time) {
	RenderClock(s.cfg.Context, now)
	s.publish()
}

// apply runs Step and Render for one poll outcome. Only the scheduler
// goroutine calls it.
func (s *Scheduler) apply(smp Sample, err error) {
	s.mu.RLock()
	prev := s.state
	s.mu.RUnlock()

	next := Step(prev, smp, err, s.cfg.Evaluator)
	if next.Fresh && next.Verdict.State() != prev.Verdict.State() && prev.Seen {
		s.cfg.Logger.Printf("dashboard: earthing %s -> %s (moisture=%.1f%% voltage=%.3fV)",
			prev.Verdict.State(), next.Verdict.State(), next.Reading.Moisture, next.Reading.Voltage)
	}

	Render(s.cfg.Context, next)

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	for _, o := range s.cfg.Observers {
		o.Observe(next)
	}
	s.publish()
}

func (s *Scheduler) publish() {
	if s.cfg.Publish != nil {
		s.cfg.Publish()
	}
}
