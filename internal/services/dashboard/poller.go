package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
)

const maxPayloadBytes = 1 << 20

// ErrorKind classifies a failed poll. All kinds end up as a connectivity flip;
// the kind only feeds logs and metrics.
type ErrorKind int

const (
	NetworkFailure ErrorKind = iota + 1
	BadResponse
	MalformedPayload
)

var (
	ErrNetwork     = errors.New("device unreachable")
	ErrBadResponse = errors.New("device bad response")
	ErrMalformed   = errors.New("device malformed payload")
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network"
	case BadResponse:
		return "status"
	case MalformedPayload:
		return "payload"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case NetworkFailure:
		return ErrNetwork
	case BadResponse:
		return ErrBadResponse
	case MalformedPayload:
		return ErrMalformed
	default:
		return nil
	}
}

// PollError is the single error type returned by Poll.
type PollError struct {
	Kind   ErrorKind
	Status int // HTTP status, BadResponse only
	Err    error
}

func (e *PollError) Error() string {
	switch {
	case e.Kind == BadResponse:
		return fmt.Sprintf("%v: status %d", e.Kind.sentinel(), e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind.sentinel(), e.Err)
	default:
		return e.Kind.sentinel().Error()
	}
}

func (e *PollError) Unwrap() error { return e.Err }

// Is lets errors.Is match the sentinel of the error kind.
func (e *PollError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Sample is the outcome of a successful poll.
type Sample struct {
	Reading model.Reading
	Payload model.StatusPayload
}

// Poller fetches the device status endpoint and tracks connectivity.
type Poller struct {
	url    string
	client *http.Client
	logger *log.Logger

	mu   sync.Mutex
	conn model.Connectivity
}

// NewPoller builds a poller for base+path. A timeout of zero keeps the
// transport default (no timeout).
func NewPoller(base, path string, timeout time.Duration, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.Default()
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	return &Poller{
		url:    base + path,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *Poller) URL() string { return p.url }

// Connectivity returns the state left by the last poll.
func (p *Poller) Connectivity() model.Connectivity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn
}

// Poll issues one GET against the status endpoint. It never retries.
func (p *Poller) Poll(ctx context.Context) (Sample, error) {
	s, err := p.fetch(ctx)
	p.track(err)
	return s, err
}

func (p *Poller) fetch(ctx context.Context) (Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Sample{}, &PollError{Kind: NetworkFailure, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Sample{}, &PollError{Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayloadBytes))
		return Sample{}, &PollError{Kind: BadResponse, Status: resp.StatusCode}
	}

	payload, err := decodePayload(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return Sample{}, &PollError{Kind: MalformedPayload, Err: err}
	}
	return Sample{
		Reading: model.Reading{Moisture: *payload.Moisture, Voltage: *payload.Voltage},
		Payload: payload,
	}, nil
}

// decodePayload rejects the whole body when a required field is missing or
// not a number.
func decodePayload(r io.Reader) (model.StatusPayload, error) {
	var p model.StatusPayload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return model.StatusPayload{}, fmt.Errorf("decode: %w", err)
	}
	var missing []string
	if p.Moisture == nil {
		missing = append(missing, "moisture")
	}
	if p.Voltage == nil {
		missing = append(missing, "voltage")
	}
	if len(missing) > 0 {
		return model.StatusPayload{}, fmt.Errorf("missing field(s): %s", strings.Join(missing, ", "))
	}
	return p, nil
}

func (p *Poller) track(err error) {
	next := model.Connected
	if err != nil {
		next = model.Disconnected
	}
	p.mu.Lock()
	prev := p.conn
	p.conn = next
	p.mu.Unlock()

	if prev != next {
		if err != nil {
			p.logger.Printf("dashboard: device %s -> %s (%v)", p.url, next, err)
		} else {
			p.logger.Printf("dashboard: device %s -> %s", p.url, next)
		}
	}
}
