package dashboard

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func deviceServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPoller_Success(t *testing.T) {
	srv := deviceServer(t, http.StatusOK, `{"moisture":45.2,"voltage":2.58,"earthingGood":true}`)
	p := NewPoller(srv.URL+"/", "data", time.Second, quietLogger())
	assert.Equal(t, srv.URL+"/data", p.URL())
	assert.Equal(t, model.Disconnected, p.Connectivity())

	s, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Reading{Moisture: 45.2, Voltage: 2.58}, s.Reading)
	require.NotNil(t, s.Payload.EarthingGood)
	assert.True(t, *s.Payload.EarthingGood)
	assert.False(t, s.Payload.HasDeviceVerdict())
	assert.Equal(t, model.Connected, p.Connectivity())
}

func TestPoller_ExtendedPayload(t *testing.T) {
	srv := deviceServer(t, http.StatusOK,
		`{"moisture":10,"voltage":2.58,"soilGood":false,"voltGood":true,"earthingGood":false,"moistureRaw":3100,"voltageRaw":3200}`)
	p := NewPoller(srv.URL, "/data", time.Second, quietLogger())

	s, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.True(t, s.Payload.HasDeviceVerdict())
	require.NotNil(t, s.Payload.MoistureRaw)
	assert.Equal(t, 3100, *s.Payload.MoistureRaw)
}

func TestPoller_Failures(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		kind     ErrorKind
		sentinel error
	}{
		{"server error", http.StatusInternalServerError, `oops`, BadResponse, ErrBadResponse},
		{"not found", http.StatusNotFound, ``, BadResponse, ErrBadResponse},
		{"invalid json", http.StatusOK, `{"moisture":`, MalformedPayload, ErrMalformed},
		{"missing voltage", http.StatusOK, `{"moisture":45}`, MalformedPayload, ErrMalformed},
		{"missing moisture", http.StatusOK, `{"voltage":2.58}`, MalformedPayload, ErrMalformed},
		{"non-numeric moisture", http.StatusOK, `{"moisture":"45","voltage":2.58}`, MalformedPayload, ErrMalformed},
		{"null voltage", http.StatusOK, `{"moisture":45,"voltage":null}`, MalformedPayload, ErrMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := deviceServer(t, tc.status, tc.body)
			p := NewPoller(srv.URL, "/data", time.Second, quietLogger())

			_, err := p.Poll(context.Background())
			require.Error(t, err)

			var pe *PollError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.kind, pe.Kind)
			assert.ErrorIs(t, err, tc.sentinel)
			if tc.kind == BadResponse {
				assert.Equal(t, tc.status, pe.Status)
			}
			assert.Equal(t, model.Disconnected, p.Connectivity())
		})
	}
}

func TestPoller_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	p := NewPoller(url, "/data", time.Second, quietLogger())
	_, err := p.Poll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestPoller_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewPoller(srv.URL, "/data", 50*time.Millisecond, quietLogger())
	_, err := p.Poll(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestPoller_ConnectivityFollowsLastPoll(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"moisture":45,"voltage":2.58}`)
	}))
	defer srv.Close()

	p := NewPoller(srv.URL, "/data", time.Second, quietLogger())
	ctx := context.Background()

	_, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Connected, p.Connectivity())

	healthy.Store(false)
	_, err = p.Poll(ctx)
	require.Error(t, err)
	assert.Equal(t, model.Disconnected, p.Connectivity())

	healthy.Store(true)
	_, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Connected, p.Connectivity())
}

func TestPollError_Message(t *testing.T) {
	err := &PollError{Kind: BadResponse, Status: 502}
	assert.Equal(t, "device bad response: status 502", err.Error())
	assert.Equal(t, "status", BadResponse.String())
	assert.Equal(t, "network", NetworkFailure.String())
	assert.Equal(t, "payload", MalformedPayload.String())
}
