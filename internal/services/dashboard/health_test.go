package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/safety"
)

func checkHealth(t *testing.T, h *HealthReporter) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.Server().Check(context.Background(), &healthpb.HealthCheckRequest{Service: HealthService})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthReporter_FollowsConnectivity(t *testing.T) {
	h := NewHealthReporter(quietLogger())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHealth(t, h))

	ev := safety.NewEvaluator(false)
	up := Step(InitialState(), sample(10, 2.58), nil, ev)
	h.Observe(up)
	// an alert is still a healthy dashboard
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checkHealth(t, h))

	h.Observe(Step(up, Sample{}, errors.New("down"), ev))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checkHealth(t, h))
}

func TestHealthReporter_ServeStopsWithContext(t *testing.T) {
	h := NewHealthReporter(quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- h.Serve(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-errc)
}
