package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
)

// HealthService is the gRPC health service name reported by the dashboard.
const HealthService = "earthing.Dashboard"

// HealthReporter exposes device connectivity through grpc.health.v1:
// SERVING while connected, NOT_SERVING otherwise.
type HealthReporter struct {
	server *health.Server
	logger *log.Logger
}

func NewHealthReporter(logger *log.Logger) *HealthReporter {
	if logger == nil {
		logger = log.Default()
	}
	hs := health.NewServer()
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{server: hs, logger: logger}
}

// Server returns the underlying health server, e.g. for in-process checks.
func (h *HealthReporter) Server() healthpb.HealthServer { return h.server }

// Observe implements Observer.
func (h *HealthReporter) Observe(st State) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if st.Connectivity == model.Connected {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus(HealthService, status)
}

// Serve listens on addr until ctx is cancelled.
func (h *HealthReporter) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", addr, err)
	}
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, h.server)

	go func() {
		<-ctx.Done()
		h.server.Shutdown()
		srv.GracefulStop()
	}()

	h.logger.Printf("dashboard: gRPC health listening on %s", lis.Addr())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}
