package utilities

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthServer serves the standard gRPC health protocol on its own listener.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
}

// NewHealthServer creates a gRPC server with the health service registered and
// marked as serving.
func NewHealthServer() *HealthServer {
	grpcServer := grpc.NewServer()
	healthServer := RegisterHealthServer(grpcServer)

	return &HealthServer{server: grpcServer, health: healthServer}
}

// RegisterHealthServer registers the gRPC health check service.
func RegisterHealthServer(grpcServer *grpc.Server) *health.Server {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	return healthServer
}

// Serve blocks serving on lis until Stop is called.
func (s *HealthServer) Serve(lis net.Listener) error {
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc health server: %w", err)
	}

	return nil
}

// Stop marks the service as not serving and stops the server gracefully.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}
