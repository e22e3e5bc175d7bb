package grpc

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// MatchService is the health service name reporting whether a match is running
const MatchService = "rtsbot.Match"

// HealthServer exposes the standard gRPC health protocol for a running match.
// The overall service ("") is SERVING while the server is up; MatchService is
// SERVING only between MatchStarted and MatchStopped.
type HealthServer struct {
	listener net.Listener
	server   *grpc.Server
	health   *health.Server
	errChan  chan error
}

// NewHealthServer listens on address (host:port, port 0 picks a free one)
func NewHealthServer(address string) (*HealthServer, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	h := health.NewServer()
	h.SetServingStatus(MatchService, healthpb.HealthCheckResponse_NOT_SERVING)

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, h)

	return &HealthServer{
		listener: listener,
		server:   server,
		health:   h,
		errChan:  make(chan error, 1),
	}, nil
}

// Addr is the address actually bound
func (s *HealthServer) Addr() string {
	return s.listener.Addr().String()
}

// Start serves in the background. Serve errors are reported by Err.
func (s *HealthServer) Start() {
	go func() {
		if err := s.server.Serve(s.listener); err != nil {
			s.errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
}

// Err delivers a serve failure
func (s *HealthServer) Err() <-chan error {
	return s.errChan
}

// MatchStarted marks the match service SERVING
func (s *HealthServer) MatchStarted() {
	s.health.SetServingStatus(MatchService, healthpb.HealthCheckResponse_SERVING)
}

// MatchStopped marks the match service NOT_SERVING
func (s *HealthServer) MatchStopped() {
	s.health.SetServingStatus(MatchService, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Stop drains in-flight calls, forcing the stop when ctx expires
func (s *HealthServer) Stop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
}
