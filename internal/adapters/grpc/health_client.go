package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthReport is the status of a running rtsbot process
type HealthReport struct {
	Overall string
	Match   string
}

// CheckHealth queries the health endpoint at address
func CheckHealth(ctx context.Context, address string) (*HealthReport, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	report := &HealthReport{}

	overall, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	report.Overall = overall.GetStatus().String()

	match, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: MatchService})
	if err != nil {
		return nil, fmt.Errorf("match health check failed: %w", err)
	}
	report.Match = match.GetStatus().String()

	return report, nil
}
