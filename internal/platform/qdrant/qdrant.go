package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/qdrant/go-client/qdrant"
)

// New connects to qdrant over gRPC and checks the server answers.
func New(ctx context.Context, host string, port int, apiKey string, useTLS bool) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client failed: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping qdrant failed: %w", err)
	}
	return client, nil
}
