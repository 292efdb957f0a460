package llm

import (
	"context"
)

// Provider defines the interface for text-generation providers
type Provider interface {
	// Complete sends a prompt and returns the raw text completion
	Complete(ctx context.Context, prompt string) (string, error)

	// IsHealthy checks if the provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the provider
	GetProviderName() string
}
