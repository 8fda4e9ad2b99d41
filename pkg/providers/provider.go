package providers

import "context"

// Provider is the interface every chat-completion adapter implements.
//
// All methods accept a context.Context for cancellation and timeout control.
// Implementations must respect context cancellation and return immediately when
// the context is cancelled.
//
// Example usage:
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    return err
//	}
//
//	req := &CompletionRequest{
//	    Model:  "gpt-4o",
//	    APIKey: callerKey,
//	    Messages: []Message{
//	        {Role: "user", Content: "Hello!"},
//	    },
//	}
//
//	resp, err := provider.SendCompletion(ctx, req)
type Provider interface {
	// SendCompletion sends a completion request to the provider and returns the
	// normalized response. Exactly one HTTP attempt is made; failures are
	// returned to the caller without retry.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// GetName returns the provider's configured name (e.g., "openai").
	GetName() string

	// Close releases idle connections. After calling Close, the provider
	// should not be used.
	Close() error
}
