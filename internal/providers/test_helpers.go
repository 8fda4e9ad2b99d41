package providers

import (
	"errors"
	"testing"
	"time"

	"mercator-hq/chatrelay/pkg/providers"
)

// TestAPIKey is the caller key used by test requests.
const TestAPIKey = "sk-test-0123456789"

// TestConfig returns a test provider configuration.
func TestConfig(name, providerType string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		Type:                providerType,
		BaseURL:             "http://localhost:8080",
		Timeout:             5 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConfigWithURL returns a test config with a specific base URL.
func TestConfigWithURL(name, providerType, baseURL string) providers.ProviderConfig {
	config := TestConfig(name, providerType)
	config.BaseURL = baseURL
	return config
}

// TestCompletionRequest creates a test completion request carrying TestAPIKey.
func TestCompletionRequest(model string, messages ...providers.Message) *providers.CompletionRequest {
	return &providers.CompletionRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    0.7,
		ResponseFormat: providers.ResponseFormatText,
		APIKey:         TestAPIKey,
	}
}

// AssertErrorType fails the test unless err wraps an error of the same
// concrete type as expectedType.
func AssertErrorType(t *testing.T, err error, expectedType interface{}) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var ok bool
	switch expectedType.(type) {
	case *providers.AuthError:
		var target *providers.AuthError
		ok = errors.As(err, &target)
	case *providers.RateLimitError:
		var target *providers.RateLimitError
		ok = errors.As(err, &target)
	case *providers.TimeoutError:
		var target *providers.TimeoutError
		ok = errors.As(err, &target)
	case *providers.ProviderError:
		var target *providers.ProviderError
		ok = errors.As(err, &target)
	case *providers.ParseError:
		var target *providers.ParseError
		ok = errors.As(err, &target)
	case *providers.ValidationError:
		var target *providers.ValidationError
		ok = errors.As(err, &target)
	default:
		t.Fatalf("unknown error type: %T", expectedType)
	}

	if !ok {
		t.Fatalf("expected %T, got %T: %v", expectedType, err, err)
	}
}
