package providers

import "time"

// Message represents a single message in a conversation.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// TokenUsage tracks token consumption for a request.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Total returns TotalTokens, or PromptTokens+CompletionTokens when the
// provider did not report a total.
func (u TokenUsage) Total() int {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.PromptTokens + u.CompletionTokens
}

// CompletionRequest represents a provider-agnostic completion request.
type CompletionRequest struct {
	// Model is the model identifier (e.g., "gpt-4o")
	Model string `json:"model"`

	// Messages is the conversation history
	Messages []Message `json:"messages"`

	// Temperature controls randomness. It is always sent, including 0.
	Temperature float64 `json:"temperature"`

	// ResponseFormat is ResponseFormatText or ResponseFormatJSON. Empty
	// means text.
	ResponseFormat string `json:"response_format,omitempty"`

	// APIKey is the caller's credential for this single request. It is
	// never serialized or logged.
	APIKey string `json:"-"`

	// Metadata contains request context for logging; it is not sent to the provider
	Metadata map[string]string `json:"-"`
}

// CompletionResponse represents a provider-agnostic completion response.
type CompletionResponse struct {
	// ID is the unique response identifier
	ID string `json:"id"`

	// Model is the model that generated the response
	Model string `json:"model"`

	// Content is the generated text content; empty when the provider
	// returned null content
	Content string `json:"content"`

	// FinishReason indicates why generation stopped
	FinishReason string `json:"finish_reason"`

	// Usage contains token consumption information
	Usage TokenUsage `json:"usage"`

	// Created is the Unix timestamp when the response was created
	Created int64 `json:"created"`
}

// ProviderConfig contains configuration for a single provider instance.
// It carries no credential: the key arrives with each request.
type ProviderConfig struct {
	// Name is the provider identifier (e.g., "openai")
	Name string

	// Type is the provider type
	Type string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// Organization is sent as the OpenAI-Organization header when set
	Organization string

	// Timeout is the request timeout duration
	Timeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// ProviderStats counts requests sent through an HTTPProvider.
type ProviderStats struct {
	TotalRequests         int64
	FailedRequests        int64
	LastSuccessfulRequest time.Time
	LastError             error
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reason constants
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonToolCalls     = "tool_calls"
	FinishReasonContentFilter = "content_filter"
)

// Response format constants
const (
	ResponseFormatText = "text"
	ResponseFormatJSON = "json"
)
