package openai

import (
	"context"
	"strings"
	"testing"
	"time"

	testhelpers "mercator-hq/chatrelay/internal/providers"
	"mercator-hq/chatrelay/pkg/providers"
)

func newTestProvider(t *testing.T, mock *testhelpers.MockServer) *Provider {
	t.Helper()
	config := testhelpers.TestConfigWithURL("openai", "openai", mock.URL()+"/v1")
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { provider.Close() })
	return provider
}

func userMessage(content string) providers.Message {
	return providers.Message{Role: providers.RoleUser, Content: content}
}

func TestOpenAIProvider_SendCompletion(t *testing.T) {
	// Create mock server
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	// Configure mock response
	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse("Hello, world!", "gpt-4"),
	})

	provider := newTestProvider(t, mock)

	req := testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello"))

	resp, err := provider.SendCompletion(context.Background(), req)
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	// Verify response
	if resp.Model != "gpt-4" {
		t.Errorf("expected model gpt-4, got %s", resp.Model)
	}
	if resp.Content != "Hello, world!" {
		t.Errorf("expected content %q, got %q", "Hello, world!", resp.Content)
	}
	if resp.Usage.PromptTokens != 10 || resp.Usage.CompletionTokens != 20 {
		t.Errorf("expected usage 10/20, got %d/%d", resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	}
	if resp.Usage.TotalTokens != 30 {
		t.Errorf("expected total tokens 30, got %d", resp.Usage.TotalTokens)
	}
	if resp.FinishReason != providers.FinishReasonStop {
		t.Errorf("expected finish reason %q, got %q", providers.FinishReasonStop, resp.FinishReason)
	}

	if mock.GetRequestCount() != 1 {
		t.Errorf("expected 1 request, got %d", mock.GetRequestCount())
	}
}

func TestOpenAIProvider_SendsCallerKey(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body:       testhelpers.MockOpenAIResponse("ok", "gpt-4"),
	})

	config := testhelpers.TestConfigWithURL("openai", "openai", mock.URL()+"/v1/")
	config.Organization = "org-test"
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	req := testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello"))
	req.APIKey = "sk-caller-key"

	if _, err := provider.SendCompletion(context.Background(), req); err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}

	captured := mock.LastRequest()
	if captured == nil {
		t.Fatal("expected a captured request")
	}
	if captured.Method != "POST" {
		t.Errorf("expected POST, got %s", captured.Method)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer sk-caller-key" {
		t.Errorf("expected caller key in Authorization, got %q", got)
	}
	if got := captured.Header.Get("OpenAI-Organization"); got != "org-test" {
		t.Errorf("expected organization header, got %q", got)
	}
	if got := captured.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("expected JSON content type, got %q", got)
	}
}

func TestOpenAIProvider_RequestBody(t *testing.T) {
	tests := []struct {
		name           string
		responseFormat string
		temperature    float64
		wantFormat     bool
	}{
		{name: "text format", responseFormat: providers.ResponseFormatText, temperature: 0.7},
		{name: "json format", responseFormat: providers.ResponseFormatJSON, temperature: 0.2, wantFormat: true},
		{name: "zero temperature", responseFormat: providers.ResponseFormatText, temperature: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewMockServer()
			defer mock.Close()

			mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
				StatusCode: 200,
				Body:       testhelpers.MockOpenAIResponse("ok", "gpt-4"),
			})
			provider := newTestProvider(t, mock)

			req := testhelpers.TestCompletionRequest("gpt-4",
				providers.Message{Role: providers.RoleSystem, Content: "Be brief."},
				userMessage("Hi"))
			req.ResponseFormat = tt.responseFormat
			req.Temperature = tt.temperature

			if _, err := provider.SendCompletion(context.Background(), req); err != nil {
				t.Fatalf("SendCompletion failed: %v", err)
			}

			var body map[string]interface{}
			if err := mock.LastRequest().Decode(&body); err != nil {
				t.Fatalf("failed to decode captured body: %v", err)
			}

			if body["model"] != "gpt-4" {
				t.Errorf("expected model gpt-4, got %v", body["model"])
			}
			temp, ok := body["temperature"]
			if !ok {
				t.Fatal("expected temperature in request body")
			}
			if temp.(float64) != tt.temperature {
				t.Errorf("expected temperature %v, got %v", tt.temperature, temp)
			}

			messages, ok := body["messages"].([]interface{})
			if !ok || len(messages) != 2 {
				t.Fatalf("expected 2 messages, got %v", body["messages"])
			}
			first := messages[0].(map[string]interface{})
			if first["role"] != "system" || first["content"] != "Be brief." {
				t.Errorf("unexpected first message: %v", first)
			}

			format, hasFormat := body["response_format"]
			if hasFormat != tt.wantFormat {
				t.Fatalf("expected response_format present=%v, got %v", tt.wantFormat, format)
			}
			if tt.wantFormat {
				if format.(map[string]interface{})["type"] != "json_object" {
					t.Errorf("expected json_object format, got %v", format)
				}
			}
		})
	}
}

func TestOpenAIProvider_NullContent(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{
		StatusCode: 200,
		Body: `{"id":"x","model":"gpt-4","choices":[{"index":0,"message":{"role":"assistant","content":null},"finish_reason":"content_filter"}],"usage":{"prompt_tokens":3,"completion_tokens":0}}`,
	})
	provider := newTestProvider(t, mock)

	resp, err := provider.SendCompletion(context.Background(),
		testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello")))
	if err != nil {
		t.Fatalf("SendCompletion failed: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("expected empty content, got %q", resp.Content)
	}
	if resp.Usage.Total() != 3 {
		t.Errorf("expected derived total 3, got %d", resp.Usage.Total())
	}
	if resp.FinishReason != providers.FinishReasonContentFilter {
		t.Errorf("expected content_filter, got %q", resp.FinishReason)
	}
}

func TestOpenAIProvider_AuthError(t *testing.T) {
	// Create mock server
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	// Configure auth error response
	mock.SetResponse("/v1/chat/completions", testhelpers.MockAuthError())
	provider := newTestProvider(t, mock)

	_, err := provider.SendCompletion(context.Background(),
		testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello")))
	if err == nil {
		t.Fatal("expected auth error, got nil")
	}

	authErr, ok := err.(*providers.AuthError)
	if !ok {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if authErr.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", authErr.Provider)
	}
	if authErr.StatusCode != 401 {
		t.Errorf("expected status 401, got %d", authErr.StatusCode)
	}
	if authErr.Message != "Incorrect API key provided" {
		t.Errorf("expected unwrapped provider message, got %q", authErr.Message)
	}
}

func TestOpenAIProvider_RateLimitError(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockRateLimitError(60))
	provider := newTestProvider(t, mock)

	_, err := provider.SendCompletion(context.Background(),
		testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello")))

	rateLimitErr, ok := err.(*providers.RateLimitError)
	if !ok {
		t.Fatalf("expected RateLimitError, got %T: %v", err, err)
	}
	if rateLimitErr.RetryAfter != 60*time.Second {
		t.Errorf("expected retry after 60s, got %s", rateLimitErr.RetryAfter)
	}
}

func TestOpenAIProvider_NoRetry(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockServerError())
	provider := newTestProvider(t, mock)

	_, err := provider.SendCompletion(context.Background(),
		testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello")))
	testhelpers.AssertErrorType(t, err, &providers.ProviderError{})

	if mock.GetRequestCount() != 1 {
		t.Errorf("expected exactly 1 request, got %d", mock.GetRequestCount())
	}

	stats := provider.Stats()
	if stats.TotalRequests != 1 || stats.FailedRequests != 1 {
		t.Errorf("expected 1/1 total/failed, got %d/%d", stats.TotalRequests, stats.FailedRequests)
	}
}

func TestOpenAIProvider_Timeout(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()

	mock.SetResponse("/v1/chat/completions", testhelpers.MockTimeoutError(2*time.Second))
	provider := newTestProvider(t, mock)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := provider.SendCompletion(ctx,
		testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello")))
	testhelpers.AssertErrorType(t, err, &providers.TimeoutError{})

	if got := providers.ErrorType(err); got != providers.ErrorTypeTimeout {
		t.Errorf("expected error type timeout, got %s", got)
	}
}

func TestOpenAIProvider_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"id":`},
		{name: "no choices", body: `{"id":"x","model":"gpt-4","choices":[]}`},
		{name: "empty body", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewMockServer()
			defer mock.Close()

			mock.SetResponse("/v1/chat/completions", testhelpers.MockResponse{StatusCode: 200, Body: tt.body})
			provider := newTestProvider(t, mock)

			_, err := provider.SendCompletion(context.Background(),
				testhelpers.TestCompletionRequest("gpt-4", userMessage("Hello")))
			testhelpers.AssertErrorType(t, err, &providers.ParseError{})
		})
	}
}

func TestOpenAIProvider_ValidationError(t *testing.T) {
	config := testhelpers.TestConfig("openai", "openai")
	provider, err := NewProvider(config)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer provider.Close()

	tests := []struct {
		name    string
		req     *providers.CompletionRequest
		wantErr string
	}{
		{
			name:    "nil request",
			req:     nil,
			wantErr: "request is required",
		},
		{
			name: "empty model",
			req: &providers.CompletionRequest{
				Messages: []providers.Message{userMessage("Hello")},
				APIKey:   testhelpers.TestAPIKey,
			},
			wantErr: "model is required",
		},
		{
			name: "empty messages",
			req: &providers.CompletionRequest{
				Model:    "gpt-4",
				Messages: []providers.Message{},
				APIKey:   testhelpers.TestAPIKey,
			},
			wantErr: "at least one message is required",
		},
		{
			name: "missing key",
			req: &providers.CompletionRequest{
				Model:    "gpt-4",
				Messages: []providers.Message{userMessage("Hello")},
			},
			wantErr: "API key is required",
		},
		{
			name: "unknown response format",
			req: &providers.CompletionRequest{
				Model:          "gpt-4",
				Messages:       []providers.Message{userMessage("Hello")},
				APIKey:         testhelpers.TestAPIKey,
				ResponseFormat: "xml",
			},
			wantErr: "unsupported response format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := provider.SendCompletion(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			validationErr, ok := err.(*providers.ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if !strings.Contains(validationErr.Message, tt.wantErr) {
				t.Errorf("expected error message to contain %q, got %q", tt.wantErr, validationErr.Message)
			}
		})
	}
}

func TestNewProvider_RequiresName(t *testing.T) {
	_, err := NewProvider(providers.ProviderConfig{})
	if _, ok := err.(*providers.ConfigError); !ok {
		t.Fatalf("expected ConfigError, got %T: %v", err, err)
	}
}
