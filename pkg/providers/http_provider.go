package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxErrorBody caps how much of a non-2xx response body is read into an error.
const maxErrorBody = 64 << 10

// ErrorMessageFunc extracts a human-readable message from a non-2xx response
// body. It returns "" when the body is not in the expected shape.
type ErrorMessageFunc func(body []byte) string

// HTTPProvider is the base implementation for HTTP-based provider adapters.
// It provides connection pooling, timeout handling and error classification.
//
// Each call makes exactly one HTTP attempt. Concrete adapters embed this
// struct and implement SendCompletion on top of DoJSONRequest.
type HTTPProvider struct {
	config ProviderConfig
	client *http.Client
	logger *slog.Logger

	// errorMessage decodes provider error bodies; nil uses the raw body
	errorMessage ErrorMessageFunc

	statsMu sync.RWMutex
	stats   ProviderStats
}

// NewHTTPProvider creates a new base HTTP provider with connection pooling.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "provider", "provider", config.Name),
	}
}

// SetErrorMessageFunc installs the decoder used for non-2xx response bodies.
func (p *HTTPProvider) SetErrorMessageFunc(fn ErrorMessageFunc) {
	p.errorMessage = fn
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetType returns the provider's type.
func (p *HTTPProvider) GetType() string {
	return p.config.Type
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// Stats returns a snapshot of the request counters.
func (p *HTTPProvider) Stats() ProviderStats {
	p.statsMu.RLock()
	defer p.statsMu.RUnlock()
	return p.stats
}

func (p *HTTPProvider) recordRequest(err error) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()

	p.stats.TotalRequests++
	if err != nil {
		p.stats.FailedRequests++
		p.stats.LastError = err
		return
	}
	p.stats.LastSuccessfulRequest = time.Now()
}

// DoRequest performs a single HTTP request and classifies failures.
// On success the caller owns the response body.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, &ProviderError{
			Provider: p.config.Name,
			Message:  "failed to create request",
			Cause:    err,
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	p.logger.Debug("sending request to provider", "method", method, "url", url)

	resp, err := p.client.Do(req)
	if err != nil {
		classified := p.classifyTransportError(ctx, err)
		p.recordRequest(classified)
		return nil, classified
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		p.recordRequest(nil)
		return resp, nil
	}

	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	statusErr := p.classifyStatus(resp, errorBody)
	p.recordRequest(statusErr)

	p.logger.Warn("provider returned error status",
		"status", resp.StatusCode,
		"error_type", ErrorType(statusErr),
	)
	return nil, statusErr
}

func (p *HTTPProvider) classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &TimeoutError{
			Provider: p.config.Name,
			Timeout:  p.config.Timeout,
			Cause:    ctx.Err(),
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{
			Provider: p.config.Name,
			Timeout:  p.config.Timeout,
			Cause:    err,
		}
	}

	return &ProviderError{
		Provider: p.config.Name,
		Message:  "request failed",
		Cause:    err,
	}
}

func (p *HTTPProvider) classifyStatus(resp *http.Response, body []byte) error {
	message := p.messageFor(resp.StatusCode, body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			Provider:   p.config.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    message,
		}
	default:
		return &ProviderError{
			Provider:   p.config.Name,
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}
}

func (p *HTTPProvider) messageFor(status int, body []byte) string {
	if p.errorMessage != nil {
		if msg := p.errorMessage(body); msg != "" {
			return msg
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}

// DoJSONRequest marshals reqBody, performs the request and decodes the
// response into respBody.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody interface{}, respBody interface{}, headers map[string]string) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return &ValidationError{
				Field:   "request",
				Message: fmt.Sprintf("failed to marshal request: %v", err),
			}
		}
	}

	resp, err := p.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout, Cause: err}
		}
		return &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("failed to read response: %w", err),
		}
	}

	if respBody == nil {
		return nil
	}
	if len(responseBytes) == 0 {
		return &ParseError{
			Provider: p.config.Name,
			Cause:    fmt.Errorf("empty response body"),
		}
	}
	if err := json.Unmarshal(responseBytes, respBody); err != nil {
		return &ParseError{
			Provider:    p.config.Name,
			RawResponse: string(responseBytes),
			Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	return nil
}

// Close releases idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	p.logger.Debug("provider closed")
	return nil
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}

	return 0
}
