package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"mercator-hq/chatrelay/pkg/proxy/types"
)

const (
	// MaxRequestBodySize is the default limit on a call request body (10MB).
	MaxRequestBodySize = 10 * 1024 * 1024

	// RequestIDHeader is the HTTP header for request ID propagation.
	RequestIDHeader = "X-Request-ID"

	// UnknownIP is recorded when the remote address cannot be determined.
	UnknownIP = "unknown"
)

// ParseCallRequest reads and validates a POST /api/call body.
//
// The body must be a JSON object whose fields have the expected JSON types.
// Required fields (api_key, messages, model, uuid) must be present and
// non-empty. Bodies larger than maxBytes are rejected; maxBytes <= 0 means
// MaxRequestBodySize.
//
// Every validation failure is returned as a *RequestError. The partially
// decoded request is returned alongside a missing-field error so that the
// caller can still log the call uuid.
func ParseCallRequest(r *http.Request, maxBytes int64) (*types.CallRequest, error) {
	if maxBytes <= 0 {
		maxBytes = MaxRequestBodySize
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, &RequestError{
			Message: types.MsgInvalidJSON,
			Field:   "body",
			Cause:   fmt.Errorf("request body exceeds maximum size of %d bytes", maxBytes),
		}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &RequestError{
			Message: types.MsgInvalidJSON,
			Field:   "body",
			Cause:   errors.New("request body must be a JSON object"),
		}
	}

	var req types.CallRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, &RequestError{
			Message: types.MsgInvalidJSON,
			Field:   "body",
			Cause:   err,
		}
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		return &req, &RequestError{
			Message: types.MsgMissingParams,
			Field:   strings.Join(missing, ","),
		}
	}

	return &req, nil
}

// ClientIP returns the host part of the request's remote address, or
// UnknownIP when it is empty. Forwarding headers are not consulted.
func ClientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return UnknownIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if host == "" {
		return UnknownIP
	}
	return host
}

// ExtractRequestID extracts the request ID from the X-Request-ID header.
// If the header is not present, it returns an empty string.
func ExtractRequestID(r *http.Request) string {
	return r.Header.Get(RequestIDHeader)
}

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string // Message returned to the caller
	Field   string // Offending field(s), for logs only
	Cause   error  // Underlying decode error, if any
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Field)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// ToErrorResponse converts a RequestError to a 400 body.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewClientError(e.Message)
}
