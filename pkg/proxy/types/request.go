package types

import "encoding/json"

// Response format values accepted in CallRequest.ResponseFormat.
const (
	ResponseFormatText = "text"
	ResponseFormatJSON = "json"
)

// DefaultTemperature is used when the request omits temperature.
const DefaultTemperature = 1.0

// CallRequest is the body of POST /api/call.
type CallRequest struct {
	// APIKey is the caller's own provider credential. It is forwarded as a
	// bearer token and never stored or logged.
	APIKey string `json:"api_key"`

	// Messages is the conversation forwarded to the provider.
	Messages []Message `json:"messages"`

	// Model is the provider model name (e.g., "gpt-4o").
	Model string `json:"model"`

	// UUID identifies the call and becomes the primary key of its record.
	UUID string `json:"uuid"`

	// ResponseFormat is "text" or "json". Optional, defaults to "text".
	// Present but empty or null is a validation error.
	ResponseFormat *string `json:"response_format,omitempty"`

	// Temperature controls sampling randomness. Optional, defaults to 1.0.
	Temperature *float64 `json:"temperature,omitempty"`

	// responseFormatNull records an explicit "response_format": null.
	responseFormatNull bool
}

// UnmarshalJSON decodes a call request, telling an absent response_format
// apart from one sent as null.
func (r *CallRequest) UnmarshalJSON(data []byte) error {
	type plain CallRequest
	aux := struct {
		*plain
		ResponseFormat json.RawMessage `json:"response_format"`
	}{plain: (*plain)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.ResponseFormat = nil
	r.responseFormatNull = false
	switch {
	case len(aux.ResponseFormat) == 0:
	case string(aux.ResponseFormat) == "null":
		r.responseFormatNull = true
	default:
		var format string
		if err := json.Unmarshal(aux.ResponseFormat, &format); err != nil {
			return err
		}
		r.ResponseFormat = &format
	}
	return nil
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the author of the message ("system", "user" or "assistant").
	Role string `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`
}

// GetResponseFormat returns the requested response format, or "text" when
// the field was omitted.
func (r *CallRequest) GetResponseFormat() string {
	if r.ResponseFormat == nil {
		return ResponseFormatText
	}
	return *r.ResponseFormat
}

// GetTemperature returns the requested temperature, or DefaultTemperature
// when the field was omitted or null.
func (r *CallRequest) GetTemperature() float64 {
	if r.Temperature == nil {
		return DefaultTemperature
	}
	return *r.Temperature
}

// MissingFields returns the names of required fields that are absent or
// empty, in request order. A response_format sent as "" or null counts as
// missing.
func (r *CallRequest) MissingFields() []string {
	var missing []string
	if r.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if len(r.Messages) == 0 {
		missing = append(missing, "messages")
	}
	if r.Model == "" {
		missing = append(missing, "model")
	}
	if r.responseFormatNull || (r.ResponseFormat != nil && *r.ResponseFormat == "") {
		missing = append(missing, "response_format")
	}
	if r.UUID == "" {
		missing = append(missing, "uuid")
	}
	return missing
}
