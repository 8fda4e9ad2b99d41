package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mercator-hq/chatrelay/pkg/providers"
	"mercator-hq/chatrelay/pkg/proxy/types"
)

// FormatCallResponse builds the 200 body from a provider response and the
// derived call metadata.
func FormatCallResponse(resp *providers.CompletionResponse, duration time.Duration, errorFlag int) *types.CallResponse {
	return &types.CallResponse{
		Reply:            resp.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CallDuration:     duration.Seconds(),
		ErrorFlag:        errorFlag,
	}
}

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// Non-ASCII text and HTML-significant characters are written literally.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteError maps err with HandleError and writes the result.
func WriteError(w http.ResponseWriter, err error) (int, error) {
	status, body := HandleError(err)
	return status, WriteJSONResponse(w, status, body)
}
