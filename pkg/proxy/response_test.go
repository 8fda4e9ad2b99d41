package proxy

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/chatrelay/pkg/providers"
	"mercator-hq/chatrelay/pkg/proxy/types"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantDetails bool
	}{
		{
			name:       "request error",
			err:        &RequestError{Message: types.MsgMissingParams, Field: "uuid"},
			wantStatus: http.StatusBadRequest,
			wantError:  types.MsgMissingParams,
		},
		{
			name:        "provider failure",
			err:         &CallError{Stage: StageProvider, CallID: "abc-1", Cause: &providers.AuthError{Provider: "openai", StatusCode: 401, Message: "bad key"}},
			wantStatus:  http.StatusInternalServerError,
			wantError:   types.MsgProviderFailure,
			wantDetails: true,
		},
		{
			name:        "storage failure",
			err:         &CallError{Stage: StageStorage, CallID: "abc-1", Cause: errors.New("UNIQUE constraint failed: api_calls.uuid")},
			wantStatus:  http.StatusInternalServerError,
			wantError:   types.MsgDatabaseFailure,
			wantDetails: true,
		},
		{
			name:        "unknown error",
			err:         errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantError:   types.MsgInternalError,
			wantDetails: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := HandleError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, status)
			}
			if body.Error != tt.wantError {
				t.Errorf("expected error %q, got %q", tt.wantError, body.Error)
			}
			if (body.Details != "") != tt.wantDetails {
				t.Errorf("expected details present = %v, got %q", tt.wantDetails, body.Details)
			}
		})
	}
}

func TestSanitizeError_MasksKeys(t *testing.T) {
	err := SanitizeError(errors.New("request with key sk-abcdefghijklmnop rejected"))
	if strings.Contains(err.Error(), "abcdefghijklmnop") {
		t.Errorf("expected key to be masked, got %q", err.Error())
	}
}

func TestFormatCallResponse(t *testing.T) {
	resp := &providers.CompletionResponse{
		Content: "hello",
		Usage:   providers.TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
	}

	got := FormatCallResponse(resp, 1500*time.Millisecond, 0)
	if got.Reply != "hello" || got.PromptTokens != 3 || got.CompletionTokens != 2 {
		t.Errorf("unexpected response: %+v", got)
	}
	if got.CallDuration != 1.5 {
		t.Errorf("expected duration 1.5, got %v", got.CallDuration)
	}
}

func TestWriteError_Shape(t *testing.T) {
	rec := httptest.NewRecorder()
	status, err := WriteError(rec, &RequestError{Message: types.MsgInvalidJSON})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusBadRequest || rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d/%d", status, rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(body) != 1 || body["error"] != types.MsgInvalidJSON {
		t.Errorf("expected only an error field, got %v", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}
