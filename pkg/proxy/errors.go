package proxy

import (
	"errors"
	"fmt"
	"net/http"

	"mercator-hq/chatrelay/pkg/proxy/types"
	"mercator-hq/chatrelay/pkg/telemetry/logging"
)

// Call failure stages.
const (
	StageProvider = "provider"
	StageStorage  = "storage"
)

// CallError is a server-side failure of a validated call.
type CallError struct {
	Stage  string // StageProvider or StageStorage
	CallID string
	Cause  error
}

// Error implements the error interface.
func (e *CallError) Error() string {
	return fmt.Sprintf("call %s failed at %s: %v", e.CallID, e.Stage, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *CallError) Unwrap() error {
	return e.Cause
}

// HandleError maps an error to its HTTP status and response body.
//
//   - *RequestError: 400 {"error"}
//   - *CallError at the provider stage: 500 {"error": "failed to call provider API", "details"}
//   - *CallError at the storage stage: 500 {"error": "database error", "details"}
//   - anything else: 500 {"error": "internal server error", "details"}
func HandleError(err error) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return http.StatusBadRequest, reqErr.ToErrorResponse()
	}

	var callErr *CallError
	if errors.As(err, &callErr) {
		details := SanitizeError(callErr.Cause).Error()
		switch callErr.Stage {
		case StageProvider:
			return http.StatusInternalServerError, types.NewServerError(types.MsgProviderFailure, details)
		case StageStorage:
			return http.StatusInternalServerError, types.NewServerError(types.MsgDatabaseFailure, details)
		}
	}

	return http.StatusInternalServerError, types.NewServerError(types.MsgInternalError, SanitizeError(err).Error())
}

var redactor = logging.NewRedactor()

// SanitizeError masks credentials that an upstream error message may echo
// back, such as the caller's API key.
func SanitizeError(err error) error {
	if err == nil {
		return errors.New("unknown error")
	}
	msg := err.Error()
	if redacted := redactor.RedactString(msg); redacted != msg {
		return errors.New(redacted)
	}
	return err
}
