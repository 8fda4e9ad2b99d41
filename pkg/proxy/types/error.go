package types

// Error messages returned in ErrorResponse.Error.
const (
	MsgInvalidJSON      = "invalid JSON data"
	MsgMissingParams    = "missing required parameters"
	MsgProviderFailure  = "failed to call provider API"
	MsgDatabaseFailure  = "database error"
	MsgInternalError    = "internal server error"
	MsgMethodNotAllowed = "method not allowed"
)

// ErrorResponse is the body of every non-200 response. Details is set only
// for server-side failures and carries the underlying error text.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NewClientError creates a 400 body.
func NewClientError(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// NewServerError creates a 500 body with the underlying error text.
func NewServerError(message, details string) *ErrorResponse {
	return &ErrorResponse{Error: message, Details: details}
}
