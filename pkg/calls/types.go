package calls

import (
	"context"
	"errors"
	"io"
	"time"
)

// CallTimeLayout is the textual layout of call_time in the database.
const CallTimeLayout = "2006-01-02 15:04:05.000000"

// ErrNotFound is returned by Get when no record has the requested uuid.
var ErrNotFound = errors.New("call record not found")

// Message is a single chat message as supplied by the caller.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CallRecord is the persisted record of one relayed call.
type CallRecord struct {
	// Identity
	UUID string `json:"uuid"` // Caller-supplied, primary key

	// Request
	Messages       string  `json:"messages"`        // JSON-encoded []Message, see EncodeMessages
	Model          string  `json:"model"`           // Requested model
	ResponseFormat string  `json:"response_format"` // "text" or "json"
	Temperature    float64 `json:"temperature"`     // Sampling temperature

	// Response
	Reply            string `json:"reply"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`

	// Derived
	CallDuration float64   `json:"call_duration"` // Seconds spent in the provider call
	ErrorFlag    int       `json:"error_flag"`    // 1 when the reply looks malformed
	CallTime     time.Time `json:"call_time"`     // UTC, set at persistence time
	RequestIP    string    `json:"request_ip"`    // Remote host, "unknown" if unavailable
}

// DecodedMessages decodes the stored messages column.
func (r *CallRecord) DecodedMessages() ([]Message, error) {
	return DecodeMessages(r.Messages)
}

// Query defines read-only filters over stored call records.
type Query struct {
	Model     string     // Exact model match
	Since     *time.Time // Inclusive lower bound on call_time
	Until     *time.Time // Exclusive upper bound on call_time
	ErrorFlag *int       // 0 or 1

	// Pagination
	Limit  int // Max records to return, 0 means backend default
	Offset int // Skip N records
}

// DefaultListLimit caps List results when Query.Limit is zero.
const DefaultListLimit = 100

// Storage defines the interface for call record storage backends.
// Implementations must be safe for concurrent use.
//
// There is intentionally no update or delete operation.
type Storage interface {
	// Store inserts a new record in a single transaction. Storing a uuid
	// that already exists fails with an error satisfying IsDuplicate and
	// leaves the existing record untouched.
	Store(ctx context.Context, record *CallRecord) error

	// Get returns the record with the given uuid or ErrNotFound.
	Get(ctx context.Context, uuid string) (*CallRecord, error)

	// List returns records matching the query, newest first.
	List(ctx context.Context, query *Query) ([]*CallRecord, error)

	// Count returns the number of records matching the query.
	Count(ctx context.Context, query *Query) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the storage backend.
	Close() error
}

// Checkpointer is implemented by backends that support a write-ahead log
// checkpoint.
type Checkpointer interface {
	Checkpoint(ctx context.Context) error
}

// Exporter writes call records to a writer in some format.
type Exporter interface {
	Export(ctx context.Context, records []*CallRecord, w io.Writer) error
}

// FormatCallTime renders t in CallTimeLayout after converting it to UTC.
func FormatCallTime(t time.Time) string {
	return t.UTC().Format(CallTimeLayout)
}
