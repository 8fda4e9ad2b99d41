package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"

	"mercator-hq/chatrelay/pkg/calls"
)

// Driver names registered with database/sql.
const (
	// DriverMattn is github.com/mattn/go-sqlite3 (cgo).
	DriverMattn = "sqlite3"

	// DriverModernc is modernc.org/sqlite (pure Go).
	DriverModernc = "sqlite"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Driver selects the database/sql driver, DriverMattn or DriverModernc.
	// Default: DriverMattn
	Driver string

	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       DriverMattn,
		Path:         "api_calls.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements calls.Storage using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage opens the database, applies connection settings and
// creates the call record table if it does not exist.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverMattn
	}

	logger := slog.Default().With("component", "calls.storage.sqlite")

	dsn, err := buildDSN(config)
	if err != nil {
		return nil, calls.NewStorageError("sqlite", "open", err)
	}

	db, err := sql.Open(config.Driver, dsn)
	if err != nil {
		return nil, calls.NewStorageError("sqlite", "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// buildDSN encodes per-connection pragmas in the form each driver expects,
// so every pooled connection gets the same busy timeout.
func buildDSN(config *SQLiteConfig) (string, error) {
	busyMs := config.BusyTimeout.Milliseconds()

	switch config.Driver {
	case DriverMattn:
		params := []string{fmt.Sprintf("_busy_timeout=%d", busyMs)}
		if config.WALMode {
			params = append(params, "_journal_mode=WAL")
		}
		return config.Path + "?" + strings.Join(params, "&"), nil
	case DriverModernc:
		params := []string{fmt.Sprintf("_pragma=busy_timeout(%d)", busyMs)}
		if config.WALMode {
			params = append(params, "_pragma=journal_mode(WAL)")
		}
		return config.Path + "?" + strings.Join(params, "&"), nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q", config.Driver)
	}
}

// initialize verifies connectivity and creates the schema.
func (s *SQLiteStorage) initialize() error {
	if err := s.db.Ping(); err != nil {
		return calls.NewStorageError("sqlite", "ping", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return calls.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema ensured", "table", TableName)

	return nil
}

// Store inserts a call record in its own transaction. The transaction is
// rolled back on any failure so no partial record is left behind.
func (s *SQLiteStorage) Store(ctx context.Context, record *calls.CallRecord) (err error) {
	if record.CallTime.IsZero() {
		record.CallTime = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return calls.NewStorageError("sqlite", "begin", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.logger.Warn("rollback failed", "uuid", record.UUID, "error", rbErr)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, insertCall,
		record.UUID, record.Messages, record.Model, record.ResponseFormat, record.Temperature,
		record.Reply, record.PromptTokens, record.CompletionTokens, record.TotalTokens,
		record.CallDuration, record.ErrorFlag, calls.FormatCallTime(record.CallTime), record.RequestIP,
	)
	if err != nil {
		if isConstraintViolation(err) {
			err = fmt.Errorf("%w: %s: %v", calls.ErrDuplicate, record.UUID, err)
		}
		return calls.NewStorageError("sqlite", "store", err)
	}

	if err = tx.Commit(); err != nil {
		return calls.NewStorageError("sqlite", "commit", err)
	}

	return nil
}

// Get returns the record with the given uuid.
func (s *SQLiteStorage) Get(ctx context.Context, uuid string) (*calls.CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE uuid = ?", uuid)
	if err != nil {
		return nil, calls.NewStorageError("sqlite", "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, calls.NewStorageError("sqlite", "get", err)
		}
		return nil, calls.ErrNotFound
	}

	record, err := scanRow(rows)
	if err != nil {
		return nil, calls.NewStorageError("sqlite", "scan", err)
	}
	return record, nil
}

// List retrieves records matching the query filters, newest first.
func (s *SQLiteStorage) List(ctx context.Context, query *calls.Query) ([]*calls.CallRecord, error) {
	if query == nil {
		query = &calls.Query{}
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := selectColumns
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY call_time DESC, uuid ASC"

	limit := calls.DefaultListLimit
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, calls.NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	records := []*calls.CallRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, calls.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, calls.NewStorageError("sqlite", "list", err)
	}

	return records, nil
}

// Count returns the number of records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *calls.Query) (int64, error) {
	if query == nil {
		query = &calls.Query{}
	}

	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM api_calls"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, calls.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Ping verifies the database is reachable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return calls.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Checkpoint folds the write-ahead log back into the main database file.
// It is a no-op when WAL mode is disabled.
func (s *SQLiteStorage) Checkpoint(ctx context.Context) error {
	if !s.config.WALMode {
		return nil
	}

	var busy, logFrames, checkpointed int
	err := s.db.QueryRowContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);").Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return calls.NewStorageError("sqlite", "checkpoint", err)
	}

	s.logger.Debug("WAL checkpoint completed",
		"busy", busy,
		"log_frames", logFrames,
		"checkpointed_frames", checkpointed,
	)
	return nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return calls.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *calls.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, query.Model)
	}
	// call_time is stored in a fixed-width layout, so text comparison
	// orders the same as time comparison.
	if query.Since != nil {
		conditions = append(conditions, "call_time >= ?")
		args = append(args, calls.FormatCallTime(*query.Since))
	}
	if query.Until != nil {
		conditions = append(conditions, "call_time < ?")
		args = append(args, calls.FormatCallTime(*query.Until))
	}
	if query.ErrorFlag != nil {
		conditions = append(conditions, "error_flag = ?")
		args = append(args, *query.ErrorFlag)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into a CallRecord. Nullable columns
// become zero values.
func scanRow(rows *sql.Rows) (*calls.CallRecord, error) {
	var record calls.CallRecord
	var reply sql.NullString
	var promptTokens, completionTokens, totalTokens sql.NullInt64
	var callTime interface{}

	err := rows.Scan(
		&record.UUID, &record.Messages, &record.Model, &record.ResponseFormat, &record.Temperature,
		&reply, &promptTokens, &completionTokens, &totalTokens,
		&record.CallDuration, &record.ErrorFlag, &callTime, &record.RequestIP,
	)
	if err != nil {
		return nil, err
	}

	record.Reply = reply.String
	record.PromptTokens = int(promptTokens.Int64)
	record.CompletionTokens = int(completionTokens.Int64)
	record.TotalTokens = int(totalTokens.Int64)

	record.CallTime, err = parseCallTime(callTime)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// parseCallTime accepts call_time as either driver may return it. Both
// drivers convert DATETIME columns to time.Time when the text parses;
// otherwise the raw text comes back.
func parseCallTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseCallTimeText(t)
	case []byte:
		return parseCallTimeText(string(t))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected call_time type %T", v)
	}
}

func parseCallTimeText(s string) (time.Time, error) {
	for _, layout := range []string{calls.CallTimeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized call_time %q", s)
}

// isConstraintViolation reports whether err is a primary key or unique
// constraint failure from either driver.
func isConstraintViolation(err error) bool {
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			mattnErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var moderncErr *sqlite.Error
	if errors.As(err, &moderncErr) {
		code := moderncErr.Code()
		return code == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
