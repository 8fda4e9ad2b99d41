package calls

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestStorageError(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := NewStorageError("sqlite", "store", cause)

	want := "storage error [backend=sqlite, operation=store]: disk I/O error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("StorageError should unwrap to its cause")
	}
	if IsDuplicate(err) {
		t.Error("plain storage error reported as duplicate")
	}
}

func TestIsDuplicate(t *testing.T) {
	err := NewStorageError("memory", "store", fmt.Errorf("%w: abc-1", ErrDuplicate))
	if !IsDuplicate(err) {
		t.Error("expected duplicate")
	}

	wrapped := fmt.Errorf("persist call: %w", err)
	if !IsDuplicate(wrapped) {
		t.Error("expected duplicate through wrapping")
	}

	var serr *StorageError
	if !errors.As(wrapped, &serr) || serr.Operation != "store" {
		t.Errorf("errors.As failed: %v", serr)
	}
}

func TestFormatCallTime(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	ts := time.Date(2024, 3, 1, 8, 30, 0, 123456000, loc)

	if got := FormatCallTime(ts); got != "2024-03-01 00:30:00.123456" {
		t.Errorf("FormatCallTime() = %q", got)
	}
}
