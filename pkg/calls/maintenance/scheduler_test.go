package maintenance

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mercator-hq/chatrelay/pkg/calls"
	"mercator-hq/chatrelay/pkg/calls/storage"
)

type fakeGauge struct {
	mu    sync.Mutex
	value int64
	calls int
}

func (g *fakeGauge) SetStoredRecords(count int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = count
	g.calls++
}

type checkpointStore struct {
	*storage.MemoryStorage
	checkpoints int
	err         error
}

func (s *checkpointStore) Checkpoint(ctx context.Context) error {
	s.checkpoints++
	return s.err
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{"valid hourly schedule", "0 * * * *", true, false},
		{"valid daily schedule", "0 3 * * *", true, false},
		{"empty schedule - no error, not running", "", false, false},
		{"invalid schedule", "invalid cron", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewScheduler(storage.NewMemoryStorage(), tt.schedule, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)
			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				next := scheduler.NextRun()
				if next == nil {
					t.Error("NextRun() returned nil for running scheduler")
				} else if !next.After(time.Now()) {
					t.Errorf("NextRun() = %v, expected a future time", next)
				}
				scheduler.Stop()
				if scheduler.IsRunning() {
					t.Error("scheduler still running after Stop()")
				}
			}
		})
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	scheduler := NewScheduler(storage.NewMemoryStorage(), "0 * * * *", nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for scheduler.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if scheduler.IsRunning() {
		t.Error("scheduler did not stop after context cancellation")
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	store := &checkpointStore{MemoryStorage: storage.NewMemoryStorage()}
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Store(ctx, &calls.CallRecord{UUID: id, Messages: "[]"}); err != nil {
			t.Fatal(err)
		}
	}

	gauge := &fakeGauge{}
	NewScheduler(store, "", gauge).RunOnce(ctx)

	if store.checkpoints != 1 {
		t.Errorf("expected 1 checkpoint, got %d", store.checkpoints)
	}
	if gauge.value != 3 {
		t.Errorf("gauge = %d, want 3", gauge.value)
	}

	count, _ := store.Count(ctx, nil)
	if count != 3 {
		t.Errorf("maintenance changed the record count to %d", count)
	}
}

func TestScheduler_RunOnceCheckpointFailure(t *testing.T) {
	store := &checkpointStore{MemoryStorage: storage.NewMemoryStorage(), err: errors.New("locked")}
	gauge := &fakeGauge{}

	NewScheduler(store, "", gauge).RunOnce(context.Background())

	if gauge.calls != 1 {
		t.Error("record count should be published even when the checkpoint fails")
	}
}

func TestScheduler_RunOnceSQLite(t *testing.T) {
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Driver:      storage.DriverModernc,
		Path:        filepath.Join(t.TempDir(), "maint.db"),
		WALMode:     true,
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	defer store.Close()

	if err := store.Store(context.Background(), &calls.CallRecord{UUID: "x", Messages: "[]", RequestIP: "unknown"}); err != nil {
		t.Fatal(err)
	}

	gauge := &fakeGauge{}
	NewScheduler(store, "", gauge).RunOnce(context.Background())
	if gauge.value != 1 {
		t.Errorf("gauge = %d, want 1", gauge.value)
	}
}
