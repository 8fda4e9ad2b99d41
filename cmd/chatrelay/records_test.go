package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mercator-hq/chatrelay/pkg/calls"
	"mercator-hq/chatrelay/pkg/calls/storage"
)

// seedStore writes three records to the SQLite database at dbPath.
func seedStore(t *testing.T, dbPath string) {
	t.Helper()

	cfg := storage.DefaultSQLiteConfig()
	cfg.Driver = storage.DriverModernc
	cfg.Path = dbPath
	store, err := storage.NewSQLiteStorage(cfg)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []*calls.CallRecord{
		{UUID: "call-1", Model: "gpt-4o", Reply: "hello", PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30, CallTime: base},
		{UUID: "call-2", Model: "gpt-4o", Reply: "a\n\n\n\nb", PromptTokens: 5, CompletionTokens: 7, TotalTokens: 12, ErrorFlag: 1, CallTime: base.Add(time.Hour)},
		{UUID: "call-3", Model: "gpt-4o-mini", Reply: "hi", PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7, CallTime: base.Add(2 * time.Hour)},
	}
	for _, r := range records {
		r.Messages = `[{"role":"user","content":"hi"}]`
		r.ResponseFormat = "text"
		r.Temperature = 1
		r.RequestIP = "127.0.0.1"
		r.CallDuration = 0.25
		if err := store.Store(context.Background(), r); err != nil {
			t.Fatalf("failed to store %s: %v", r.UUID, err)
		}
	}
}

func TestRecordsList(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedStore(t, dbPath)

	out, err := executeCommand(t, "records", "list", "--config", cfgPath, "--format", "json")
	if err != nil {
		t.Fatalf("records list failed: %v", err)
	}

	var records []calls.CallRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0].UUID != "call-3" {
		t.Errorf("first record = %s, want newest call-3", records[0].UUID)
	}
}

func TestRecordsListFilters(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedStore(t, dbPath)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"model", []string{"--model", "gpt-4o"}, []string{"call-2", "call-1"}},
		{"error flag", []string{"--error-flag", "1"}, []string{"call-2"}},
		{"since", []string{"--since", "2026-03-01T13:00:00Z"}, []string{"call-3", "call-2"}},
		{"until", []string{"--until", "2026-03-01T13:00:00Z"}, []string{"call-1"}},
		{"limit", []string{"--limit", "1"}, []string{"call-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"records", "list", "--config", cfgPath, "--format", "json"}, tt.args...)
			out, err := executeCommand(t, args...)
			if err != nil {
				t.Fatalf("records list failed: %v", err)
			}

			var records []calls.CallRecord
			if err := json.Unmarshal([]byte(out), &records); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out)
			}
			var got []string
			for _, r := range records {
				got = append(got, r.UUID)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordsListText(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedStore(t, dbPath)

	out, err := executeCommand(t, "records", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("records list failed: %v", err)
	}
	if !strings.HasPrefix(out, "UUID") {
		t.Errorf("text output should start with the header:\n%s", out)
	}
	if !strings.Contains(out, "call-2") {
		t.Errorf("text output missing call-2:\n%s", out)
	}
}

func TestRecordsInvalidFilter(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	tests := [][]string{
		{"--error-flag", "2"},
		{"--since", "yesterday"},
		{"--since", "2026-03-02T00:00:00Z", "--until", "2026-03-01T00:00:00Z"},
	}
	for _, extra := range tests {
		args := append([]string{"records", "count", "--config", cfgPath}, extra...)
		if _, err := executeCommand(t, args...); err == nil {
			t.Errorf("args %v: expected error", extra)
		}
	}
}

func TestRecordsGet(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedStore(t, dbPath)

	out, err := executeCommand(t, "records", "get", "call-2", "--config", cfgPath)
	if err != nil {
		t.Fatalf("records get failed: %v", err)
	}
	for _, want := range []string{"call-2", `"a\n\n\n\nb"`, "error_flag"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := executeCommand(t, "records", "get", "missing", "--config", cfgPath); err == nil {
		t.Error("expected error for unknown uuid")
	}
}

func TestRecordsCount(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedStore(t, dbPath)

	out, err := executeCommand(t, "records", "count", "--config", cfgPath, "--error-flag", "0")
	if err != nil {
		t.Fatalf("records count failed: %v", err)
	}
	if strings.TrimSpace(out) != "2" {
		t.Errorf("count = %q, want 2", out)
	}
}

func TestRecordsExportCSV(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedStore(t, dbPath)
	outPath := filepath.Join(t.TempDir(), "calls.csv")

	if _, err := executeCommand(t, "records", "export", "--config", cfgPath, "--format", "csv", "--output", outPath); err != nil {
		t.Fatalf("records export failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header plus 3 records", len(rows))
	}
	if rows[0][0] != "uuid" {
		t.Errorf("header = %v", rows[0])
	}
}

func TestRecordsExportJSONLimit(t *testing.T) {
	cfgPath, dbPath := writeConfig(t, "")
	seedStore(t, dbPath)
	outPath := filepath.Join(t.TempDir(), "calls.json")

	if _, err := executeCommand(t, "records", "export", "--config", cfgPath, "--limit", "2", "--output", outPath); err != nil {
		t.Fatalf("records export failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("exported %d records, want 2", len(records))
	}
	if _, ok := records[0]["messages"].([]any); !ok {
		t.Errorf("messages exported as %T, want a JSON array", records[0]["messages"])
	}
}

func TestRecordsExportUnknownFormat(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	if _, err := executeCommand(t, "records", "export", "--config", cfgPath, "--format", "xml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
