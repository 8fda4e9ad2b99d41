package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestRedactor_RedactString(t *testing.T) {
	r := NewRedactor()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "openai key", input: "key sk-abc123xyz789 used", want: "key sk-*** used"},
		{name: "project key", input: "sk-proj-AbC_123-xyz", want: "sk-***"},
		{name: "bearer token", input: "Authorization: Bearer abc.def-ghi", want: "Authorization: Bearer ***"},
		{name: "no credential", input: "hello world", want: "hello world"},
		{name: "short sk prefix", input: "task-sk-1", want: "task-sk-1"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RedactString(tt.input); got != tt.want {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	sensitive := []string{"api_key", "API_KEY", "apikey", "Authorization", "client_secret", "password", "access_token"}
	for _, key := range sensitive {
		if !isSensitiveKey(key) {
			t.Errorf("expected %q to be sensitive", key)
		}
	}

	plain := []string{"model", "prompt_tokens", "completion_tokens", "total_tokens", "uuid"}
	for _, key := range plain {
		if isSensitiveKey(key) {
			t.Errorf("expected %q not to be sensitive", key)
		}
	}
}

func TestRedactAPIKey(t *testing.T) {
	if got := RedactAPIKey("sk-abcdef"); got != "sk-a***" {
		t.Errorf("expected sk-a***, got %q", got)
	}
	if got := RedactAPIKey("abc"); got != "***" {
		t.Errorf("expected ***, got %q", got)
	}
	if got := RedactAPIKey(""); got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestLogger_RedactsCredentials(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", RedactCredentials: true, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().Info("provider call failed",
		"api_key", "sk-live-secret-value",
		"detail", "rejected key sk-live-secret-value",
		"error", errors.New("header Bearer sk-live-secret-value invalid"),
		"prompt_tokens", 7,
	)

	out := buf.String()
	if strings.Contains(out, "secret-value") {
		t.Fatalf("credential leaked into log output: %s", out)
	}
	if !strings.Contains(out, `"api_key":"sk-l***"`) {
		t.Errorf("expected masked api_key, got %s", out)
	}
	if !strings.Contains(out, `"prompt_tokens":7`) {
		t.Errorf("expected prompt_tokens to be left alone, got %s", out)
	}
}

func TestLogger_RedactionDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Slog().Info("debugging", "detail", "sk-visible-123456")
	if !strings.Contains(buf.String(), "sk-visible-123456") {
		t.Errorf("expected raw value without redaction, got %s", buf.String())
	}
}
