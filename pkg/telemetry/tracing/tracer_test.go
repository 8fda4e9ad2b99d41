package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/chatrelay/pkg/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := NewWithProvider(provider)
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
	return tracer, recorder
}

func TestNew_Disabled(t *testing.T) {
	tracer, err := New(context.Background(), &config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tracer.Enabled() {
		t.Error("expected disabled tracer")
	}

	ctx, span := tracer.Start(context.Background(), "noop")
	span.End()
	if span.SpanContext().IsValid() {
		t.Error("expected noop span to have an invalid span context")
	}
	if TraceID(ctx) != "" {
		t.Error("expected empty trace ID from noop span")
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_Exporters(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.TracingConfig
		wantErr bool
	}{
		{
			name: "otlp",
			cfg:  config.TracingConfig{Enabled: true, Exporter: "otlp", Endpoint: "127.0.0.1:4317", SampleRatio: 1, ServiceName: "chatrelay"},
		},
		{
			name: "zipkin",
			cfg:  config.TracingConfig{Enabled: true, Exporter: "zipkin", Endpoint: "http://127.0.0.1:9411/api/v2/spans", SampleRatio: 1, ServiceName: "chatrelay"},
		},
		{
			name:    "unknown",
			cfg:     config.TracingConfig{Enabled: true, Exporter: "jaeger", Endpoint: "127.0.0.1:6831"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(context.Background(), &tt.cfg, "test")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !tracer.Enabled() {
				t.Error("expected enabled tracer")
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = tracer.Shutdown(ctx)
		})
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, "test"); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestTracer_RecordsSpans(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	ctx, parent := tracer.Start(context.Background(), SpanHTTPCall)
	_, child := tracer.Start(ctx, SpanProviderCompletion,
		trace.WithAttributes(CallAttributes("abc-1", "gpt-4o")...))
	SetTokenAttributes(child, 12, 40)
	SetStatus(child, nil)
	child.End()
	parent.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	got := spans[0]
	if got.Name() != SpanProviderCompletion {
		t.Errorf("expected span %q, got %q", SpanProviderCompletion, got.Name())
	}
	if got.Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("expected provider span to be a child of the request span")
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs[AttrCallID].AsString() != "abc-1" {
		t.Errorf("expected call id abc-1, got %v", attrs[AttrCallID])
	}
	if attrs[AttrModel].AsString() != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %v", attrs[AttrModel])
	}
	if attrs[AttrTokensCompletion].AsInt64() != 40 {
		t.Errorf("expected 40 completion tokens, got %v", attrs[AttrTokensCompletion])
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("expected OK status, got %v", got.Status().Code)
	}
}

func TestSetStatus_Error(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	_, span := tracer.Start(context.Background(), SpanStoreCall)
	SetStatus(span, errors.New("disk full"))
	SetErrorType(span, "storage")
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status().Code)
	}
	if spans[0].Status().Description != "disk full" {
		t.Errorf("expected description 'disk full', got %q", spans[0].Status().Description)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestHTTPMiddleware_ExtractsTraceParent(t *testing.T) {
	tracer, recorder := newRecordingTracer(t)

	const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), SpanHTTPCall)
		span.End()
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/call", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-00f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].SpanContext().TraceID().String(); got != traceID {
		t.Errorf("expected trace ID %s, got %s", traceID, got)
	}
}

func TestInject(t *testing.T) {
	tracer, _ := newRecordingTracer(t)

	ctx, span := tracer.Start(context.Background(), "outbound")
	defer span.End()

	headers := http.Header{}
	Inject(ctx, headers)
	if headers.Get("traceparent") == "" {
		t.Error("expected traceparent header to be injected")
	}
	if TraceID(ctx) == "" {
		t.Error("expected trace ID from recording span")
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: "ParentBased{root:AlwaysOnSampler"},
		{ratio: 0, want: "ParentBased{root:AlwaysOffSampler"},
		{ratio: 0.5, want: "ParentBased{root:TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		desc := newSampler(tt.ratio).Description()
		if len(desc) < len(tt.want) || desc[:len(tt.want)] != tt.want {
			t.Errorf("newSampler(%v).Description() = %q, want prefix %q", tt.ratio, desc, tt.want)
		}
	}
}
