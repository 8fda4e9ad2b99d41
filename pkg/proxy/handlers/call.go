package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/chatrelay/pkg/calls"
	"mercator-hq/chatrelay/pkg/providers"
	"mercator-hq/chatrelay/pkg/proxy"
	"mercator-hq/chatrelay/pkg/proxy/types"
	"mercator-hq/chatrelay/pkg/telemetry/logging"
	"mercator-hq/chatrelay/pkg/telemetry/metrics"
	"mercator-hq/chatrelay/pkg/telemetry/tracing"
)

// CallHandlerConfig holds the collaborators of a CallHandler. Provider and
// Store are required; the rest default to no-op or process-wide values.
type CallHandlerConfig struct {
	Provider     ChatProvider
	Store        calls.Storage
	Logger       *slog.Logger
	Metrics      MetricsRecorder
	Tracer       *tracing.Tracer
	MaxBodyBytes int64

	// Now returns the persistence timestamp. Defaults to time.Now.
	Now func() time.Time
}

// CallHandler serves POST /api/call.
type CallHandler struct {
	provider     ChatProvider
	store        calls.Storage
	logger       *slog.Logger
	metrics      MetricsRecorder
	tracer       *tracing.Tracer
	maxBodyBytes int64
	now          func() time.Time
}

// NewCallHandler creates a call handler.
func NewCallHandler(cfg CallHandlerConfig) (*CallHandler, error) {
	if cfg.Provider == nil {
		return nil, errors.New("call handler: provider is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("call handler: store is required")
	}

	h := &CallHandler{
		provider:     cfg.Provider,
		store:        cfg.Store,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		tracer:       cfg.Tracer,
		maxBodyBytes: cfg.MaxBodyBytes,
		now:          cfg.Now,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	h.logger = h.logger.With("component", "call_handler")
	if h.metrics == nil {
		h.metrics = nopRecorder{}
	}
	if h.tracer == nil {
		h.tracer = tracing.Noop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h, nil
}

// ServeHTTP implements http.Handler.
//
// The flow is linear: validate the body, make one provider call, derive the
// error flag, store one record, respond. A failed provider call or a failed
// insert ends the request with 500 and leaves no record.
func (h *CallHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.write(ctx, w, http.StatusMethodNotAllowed, types.NewClientError(types.MsgMethodNotAllowed))
		return
	}

	clientIP := proxy.ClientIP(r)

	req, err := proxy.ParseCallRequest(r, h.maxBodyBytes)
	if req != nil {
		ctx = logging.WithCallID(ctx, req.UUID)
		h.logger.InfoContext(ctx, "call started",
			"ip", clientIP,
			"model", req.Model,
			"response_format", req.GetResponseFormat(),
			"temperature", req.GetTemperature(),
		)
	}
	if err != nil {
		h.metrics.RecordInvalidRequest()
		h.logger.ErrorContext(ctx, "invalid call request", "ip", clientIP, "error", err)
		h.writeError(ctx, w, err)
		return
	}

	model := req.Model
	responseFormat := req.GetResponseFormat()
	temperature := req.GetTemperature()

	resp, duration, err := h.complete(ctx, req)
	if err != nil {
		errorType := providers.ErrorType(err)
		h.metrics.RecordProviderError(errorType)
		h.metrics.RecordCall(model, metrics.StatusProviderError, duration, 0, 0, 0)
		h.logger.ErrorContext(ctx, "provider call failed",
			"provider", h.provider.GetName(),
			"model", model,
			"error_type", errorType,
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		h.writeError(ctx, w, &proxy.CallError{Stage: proxy.StageProvider, CallID: req.UUID, Cause: err})
		return
	}
	h.metrics.RecordProviderLatency(model, duration)

	errorFlag := calls.ErrorFlag(resp.Content)

	record, err := h.buildRecord(req, resp, duration, errorFlag, clientIP)
	if err == nil {
		err = h.storeRecord(ctx, record)
	}
	if err != nil {
		h.metrics.RecordStoreError("store")
		h.metrics.RecordCall(model, metrics.StatusStorageError, duration, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, errorFlag)
		h.logger.ErrorContext(ctx, "failed to store call record",
			"duplicate", calls.IsDuplicate(err),
			"error", err,
		)
		h.writeError(ctx, w, &proxy.CallError{Stage: proxy.StageStorage, CallID: req.UUID, Cause: err})
		return
	}

	h.metrics.RecordCall(model, metrics.StatusSuccess, duration, resp.Usage.PromptTokens, resp.Usage.CompletionTokens, errorFlag)
	h.logger.InfoContext(ctx, "call recorded",
		"ip", clientIP,
		"model", model,
		"response_format", responseFormat,
		"temperature", temperature,
		"call_duration", record.CallDuration,
		"error_flag", errorFlag,
		"prompt_tokens", record.PromptTokens,
		"completion_tokens", record.CompletionTokens,
		"total_tokens", record.TotalTokens,
	)

	h.write(ctx, w, http.StatusOK, proxy.FormatCallResponse(resp, duration, errorFlag))
}

// complete performs the single provider call and measures its wall-clock
// duration.
func (h *CallHandler) complete(ctx context.Context, req *types.CallRequest) (*providers.CompletionResponse, time.Duration, error) {
	ctx, span := h.tracer.Start(ctx, tracing.SpanProviderCompletion,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(tracing.CallAttributes(req.UUID, req.Model)...),
		trace.WithAttributes(
			attribute.String(tracing.AttrProvider, h.provider.GetName()),
			attribute.String(tracing.AttrResponseFormat, req.GetResponseFormat()),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := h.provider.SendCompletion(ctx, toProviderRequest(req))
	duration := time.Since(start)

	if err != nil {
		tracing.SetErrorType(span, providers.ErrorType(err))
		tracing.SetStatus(span, err)
		return nil, duration, err
	}

	tracing.SetTokenAttributes(span, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	tracing.SetStatus(span, nil)
	return resp, duration, nil
}

func (h *CallHandler) buildRecord(req *types.CallRequest, resp *providers.CompletionResponse, duration time.Duration, errorFlag int, clientIP string) (*calls.CallRecord, error) {
	messages := make([]calls.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = calls.Message{Role: m.Role, Content: m.Content}
	}
	encoded, err := calls.EncodeMessages(messages)
	if err != nil {
		return nil, err
	}

	return &calls.CallRecord{
		UUID:             req.UUID,
		Messages:         encoded,
		Model:            req.Model,
		ResponseFormat:   req.GetResponseFormat(),
		Temperature:      req.GetTemperature(),
		Reply:            resp.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.Total(),
		CallDuration:     duration.Seconds(),
		ErrorFlag:        errorFlag,
		CallTime:         h.now().UTC(),
		RequestIP:        clientIP,
	}, nil
}

// storeRecord inserts the record. The insert ignores request cancellation.
func (h *CallHandler) storeRecord(ctx context.Context, record *calls.CallRecord) error {
	ctx, span := h.tracer.Start(context.WithoutCancel(ctx), tracing.SpanStoreCall,
		trace.WithAttributes(tracing.CallAttributes(record.UUID, record.Model)...),
		trace.WithAttributes(attribute.Int(tracing.AttrErrorFlag, record.ErrorFlag)),
	)
	defer span.End()

	err := h.store.Store(ctx, record)
	tracing.SetStatus(span, err)
	return err
}

func (h *CallHandler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := proxy.HandleError(err)
	h.write(ctx, w, status, body)
}

func (h *CallHandler) write(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	if err := proxy.WriteJSONResponse(w, status, body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write response", "status", status, "error", err)
	}
}

// toProviderRequest converts a validated call request to the provider form.
func toProviderRequest(req *types.CallRequest) *providers.CompletionRequest {
	messages := make([]providers.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = providers.Message{Role: m.Role, Content: m.Content}
	}

	return &providers.CompletionRequest{
		Model:          req.Model,
		Messages:       messages,
		Temperature:    req.GetTemperature(),
		ResponseFormat: req.GetResponseFormat(),
		APIKey:         req.APIKey,
		Metadata: map[string]string{
			"call_id": req.UUID,
		},
	}
}
