package handlers

import (
	"context"
	"time"

	"mercator-hq/chatrelay/pkg/providers"
)

// ChatProvider sends one chat completion to the upstream provider.
// *openai.Provider satisfies it.
type ChatProvider interface {
	SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error)
	GetName() string
}

// MetricsRecorder receives per-call measurements. *metrics.Collector
// satisfies it.
type MetricsRecorder interface {
	RecordCall(model, status string, duration time.Duration, promptTokens, completionTokens, errorFlag int)
	RecordInvalidRequest()
	RecordProviderError(errorType string)
	RecordProviderLatency(model string, latency time.Duration)
	RecordStoreError(operation string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCall(string, string, time.Duration, int, int, int) {}
func (nopRecorder) RecordInvalidRequest()                                   {}
func (nopRecorder) RecordProviderError(string)                              {}
func (nopRecorder) RecordProviderLatency(string, time.Duration)             {}
func (nopRecorder) RecordStoreError(string)                                 {}
