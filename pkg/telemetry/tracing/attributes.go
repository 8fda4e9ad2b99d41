package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys use the "chatrelay.*" namespace.
const (
	AttrCallID           = "chatrelay.call_id"
	AttrModel            = "chatrelay.model"
	AttrProvider         = "chatrelay.provider"
	AttrResponseFormat   = "chatrelay.response_format"
	AttrTokensPrompt     = "chatrelay.tokens.prompt"
	AttrTokensCompletion = "chatrelay.tokens.completion"
	AttrErrorFlag        = "chatrelay.error_flag"
	AttrErrorType        = "chatrelay.error_type"
	AttrStoreBackend     = "chatrelay.store.backend"
)

// CallAttributes returns the attributes shared by every span of one call.
func CallAttributes(callID, model string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCallID, callID),
		attribute.String(AttrModel, model),
	}
}

// SetTokenAttributes sets token count attributes on a span.
func SetTokenAttributes(span trace.Span, promptTokens, completionTokens int) {
	span.SetAttributes(
		attribute.Int(AttrTokensPrompt, promptTokens),
		attribute.Int(AttrTokensCompletion, completionTokens),
	)
}

// SetErrorType labels a failed span with the short error classification.
func SetErrorType(span trace.Span, errorType string) {
	span.SetAttributes(attribute.String(AttrErrorType, errorType))
}
