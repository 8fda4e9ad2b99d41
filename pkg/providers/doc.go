// Package providers defines the provider-agnostic chat completion types and
// the shared HTTP client used by provider adapters.
//
// # Overview
//
// A Provider forwards one CompletionRequest to an upstream chat-completion
// API and returns a normalized CompletionResponse. The caller's API key
// travels on the request itself; no credential is held by the provider.
//
// HTTPProvider implements connection pooling, timeouts and error
// classification. Adapters such as the openai package embed it.
//
// # Error Handling
//
// Failures are reported as typed errors:
//
//   - AuthError: the provider rejected the key (401, 403)
//   - RateLimitError: the provider throttled the call (429)
//   - TimeoutError: the call exceeded its deadline
//   - ParseError: the response body could not be decoded
//   - ValidationError: the request was rejected before any I/O
//   - ProviderError: any other upstream or network failure
//
// ErrorType maps an error to a short label for logs and metrics:
//
//	resp, err := provider.SendCompletion(ctx, req)
//	if err != nil {
//	    logger.Error("provider call failed", "error_type", providers.ErrorType(err))
//	}
//
// No request is retried. A call that fails is reported once.
package providers
