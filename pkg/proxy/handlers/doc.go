// Package handlers implements the POST /api/call handler.
//
// A CallHandler validates the body, forwards one chat completion to the
// provider with the caller's API key, flags replies containing a run of
// four or more line breaks, stores one call record and answers with
//
//	{"reply": "...", "prompt_tokens": 3, "completion_tokens": 2,
//	 "call_duration": 0.84, "error_flag": 0}
//
// Collaborators are injected through CallHandlerConfig:
//
//	h, err := handlers.NewCallHandler(handlers.CallHandlerConfig{
//	    Provider: provider,
//	    Store:    store,
//	    Logger:   logger,
//	    Metrics:  collector,
//	    Tracer:   tracer,
//	})
//	mux.Handle("POST /api/call", h)
//
// Failures never produce a record: a provider error answers 500 "failed
// to call provider API" and a storage error, including a duplicate uuid,
// answers 500 "database error".
package handlers
