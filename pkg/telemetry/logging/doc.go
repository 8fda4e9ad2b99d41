// Package logging builds the process-wide structured logger.
//
// # Overview
//
// The logging package configures Go's standard log/slog package with:
//   - JSON or text output
//   - A runtime-adjustable level backed by slog.LevelVar
//   - Request and call identifiers taken from the context
//   - Credential redaction through a ReplaceAttr hook
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:             "info",
//	    Format:            "json",
//	    RedactCredentials: true,
//	})
//	if err != nil {
//	    return err
//	}
//	logger.SetDefault()
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	slog.InfoContext(ctx, "call recorded", "model", "gpt-4o") // includes request_id
//
// # Redaction
//
// Attributes whose key names a credential (api_key, authorization, secret,
// password, token) keep only a four-character prefix. Any other string
// attribute is scanned for embedded keys:
//
//   - sk-abc123xyz789 → sk-***
//   - Bearer abc.def → Bearer ***
package logging
