// Package openai implements the OpenAI provider adapter.
//
// This package provides an implementation of the providers.Provider interface
// for OpenAI's chat completions API. Any OpenAI-compatible server works when
// BaseURL points at it.
//
// # Basic Usage
//
//	config := providers.ProviderConfig{
//	    Name:    "openai",
//	    Type:    "openai",
//	    BaseURL: "https://api.openai.com/v1",
//	    Timeout: 10 * time.Minute,
//	}
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	req := &providers.CompletionRequest{
//	    Model:  "gpt-4o",
//	    APIKey: callerKey,
//	    Messages: []providers.Message{
//	        {Role: "user", Content: "Hello!"},
//	    },
//	    Temperature:    0.7,
//	    ResponseFormat: providers.ResponseFormatJSON,
//	}
//
//	resp, err := provider.SendCompletion(ctx, req)
//
// # Request Mapping
//
// The key is sent as "Authorization: Bearer <key>". Temperature is always
// present in the body. ResponseFormatJSON adds {"type": "json_object"} as the
// response_format; ResponseFormatText adds nothing. Any other format is
// rejected with a providers.ValidationError before a request is made.
//
// Error bodies of the form {"error": {"message": ...}} are unwrapped into the
// typed provider errors.
package openai
