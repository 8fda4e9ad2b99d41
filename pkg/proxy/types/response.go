package types

// CallResponse is the 200 body of POST /api/call.
type CallResponse struct {
	Reply            string  `json:"reply"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CallDuration     float64 `json:"call_duration"` // Seconds spent in the provider call
	ErrorFlag        int     `json:"error_flag"`
}
