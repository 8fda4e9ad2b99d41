package calls

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeMessages serializes messages for the messages column. Non-ASCII
// text and HTML-significant characters are written literally.
func EncodeMessages(messages []Message) (string, error) {
	if messages == nil {
		messages = []Message{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(messages); err != nil {
		return "", fmt.Errorf("failed to encode messages: %w", err)
	}

	// Encode terminates every value with a newline.
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// DecodeMessages parses a value produced by EncodeMessages. Values written
// by other JSON encoders, with or without escaped non-ASCII, decode too.
func DecodeMessages(encoded string) ([]Message, error) {
	var messages []Message
	if err := json.Unmarshal([]byte(encoded), &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
