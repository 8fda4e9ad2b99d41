// Chatrelay relays chat-completion calls to an OpenAI-compatible provider
// and records every successful call in a SQLite database.
//
// Each call carries the caller's own provider API key; chatrelay holds no
// provider credential of its own.
//
// Usage:
//
//	# Start the server with default configuration
//	chatrelay run
//
//	# Start with a custom configuration file
//	chatrelay run --config /etc/chatrelay/config.yaml
//
//	# Validate configuration
//	chatrelay validate
//
//	# Inspect recorded calls
//	chatrelay records list --model gpt-4o --since 2026-01-01T00:00:00Z
//
//	# Show version information
//	chatrelay version
package main

func main() {
	Execute()
}
