package calls

import "regexp"

// malformedReply matches a run of four or more line-break characters,
// which in practice indicates degenerate or truncated model output.
var malformedReply = regexp.MustCompile(`[\n\r]{4,}`)

// ErrorFlag returns 1 if reply contains four or more consecutive '\n' or
// '\r' characters and 0 otherwise.
func ErrorFlag(reply string) int {
	if malformedReply.MatchString(reply) {
		return 1
	}
	return 0
}
