// Package proxy holds the request and response plumbing of the call relay.
//
// ParseCallRequest decodes and validates a POST /api/call body, applying
// defaults for the optional fields. HandleError maps failures to the two
// response shapes of the endpoint:
//
//	400 {"error": "missing required parameters"}
//	500 {"error": "failed to call provider API", "details": "..."}
//
// The handler itself lives in the handlers subpackage and the HTTP
// middleware in the middleware subpackage.
package proxy
