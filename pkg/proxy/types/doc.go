// Package types defines the JSON bodies of the /api/call endpoint.
//
// Request types:
//   - CallRequest: body accepted by POST /api/call
//   - Message: one role/content pair of the conversation
//
// Response types:
//   - CallResponse: trimmed provider result plus derived call metadata
//   - ErrorResponse: {"error": ...} for client errors, with "details"
//     added for provider and storage failures
//
// Optional request fields are pointers so that an explicitly empty value
// can be told apart from an absent one during validation.
package types
