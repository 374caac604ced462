// Package proxy holds the request and response plumbing shared by the chat
// API handlers.
//
// Request side:
//   - ParseChatRequest reads a size-limited body and validates it
//   - RequestError marks client mistakes, reported as 422
//   - ExtractRequestMetadata collects fields for request logs
//
// Response side:
//   - WriteJSONResponse and WriteErrorResponse write JSON bodies
//   - SetStreamHeaders and the WriteSSE* helpers write streamed replies
//   - HandleError maps any error to a status code and {"detail": ...}
//
// # Error Mapping
//
//	*RequestError           422 {"detail": "<message>"}
//	anything else           500 {"detail": "Chat processing error: <err>"}
//
// # Stream Framing
//
// Every streamed event is a single "data: " line holding a JSON object,
// followed by a blank line, and is flushed as soon as it is written. The
// stream ends with {"content": "[DONE]"}, or with {"error": "..."} when it
// fails after the headers were sent.
//
// The handlers live in the handlers subpackage, middleware in middleware and
// the wire types in types.
package proxy
