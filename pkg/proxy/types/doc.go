// Package types defines the request and response bodies of the chat API.
//
// Request types:
//   - ChatRequest: body of POST /v1/chat
//   - Message: one message of the conversation history
//
// Response types:
//   - ChatResponse, MessageResponse: non-streaming reply
//   - ContentEvent, UsageEvent, ErrorEvent: streamed events, each written as
//     a "data: <json>" line followed by a blank line
//   - HealthResponse, RootResponse: informational endpoints
//
// Error types:
//   - ErrorResponse: {"detail": "..."} returned with 422 and 500 statuses
package types
