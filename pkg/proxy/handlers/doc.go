// Package handlers provides the HTTP handlers of the chat API.
//
//   - ChatHandler: POST /v1/chat, a JSON reply or a text/plain event stream
//   - HealthHandler: GET /v1/health, backed by the scheduled upstream probe
//   - ModelInfoHandler: GET /v1/model-info
//   - RootHandler: GET /, the list of endpoints
//
// Handlers depend on the ChatAgent interface rather than on *agent.Agent so
// the server can be exercised against any implementation.
//
// # Streaming
//
// A streamed reply is written as a sequence of events, each a "data: " line
// holding one JSON object followed by a blank line:
//
//	data: {"content":"Hel"}
//
//	data: {"content":"lo"}
//
//	data: {"tokens_used":42}
//
//	data: {"content":"[DONE]"}
//
// The usage event is omitted when the model server reported no usage. Once
// headers are sent a failure can no longer change the status code, so it is
// reported as a final {"error": "..."} event.
package handlers
