package types

// ChatResponse is the body of a non-streaming POST /v1/chat response.
type ChatResponse struct {
	Message MessageResponse `json:"message"`
}

// MessageResponse carries the assistant reply.
type MessageResponse struct {
	// Content is the assistant reply.
	Content string `json:"content"`

	// TokensUsed is the total reported by the model server, or -1 when it
	// reported none.
	TokensUsed int `json:"tokens_used"`
}

// ContentEvent is a streamed content delta. The final event carries
// DoneMarker.
type ContentEvent struct {
	Content string `json:"content"`
}

// UsageEvent reports the token total at the end of a stream.
type UsageEvent struct {
	TokensUsed int `json:"tokens_used"`
}

// ErrorEvent ends a stream that failed after headers were sent.
type ErrorEvent struct {
	Error string `json:"error"`
}

// DoneMarker is the content of the last event of every stream.
const DoneMarker = "[DONE]"

// HealthResponse is the body of GET /v1/health.
type HealthResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	Error  string `json:"error,omitempty"`
}

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Endpoint describes a route listed by GET /.
type Endpoint struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`
	Name    string   `json:"name"`
}

// RootResponse is the body of GET /.
type RootResponse struct {
	Message            string     `json:"message"`
	Version            string     `json:"version"`
	AvailableEndpoints []Endpoint `json:"available_endpoints"`
}
