package proxy

import (
	"net/http"
	"time"

	"github.com/personal-assistant/interpreter/pkg/proxy/types"
)

// RequestMetadata contains metadata extracted from a chat request for
// logging.
type RequestMetadata struct {
	// RequestID is a unique identifier for the request.
	RequestID string

	// MessageCount is the number of messages in the history.
	MessageCount int

	// Stream indicates whether streaming is requested.
	Stream bool

	// Method is the HTTP method.
	Method string

	// Path is the HTTP request path.
	Path string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the client's address.
	RemoteAddr string

	// Timestamp is when the request was received.
	Timestamp time.Time
}

// ExtractRequestMetadata collects metadata from the HTTP request and its
// parsed body.
func ExtractRequestMetadata(r *http.Request, requestID string, req *types.ChatRequest) *RequestMetadata {
	md := &RequestMetadata{
		RequestID:  requestID,
		Method:     r.Method,
		Path:       r.URL.Path,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Timestamp:  time.Now(),
	}
	if req != nil {
		md.MessageCount = len(req.Messages)
		md.Stream = req.Stream
	}
	return md
}

// Mode returns "stream" or "complete".
func (m *RequestMetadata) Mode() string {
	if m.Stream {
		return "stream"
	}
	return "complete"
}

// LogAttrs returns the metadata as slog key-value pairs.
func (m *RequestMetadata) LogAttrs() []any {
	return []any{
		"request_id", m.RequestID,
		"messages", m.MessageCount,
		"mode", m.Mode(),
		"remote_addr", m.RemoteAddr,
		"user_agent", m.UserAgent,
	}
}
