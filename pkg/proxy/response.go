package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/personal-assistant/interpreter/pkg/proxy/types"
)

// StreamContentType is the content type of streamed chat responses.
const StreamContentType = "text/plain; charset=utf-8"

// WriteJSONResponse writes a JSON response to the HTTP response writer.
// It sets the appropriate content-type header and handles marshaling errors.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an error body with the given status.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, statusCode, errResp)
}

// SetStreamHeaders sets the headers of a streamed chat response.
func SetStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", StreamContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
}

// WriteSSEEvent writes one event in Server-Sent Events framing:
//
//	data: {"content":"Hel"}
//
// followed by a blank line, and flushes it to the client.
func WriteSSEEvent(w http.ResponseWriter, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	return nil
}

// WriteSSEContent writes a content delta.
func WriteSSEContent(w http.ResponseWriter, content string) error {
	return WriteSSEEvent(w, types.ContentEvent{Content: content})
}

// WriteSSEUsage writes the token total. Nothing is written unless
// tokensUsed is positive.
func WriteSSEUsage(w http.ResponseWriter, tokensUsed int) error {
	if tokensUsed <= 0 {
		return nil
	}
	return WriteSSEEvent(w, types.UsageEvent{TokensUsed: tokensUsed})
}

// WriteSSEDone writes the final {"content":"[DONE]"} event.
func WriteSSEDone(w http.ResponseWriter) error {
	return WriteSSEEvent(w, types.ContentEvent{Content: types.DoneMarker})
}

// WriteSSEError writes an error event mid-stream.
func WriteSSEError(w http.ResponseWriter, event *types.ErrorEvent) error {
	return WriteSSEEvent(w, event)
}
