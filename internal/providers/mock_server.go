package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// Upstream API paths served by the mock, relative to the server root.
const (
	ModelsPath      = "/v1/models"
	CompletionsPath = "/v1/chat/completions"
)

// MockServer is a mock OpenAI-compatible model server for testing the
// upstream client, the agent and the HTTP API end to end.
type MockServer struct {
	server    *httptest.Server
	responses map[string]MockResponse
	requests  []RecordedRequest
	mu        sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode   int
	Body         interface{}
	Delay        time.Duration
	Headers      map[string]string
	StreamChunks []string // For streaming responses
}

// RecordedRequest is a request received by the mock server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}

	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))

	return ms
}

// URL returns the mock server's root URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// BaseURL returns the API base URL clients should be configured with.
func (ms *MockServer) BaseURL() string {
	return ms.server.URL + "/v1"
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific endpoint.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// SetModels serves the given model ids from the models endpoint.
func (ms *MockServer) SetModels(ids ...string) {
	ms.SetResponse(ModelsPath, MockResponse{
		StatusCode: http.StatusOK,
		Body:       MockModelList(ids...),
	})
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return len(ms.requests)
}

// Requests returns the requests received for path, oldest first.
func (ms *MockServer) Requests(path string) []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var out []RecordedRequest
	for _, r := range ms.requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// LastCompletionRequest decodes the most recent chat completion request
// body. It returns nil when no completion request was received.
func (ms *MockServer) LastCompletionRequest() map[string]interface{} {
	reqs := ms.Requests(CompletionsPath)
	if len(reqs) == 0 {
		return nil
	}

	var body map[string]interface{}
	if err := json.Unmarshal(reqs[len(reqs)-1].Body, &body); err != nil {
		return nil
	}
	return body
}

// handler handles incoming HTTP requests.
func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   body,
	})
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	if len(response.StreamChunks) > 0 {
		ms.handleStream(w, response)
		return
	}

	if response.StatusCode == 0 {
		response.StatusCode = http.StatusOK
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// handleStream handles Server-Sent Events streaming responses.
func (ms *MockServer) handleStream(w http.ResponseWriter, response MockResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	for _, chunk := range response.StreamChunks {
		fmt.Fprintf(w, "data: %s\n\n", chunk)
		flusher.Flush()
		time.Sleep(5 * time.Millisecond)
	}

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// MockModelList creates a models endpoint body listing ids.
func MockModelList(ids ...string) map[string]interface{} {
	data := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		data = append(data, map[string]interface{}{
			"id":       id,
			"object":   "model",
			"owned_by": "vllm",
		})
	}
	return map[string]interface{}{
		"object": "list",
		"data":   data,
	}
}

// MockOpenAIResponse creates a mock chat completion response. A negative
// totalTokens omits the usage object.
func MockOpenAIResponse(content string, model string, totalTokens int) map[string]interface{} {
	resp := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   model,
		"choices": []map[string]interface{}{
			{
				"index": 0,
				"message": map[string]interface{}{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": "stop",
			},
		},
	}
	if totalTokens >= 0 {
		resp["usage"] = map[string]interface{}{
			"prompt_tokens":     totalTokens / 2,
			"completion_tokens": totalTokens - totalTokens/2,
			"total_tokens":      totalTokens,
		}
	}
	return resp
}

// MockOpenAIStreamChunk creates a mock streaming chunk carrying delta.
func MockOpenAIStreamChunk(delta string, finishReason string) string {
	choice := map[string]interface{}{
		"index": 0,
		"delta": map[string]interface{}{
			"content": delta,
		},
	}
	if finishReason != "" {
		choice["finish_reason"] = finishReason
	}

	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "test-model",
		"choices": []map[string]interface{}{choice},
	}

	bytes, _ := json.Marshal(chunk)
	return string(bytes)
}

// MockOpenAIUsageChunk creates the trailing usage-only chunk sent when the
// client asks for stream usage.
func MockOpenAIUsageChunk(totalTokens int) string {
	chunk := map[string]interface{}{
		"id":      "chatcmpl-123",
		"object":  "chat.completion.chunk",
		"created": time.Now().Unix(),
		"model":   "test-model",
		"choices": []interface{}{},
		"usage": map[string]interface{}{
			"prompt_tokens":     totalTokens / 2,
			"completion_tokens": totalTokens - totalTokens/2,
			"total_tokens":      totalTokens,
		},
	}

	bytes, _ := json.Marshal(chunk)
	return string(bytes)
}

// MockChatStream creates a streaming response emitting deltas in order,
// followed by a usage chunk when totalTokens is positive.
func MockChatStream(deltas []string, totalTokens int) MockResponse {
	chunks := make([]string, 0, len(deltas)+1)
	for i, d := range deltas {
		finish := ""
		if i == len(deltas)-1 {
			finish = "stop"
		}
		chunks = append(chunks, MockOpenAIStreamChunk(d, finish))
	}
	if totalTokens > 0 {
		chunks = append(chunks, MockOpenAIUsageChunk(totalTokens))
	}
	return MockResponse{StatusCode: http.StatusOK, StreamChunks: chunks}
}

// MockErrorResponse creates a mock error response.
func MockErrorResponse(statusCode int, message string) MockResponse {
	body := map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"type":    "invalid_request_error",
			"code":    statusCode,
		},
	}

	return MockResponse{
		StatusCode: statusCode,
		Body:       body,
	}
}

// MockAuthError creates a 401 authentication error response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "Invalid API key")
}

// MockRateLimitError creates a 429 rate limit error response.
func MockRateLimitError(retryAfter int) MockResponse {
	response := MockErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}

// MockServerError creates a 500 internal server error response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// MockSlowResponse creates a completion that is delayed to simulate a
// stalled server.
func MockSlowResponse(delay time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       MockOpenAIResponse("slow", "test-model", 1),
		Delay:      delay,
	}
}
