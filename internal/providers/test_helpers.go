package providers

import (
	"testing"
	"time"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// TestConfig returns a test provider configuration pointed at baseURL.
func TestConfig(baseURL string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                "test-upstream",
		BaseURL:             baseURL,
		APIKey:              "test-key",
		Timeout:             5 * time.Second,
		MaxRetries:          0,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestMessage creates a test message.
func TestMessage(role, content string) providers.Message {
	return providers.Message{
		Role:    role,
		Content: content,
	}
}

// NewUpstream starts a mock server serving model and registers its
// shutdown with t.
func NewUpstream(t *testing.T, model string) *MockServer {
	t.Helper()
	ms := NewMockServer()
	t.Cleanup(ms.Close)
	ms.SetModels(model)
	return ms
}

// ReplyWith configures a non-streaming completion returning content.
func (ms *MockServer) ReplyWith(content string, totalTokens int) {
	ms.SetResponse(CompletionsPath, MockResponse{
		StatusCode: 200,
		Body:       MockOpenAIResponse(content, "test-model", totalTokens),
	})
}

// StreamWith configures a streaming completion emitting deltas.
func (ms *MockServer) StreamWith(deltas []string, totalTokens int) {
	ms.SetResponse(CompletionsPath, MockChatStream(deltas, totalTokens))
}

// ConcatenateChunks concatenates the delta content from all chunks.
func ConcatenateChunks(chunks []*providers.StreamChunk) string {
	var result string
	for _, chunk := range chunks {
		result += chunk.Delta
	}
	return result
}

// WaitForCondition waits for a condition to become true within a timeout.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}

		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s: %s", timeout, message)
		}

		<-ticker.C
	}
}
