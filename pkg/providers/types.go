package providers

import "time"

// Message represents a single message in a conversation.
// Messages are provider-agnostic and are transformed to the wire format of
// the upstream server by the concrete client.
type Message struct {
	// Role identifies the message sender: "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`

	// Name is an optional participant name.
	Name string `json:"name,omitempty"`
}

// TokenUsage tracks token consumption for a request as reported by the
// upstream server.
type TokenUsage struct {
	// PromptTokens is the number of tokens in the input prompt.
	PromptTokens int `json:"prompt_tokens"`

	// CompletionTokens is the number of tokens in the generated completion.
	CompletionTokens int `json:"completion_tokens"`

	// TotalTokens is the sum of prompt and completion tokens.
	TotalTokens int `json:"total_tokens"`
}

// CompletionRequest represents a provider-agnostic completion request.
type CompletionRequest struct {
	// Model is the model identifier.
	Model string `json:"model"`

	// Messages is the conversation history.
	Messages []Message `json:"messages"`

	// Stream enables streaming responses.
	Stream bool `json:"stream,omitempty"`

	// Temperature controls randomness. Zero leaves the server default.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens limits the completion length. Zero leaves the server default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// CompletionResponse represents a provider-agnostic completion response.
type CompletionResponse struct {
	// ID is the response identifier assigned by the server.
	ID string `json:"id"`

	// Model is the model that generated the response.
	Model string `json:"model"`

	// Content is the generated text.
	Content string `json:"content"`

	// FinishReason indicates why generation stopped.
	FinishReason string `json:"finish_reason"`

	// Usage is nil when the server did not report token usage.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Created is the Unix timestamp when the response was created.
	Created int64 `json:"created"`
}

// StreamChunk represents a single chunk in a streaming response.
type StreamChunk struct {
	// ID is the response identifier (same for all chunks of a stream).
	ID string `json:"id"`

	// Model is the model generating the stream.
	Model string `json:"model"`

	// Delta is the incremental content in this chunk. It may be empty, for
	// example in the final usage-only chunk.
	Delta string `json:"delta"`

	// FinishReason is set on the chunk that ends generation.
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage is set on the chunk that carries token usage, when the server
	// honours stream_options.include_usage.
	Usage *TokenUsage `json:"usage,omitempty"`

	// Created is the Unix timestamp of the chunk.
	Created int64 `json:"created"`
}

// Model describes an entry of the upstream model list.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	Created int64  `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`

	// MaxModelLen is the context window reported by vLLM-style servers.
	// Nil when the server does not report it.
	MaxModelLen *int `json:"max_model_len,omitempty"`
}

// ModelList is the body of GET /models.
type ModelList struct {
	Object string  `json:"object,omitempty"`
	Data   []Model `json:"data"`
}

// ProviderHealth tracks the health status of a provider.
type ProviderHealth struct {
	IsHealthy             bool
	LastCheck             time.Time
	LastError             error
	ConsecutiveFailures   int
	LastSuccessfulRequest time.Time
	TotalRequests         int64
	FailedRequests        int64
}

// ProviderConfig contains configuration for a provider instance.
type ProviderConfig struct {
	// Name is the provider name used in logs and metrics.
	Name string

	// BaseURL is the API root including the version segment.
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Timeout is the per-request timeout of the shared HTTP client.
	Timeout time.Duration

	// MaxRetries is the retry budget for idempotent requests.
	MaxRetries int

	// MaxIdleConns is the maximum number of idle connections.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum number of idle connections per host.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration
}

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Finish reasons.
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)
