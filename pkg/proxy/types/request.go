package types

import (
	"fmt"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	// Messages is the conversation history. Required; may be empty.
	Messages []Message `json:"messages"`

	// Stream selects a streamed text/plain response. Defaults to false.
	Stream bool `json:"stream"`
}

// Message represents a single message in a conversation.
type Message struct {
	// Role is the author of the message ("system", "user" or "assistant").
	Role string `json:"role"`

	// Content is the text content of the message. Required; may be empty.
	Content *string `json:"content"`

	// Name is the name of the author (optional).
	Name string `json:"name,omitempty"`
}

// ValidationError describes an invalid request field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks that required fields are present.
func (r *ChatRequest) Validate() error {
	if r.Messages == nil {
		return &ValidationError{Field: "messages", Message: "field required"}
	}

	for i, msg := range r.Messages {
		if msg.Role == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].role", i),
				Message: "field required",
			}
		}
		if msg.Content == nil {
			return &ValidationError{
				Field:   fmt.Sprintf("messages[%d].content", i),
				Message: "field required",
			}
		}
	}

	return nil
}

// ProviderMessages converts the request history for the agent.
func (r *ChatRequest) ProviderMessages() []providers.Message {
	out := make([]providers.Message, 0, len(r.Messages))
	for _, msg := range r.Messages {
		m := providers.Message{Role: msg.Role, Name: msg.Name}
		if msg.Content != nil {
			m.Content = *msg.Content
		}
		out = append(out, m)
	}
	return out
}
