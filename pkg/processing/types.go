package processing

import (
	"time"

	"github.com/personal-assistant/interpreter/pkg/processing/conversation"
)

// Re-export conversation types for convenience
type ConversationContext = conversation.ConversationContext

// Analysis is the result of analyzing a conversation before it is sent.
type Analysis struct {
	// Model is the model the estimate was computed for.
	Model string `json:"model"`

	// EstimatedTokens is the estimated prompt token count.
	EstimatedTokens int `json:"estimated_tokens"`

	// Conversation contains conversation history analysis.
	Conversation *ConversationContext `json:"conversation"`

	// ProcessingDuration is the time taken by the analysis.
	ProcessingDuration time.Duration `json:"-"`
}
