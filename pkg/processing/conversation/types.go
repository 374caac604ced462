package conversation

// ConversationContext contains conversation history analysis.
type ConversationContext struct {
	// TurnCount is the number of user/assistant message pairs.
	TurnCount int `json:"turn_count"`

	// MessageCount is the total number of messages.
	MessageCount int `json:"message_count"`

	// SystemPrompts contains the content of system messages.
	SystemPrompts []string `json:"system_prompts"`

	// ContextWindowUsage is the estimated prompt tokens.
	ContextWindowUsage int `json:"context_window_usage"`

	// ContextWindowLimit is the model context length used for the percentage.
	ContextWindowLimit int `json:"context_window_limit"`

	// ContextWindowPercent is the fraction of the context window used.
	ContextWindowPercent float64 `json:"context_window_percent"`

	// NearLimit is set when ContextWindowPercent reaches the warn ratio.
	NearLimit bool `json:"near_limit"`

	// HasConversationHistory indicates if this is a multi-turn conversation.
	HasConversationHistory bool `json:"has_conversation_history"`

	// AverageMessageLength is the average message length in tokens.
	AverageMessageLength int `json:"average_message_length"`
}
