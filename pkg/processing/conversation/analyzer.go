package conversation

import (
	"github.com/personal-assistant/interpreter/pkg/providers"
)

// DefaultContextWindow is assumed when the server does not report the
// model's context length.
const DefaultContextWindow = 4096

// DefaultWarnRatio is the context window fraction above which a
// conversation is reported as near the limit.
const DefaultWarnRatio = 0.8

// Analyzer analyzes conversation history for context window management.
type Analyzer struct {
	warnRatio float64
}

// NewAnalyzer creates an analyzer flagging conversations above warnRatio
// of the context window. A ratio outside (0, 1] selects DefaultWarnRatio.
func NewAnalyzer(warnRatio float64) *Analyzer {
	if warnRatio <= 0 || warnRatio > 1 {
		warnRatio = DefaultWarnRatio
	}
	return &Analyzer{warnRatio: warnRatio}
}

// AnalyzeConversation analyzes a conversation history.
// totalTokens comes from the token estimator; contextWindow is the model's
// max_model_len, or zero when unknown.
func (a *Analyzer) AnalyzeConversation(messages []providers.Message, totalTokens, contextWindow int) *ConversationContext {
	if contextWindow <= 0 {
		contextWindow = DefaultContextWindow
	}

	ctx := &ConversationContext{
		SystemPrompts:      make([]string, 0),
		ContextWindowUsage: totalTokens,
		ContextWindowLimit: contextWindow,
	}

	ctx.ContextWindowPercent = float64(totalTokens) / float64(contextWindow)
	ctx.NearLimit = ctx.ContextWindowPercent >= a.warnRatio

	if len(messages) == 0 {
		return ctx
	}

	ctx.MessageCount = len(messages)

	userMessages := 0
	assistantMessages := 0

	for _, msg := range messages {
		switch msg.Role {
		case providers.RoleSystem:
			if msg.Content != "" {
				ctx.SystemPrompts = append(ctx.SystemPrompts, msg.Content)
			}
		case providers.RoleUser:
			userMessages++
		case providers.RoleAssistant:
			assistantMessages++
		}
	}

	// A turn is a user message and its reply; unanswered user messages
	// still count as turns.
	ctx.TurnCount = assistantMessages
	if userMessages > assistantMessages {
		ctx.TurnCount = userMessages
	}

	ctx.HasConversationHistory = ctx.TurnCount > 1 || assistantMessages > 0
	ctx.AverageMessageLength = totalTokens / ctx.MessageCount

	return ctx
}
