package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// Prompts used for summarization.
const (
	SystemPrompt          = "You are a helpful assistant."
	SummarizerPrompt      = "You are a helpful assistant that summarizes conversations."
	SummarizeInstructions = "Summarize the following conversation between a user and an AI assistant in a concise manner:\n\n"
)

// Completer sends a non-streaming chat completion.
type Completer interface {
	SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error)
}

// Summarizer collapses a conversation into a summary held in system
// messages.
type Summarizer struct {
	completer Completer
	model     string
}

// NewSummarizer creates a summarizer that asks model through completer.
func NewSummarizer(completer Completer, model string) *Summarizer {
	return &Summarizer{completer: completer, model: model}
}

// ShouldSummarize reports whether a conversation with the given estimate
// must be summarized.
func ShouldSummarize(enabled bool, estimate, threshold int) bool {
	return enabled && estimate >= threshold
}

// Summarize replaces messages with two system messages: the static system
// prompt followed by a summary of the whole conversation. It sends exactly
// one completion request and does not retry.
func (s *Summarizer) Summarize(ctx context.Context, messages []providers.Message) ([]providers.Message, error) {
	slog.InfoContext(ctx, "summarizing context", "messages", len(messages))

	transcript, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("serialize conversation: %w", err)
	}

	resp, err := s.completer.SendCompletion(ctx, &providers.CompletionRequest{
		Model: s.model,
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: SummarizerPrompt},
			{Role: providers.RoleUser, Content: SummarizeInstructions + string(transcript)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summarize conversation: %w", err)
	}

	slog.InfoContext(ctx, "conversation summarized", "summary", resp.Content)
	if resp.Usage != nil {
		slog.InfoContext(ctx, "summarization token usage", "total_tokens", resp.Usage.TotalTokens)
	}

	return []providers.Message{
		{Role: providers.RoleSystem, Content: SystemPrompt},
		{Role: providers.RoleSystem, Content: resp.Content},
	}, nil
}
