package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

type fakeCompleter struct {
	resp  *providers.CompletionResponse
	err   error
	calls []*providers.CompletionRequest
}

func (f *fakeCompleter) SendCompletion(_ context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func TestShouldSummarize(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		estimate  int
		threshold int
		want      bool
	}{
		{"disabled", false, 5000, 4000, false},
		{"below threshold", true, 3999, 4000, false},
		{"at threshold", true, 4000, 4000, true},
		{"above threshold", true, 4001, 4000, true},
		{"tiny conversation", true, 7, 1000000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSummarize(tt.enabled, tt.estimate, tt.threshold); got != tt.want {
				t.Errorf("ShouldSummarize(%v, %d, %d) = %v, want %v",
					tt.enabled, tt.estimate, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestSummarizer_Summarize(t *testing.T) {
	fake := &fakeCompleter{resp: &providers.CompletionResponse{
		Content: "The user greeted the assistant.",
		Usage:   &providers.TokenUsage{TotalTokens: 55},
	}}
	s := NewSummarizer(fake, "test-model")

	history := []providers.Message{
		{Role: providers.RoleSystem, Content: SystemPrompt},
		{Role: providers.RoleUser, Content: "hello"},
		{Role: providers.RoleAssistant, Content: "hi", Name: "bot"},
	}

	got, err := s.Summarize(context.Background(), history)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	for i, msg := range got {
		if msg.Role != providers.RoleSystem {
			t.Errorf("message %d role = %q, want system", i, msg.Role)
		}
	}
	if got[0].Content != SystemPrompt {
		t.Errorf("first message = %q", got[0].Content)
	}
	if got[1].Content != "The user greeted the assistant." {
		t.Errorf("summary message = %q", got[1].Content)
	}

	if len(fake.calls) != 1 {
		t.Fatalf("expected exactly one completion, got %d", len(fake.calls))
	}
	req := fake.calls[0]
	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Content != SummarizerPrompt {
		t.Fatalf("unexpected summarization request: %+v", req.Messages)
	}

	prompt := req.Messages[1].Content
	if !strings.HasPrefix(prompt, SummarizeInstructions) {
		t.Errorf("prompt missing instructions: %q", prompt)
	}
	var transcript []providers.Message
	if err := json.Unmarshal([]byte(strings.TrimPrefix(prompt, SummarizeInstructions)), &transcript); err != nil {
		t.Fatalf("transcript is not a JSON message array: %v", err)
	}
	if len(transcript) != 3 || transcript[2].Name != "bot" {
		t.Errorf("unexpected transcript: %+v", transcript)
	}
}

func TestSummarizer_SummarizeError(t *testing.T) {
	upstream := errors.New("connection refused")
	fake := &fakeCompleter{err: upstream}
	s := NewSummarizer(fake, "test-model")

	_, err := s.Summarize(context.Background(), []providers.Message{{Role: "user", Content: "x"}})
	if !errors.Is(err, upstream) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	if len(fake.calls) != 1 {
		t.Errorf("summarization must not retry, got %d calls", len(fake.calls))
	}
}
