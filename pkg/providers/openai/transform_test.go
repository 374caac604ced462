package openai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

func TestTransformRequest(t *testing.T) {
	req := &providers.CompletionRequest{
		Model: "m",
		Messages: []providers.Message{
			{Role: providers.RoleSystem, Content: "sys"},
			{Role: providers.RoleUser, Content: "hi", Name: "alice"},
		},
		MaxTokens: 64,
	}

	out := transformRequest(req, false)
	if out.Stream || out.StreamOptions != nil {
		t.Error("non-streaming request must not ask for stream options")
	}
	if len(out.Messages) != 2 || out.Messages[1].Name != "alice" || out.Messages[0].Role != "system" {
		t.Errorf("unexpected messages: %+v", out.Messages)
	}
	if out.MaxTokens != 64 {
		t.Errorf("MaxTokens = %d", out.MaxTokens)
	}

	out = transformRequest(req, true)
	if !out.Stream || out.StreamOptions == nil || !out.StreamOptions.IncludeUsage {
		t.Error("streaming request must include usage")
	}
}

func TestTransformStreamChunk(t *testing.T) {
	tests := []struct {
		name    string
		chunk   openai.ChatCompletionStreamResponse
		wantNil bool
		delta   string
		usage   int
	}{
		{
			name:    "role preamble",
			chunk:   openai.ChatCompletionStreamResponse{Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatCompletionStreamChoiceDelta{Role: "assistant"}}}},
			wantNil: true,
		},
		{
			name:  "content",
			chunk: openai.ChatCompletionStreamResponse{Choices: []openai.ChatCompletionStreamChoice{{Delta: openai.ChatCompletionStreamChoiceDelta{Content: "x"}}}},
			delta: "x",
		},
		{
			name:  "usage only",
			chunk: openai.ChatCompletionStreamResponse{Usage: &openai.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}},
			usage: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := transformStreamChunk(&tt.chunk)
			if tt.wantNil {
				if got != nil {
					t.Errorf("expected nil chunk, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("unexpected nil chunk")
			}
			if got.Delta != tt.delta {
				t.Errorf("Delta = %q, want %q", got.Delta, tt.delta)
			}
			if tt.usage > 0 && (got.Usage == nil || got.Usage.TotalTokens != tt.usage) {
				t.Errorf("Usage = %+v, want total %d", got.Usage, tt.usage)
			}
		})
	}
}

func TestTransformResponse_NoChoices(t *testing.T) {
	_, err := transformResponse("upstream", &openai.ChatCompletionResponse{})
	var pe *providers.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected ParseError, got %v", err)
	}
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{
			name: "canceled passes through",
			err:  fmt.Errorf("post: %w", context.Canceled),
			check: func(err error) bool {
				return errors.Is(err, context.Canceled)
			},
		},
		{
			name: "deadline",
			err:  fmt.Errorf("post: %w", context.DeadlineExceeded),
			check: func(err error) bool {
				var te *providers.TimeoutError
				return errors.As(err, &te)
			},
		},
		{
			name: "api 401",
			err:  &openai.APIError{HTTPStatusCode: 401, Message: "bad key"},
			check: func(err error) bool {
				var ae *providers.AuthError
				return errors.As(err, &ae) && ae.Message == "bad key"
			},
		},
		{
			name: "request 503",
			err:  &openai.RequestError{HTTPStatusCode: 503, Err: errors.New("unavailable")},
			check: func(err error) bool {
				return providers.IsConnectionError(err)
			},
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			check: func(err error) bool {
				var pe *providers.ProviderError
				return errors.As(err, &pe) && pe.StatusCode == 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError("upstream", tt.err); !tt.check(got) {
				t.Errorf("mapError(%v) = %T %v", tt.err, got, got)
			}
		})
	}
}

func TestTransformUsage_Zero(t *testing.T) {
	chunk := transformStreamChunk(&openai.ChatCompletionStreamResponse{Usage: &openai.Usage{}})
	if chunk == nil || chunk.Usage == nil {
		t.Fatalf("stream usage with zero total dropped: %+v", chunk)
	}
	if chunk.Usage.TotalTokens != 0 {
		t.Errorf("TotalTokens = %d, want 0", chunk.Usage.TotalTokens)
	}

	resp, err := transformResponse("upstream", &openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "ok"}}},
	})
	if err != nil {
		t.Fatalf("transformResponse: %v", err)
	}
	if resp.Usage != nil {
		t.Errorf("Usage = %+v, want nil for an all-zero usage object", resp.Usage)
	}
}
