package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// transformRequest converts a provider-agnostic request to go-openai's
// request type.
func transformRequest(req *providers.CompletionRequest, stream bool) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    make([]openai.ChatCompletionMessage, len(req.Messages)),
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}

	for i, msg := range req.Messages {
		out.Messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
			Name:    msg.Name,
		}
	}

	if stream {
		out.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}

	return out
}

// transformResponse converts a go-openai response to the provider-agnostic
// form. go-openai decodes usage into a value, so an all-zero usage object
// cannot be told apart from a missing one and is reported as absent.
func transformResponse(provider string, resp *openai.ChatCompletionResponse) (*providers.CompletionResponse, error) {
	if len(resp.Choices) == 0 {
		return nil, &providers.ParseError{
			Provider: provider,
			Cause:    fmt.Errorf("no choices in response"),
		}
	}

	choice := resp.Choices[0]

	return &providers.CompletionResponse{
		ID:           resp.ID,
		Model:        resp.Model,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage:        responseUsage(resp.Usage),
		Created:      resp.Created,
	}, nil
}

// transformStreamChunk converts one stream event. It returns nil for events
// carrying neither content nor usage.
func transformStreamChunk(chunk *openai.ChatCompletionStreamResponse) *providers.StreamChunk {
	result := &providers.StreamChunk{
		ID:      chunk.ID,
		Model:   chunk.Model,
		Created: chunk.Created,
		Usage:   transformUsage(chunk.Usage),
	}

	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		result.Delta = choice.Delta.Content
		result.FinishReason = string(choice.FinishReason)
	}

	if result.Delta == "" && result.FinishReason == "" && result.Usage == nil {
		return nil
	}
	return result
}

func responseUsage(u openai.Usage) *providers.TokenUsage {
	if u == (openai.Usage{}) {
		return nil
	}
	return transformUsage(&u)
}

// transformUsage keeps a usage object the server sent, even with a zero total.
func transformUsage(u *openai.Usage) *providers.TokenUsage {
	if u == nil {
		return nil
	}
	return &providers.TokenUsage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}

// mapError converts go-openai and transport errors to typed provider errors.
func mapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &providers.TimeoutError{Provider: provider}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(provider, apiErr.HTTPStatusCode, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(provider, reqErr.HTTPStatusCode, reqErr.Error(), err)
	}

	return &providers.ProviderError{
		Provider: provider,
		Message:  "request failed",
		Cause:    err,
	}
}

func statusError(provider string, status int, message string, cause error) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &providers.AuthError{Provider: provider, Message: message}
	case http.StatusTooManyRequests:
		return &providers.RateLimitError{Provider: provider, Message: message}
	default:
		return &providers.ProviderError{
			Provider:   provider,
			StatusCode: status,
			Message:    message,
			Cause:      cause,
		}
	}
}
