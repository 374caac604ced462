package openai

import (
	"context"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// placeholderAPIKey is sent to local servers that do not require auth.
const placeholderAPIKey = "not-needed"

// Provider is an OpenAI-compatible upstream client.
type Provider struct {
	*providers.HTTPProvider
	client *openai.Client
}

var _ providers.Provider = (*Provider)(nil)

// NewProvider creates a provider for the server at config.BaseURL.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.BaseURL == "" {
		return nil, &providers.ValidationError{Field: "base_url", Message: "must not be empty"}
	}

	base := providers.NewHTTPProvider(config)

	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = placeholderAPIKey
	}

	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = base.GetConfig().BaseURL
	clientConfig.HTTPClient = base.HTTPClient()

	return &Provider{
		HTTPProvider: base,
		client:       openai.NewClientWithConfig(clientConfig),
	}, nil
}

// SendCompletion sends a non-streaming chat completion request.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, transformRequest(req, false))
	if err != nil {
		mapped := mapError(p.GetName(), err)
		p.RecordOutcome(mapped)
		slog.Debug("completion failed",
			"provider", p.GetName(),
			"model", req.Model,
			"error", mapped,
		)
		return nil, mapped
	}
	p.RecordOutcome(nil)

	result, err := transformResponse(p.GetName(), &resp)
	if err != nil {
		return nil, err
	}

	slog.Debug("completion received",
		"provider", p.GetName(),
		"model", result.Model,
		"latency", time.Since(start),
	)
	return result, nil
}

// StreamCompletion starts a streaming chat completion request. Token usage
// is requested for the end of the stream.
func (p *Provider) StreamCompletion(ctx context.Context, req *providers.CompletionRequest) (providers.StreamReader, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, transformRequest(req, true))
	if err != nil {
		mapped := mapError(p.GetName(), err)
		p.RecordOutcome(mapped)
		return nil, mapped
	}
	p.RecordOutcome(nil)

	return newStreamReader(p.GetName(), stream), nil
}

func validateRequest(req *providers.CompletionRequest) error {
	if req == nil {
		return &providers.ValidationError{Field: "request", Message: "must not be nil"}
	}
	if req.Model == "" {
		return &providers.ValidationError{Field: "model", Message: "must not be empty"}
	}
	if len(req.Messages) == 0 {
		return &providers.ValidationError{Field: "messages", Message: "must not be empty"}
	}
	return nil
}
