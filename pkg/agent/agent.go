package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/personal-assistant/interpreter/pkg/processing"
	"github.com/personal-assistant/interpreter/pkg/processing/conversation"
	"github.com/personal-assistant/interpreter/pkg/providers"
	"github.com/personal-assistant/interpreter/pkg/telemetry/tracing"
)

// SystemPrompt is prepended to every conversation sent to the model.
const SystemPrompt = conversation.SystemPrompt

// Recorder receives chat metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordChat(model, mode, status string, duration time.Duration, tokensUsed int)
	RecordPromptEstimate(model string, tokens int)
	RecordSummarization(model string, success bool)
	RecordUpstreamError(provider string, err error)
}

// Options configures an Agent.
type Options struct {
	// Provider is the upstream client. Required.
	Provider providers.Provider

	// Model pins the model id. Empty selects the first listed model.
	Model string

	// AutoSummarize enables summarization above SummarizeThreshold.
	AutoSummarize bool

	// SummarizeThreshold is the estimated prompt size that triggers
	// summarization.
	SummarizeThreshold int

	// Verbose logs token usage of every completion.
	Verbose bool

	// Processor estimates tokens and analyzes context usage. Nil selects a
	// tiktoken processor.
	Processor *processing.Processor

	// Metrics is optional.
	Metrics Recorder
}

// Agent dispatches chat conversations to the upstream model server,
// summarizing long histories first. It is safe for concurrent use.
type Agent struct {
	provider   providers.Provider
	model      providers.Model
	processor  *processing.Processor
	summarizer *conversation.Summarizer
	metrics    Recorder

	mu                 sync.RWMutex
	autoSummarize      bool
	summarizeThreshold int
	verbose            bool
}

// Reply is the result of a non-streaming chat.
type Reply struct {
	// Content is the assistant reply.
	Content string

	// TokensUsed is the total token count reported by the server, or -1
	// when the server did not report usage.
	TokensUsed int

	// Messages is the history that was sent, after the system prompt was
	// added and summarization applied.
	Messages []providers.Message
}

// ModelInfo describes the model and the summarization settings.
type ModelInfo struct {
	ModelID                  string `json:"model_id"`
	AutoSummarize            bool   `json:"auto_summarize"`
	SummarizeThresholdTokens int    `json:"summarize_threshold_tokens"`
	MaxTokens                *int   `json:"max_tokens"`
}

// New resolves the model served upstream and creates an agent. A listing
// failure, an empty model list, or a pinned model the server does not serve
// is an error.
func New(ctx context.Context, opts Options) (*Agent, error) {
	if opts.Provider == nil {
		return nil, errors.New("agent: provider is required")
	}

	models, err := opts.Provider.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	model, err := selectModel(opts.Provider.GetName(), models, opts.Model)
	if err != nil {
		return nil, err
	}

	processor := opts.Processor
	if processor == nil {
		processor = processing.NewProcessor(nil, 0)
	}

	a := &Agent{
		provider:           opts.Provider,
		model:              model,
		processor:          processor,
		summarizer:         conversation.NewSummarizer(opts.Provider, model.ID),
		metrics:            opts.Metrics,
		autoSummarize:      opts.AutoSummarize,
		summarizeThreshold: opts.SummarizeThreshold,
		verbose:            opts.Verbose,
	}

	slog.InfoContext(ctx, "model resolved",
		"model", model.ID,
		"max_model_len", maxModelLen(model),
		"auto_summarize", opts.AutoSummarize,
		"summarize_threshold_tokens", opts.SummarizeThreshold,
	)

	return a, nil
}

func selectModel(provider string, models []providers.Model, pinned string) (providers.Model, error) {
	if len(models) == 0 {
		return providers.Model{}, providers.ErrNoModel
	}
	if pinned == "" {
		return models[0], nil
	}

	available := make([]string, 0, len(models))
	for _, m := range models {
		if m.ID == pinned {
			return m, nil
		}
		available = append(available, m.ID)
	}
	return providers.Model{}, &providers.ModelNotFoundError{
		Provider:  provider,
		Model:     pinned,
		Available: available,
	}
}

func maxModelLen(m providers.Model) int {
	if m.MaxModelLen == nil {
		return 0
	}
	return *m.MaxModelLen
}

// Model returns the resolved model id.
func (a *Agent) Model() string {
	return a.model.ID
}

// Processor returns the processor used for estimates.
func (a *Agent) Processor() *processing.Processor {
	return a.processor
}

// ModelInfo returns the model id, the summarization settings, and the
// context length when the server reported one.
func (a *Agent) ModelInfo() ModelInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	info := ModelInfo{
		ModelID:                  a.model.ID,
		AutoSummarize:            a.autoSummarize,
		SummarizeThresholdTokens: a.summarizeThreshold,
	}
	if a.model.MaxModelLen != nil {
		n := *a.model.MaxModelLen
		info.MaxTokens = &n
	}
	return info
}

// UpdateSettings replaces the summarization settings. It is used when the
// configuration is reloaded.
func (a *Agent) UpdateSettings(autoSummarize bool, threshold int, verbose bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.autoSummarize = autoSummarize
	a.summarizeThreshold = threshold
	a.verbose = verbose
}

func (a *Agent) settings() (autoSummarize bool, threshold int, verbose bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.autoSummarize, a.summarizeThreshold, a.verbose
}

// Chat sends messages as one non-streaming completion.
func (a *Agent) Chat(ctx context.Context, messages []providers.Message) (reply *Reply, err error) {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "agent.chat")
	tracing.SetChatAttributes(span, a.provider.GetName(), a.model.ID, "complete", len(messages))
	defer func() { tracing.End(span, err) }()

	prepared, err := a.prepare(ctx, messages)
	if err != nil {
		a.recordChat("complete", start, -1, err)
		return nil, err
	}

	resp, err := a.provider.SendCompletion(ctx, &providers.CompletionRequest{
		Model:    a.model.ID,
		Messages: prepared,
	})
	if err != nil {
		err = fmt.Errorf("chat completion: %w", err)
		a.recordChat("complete", start, -1, err)
		return nil, err
	}

	reply = &Reply{
		Content:    resp.Content,
		TokensUsed: -1,
		Messages:   prepared,
	}

	_, _, verbose := a.settings()
	if resp.Usage != nil {
		reply.TokensUsed = resp.Usage.TotalTokens
		if verbose {
			slog.InfoContext(ctx, "completion token usage",
				"prompt_tokens", resp.Usage.PromptTokens,
				"completion_tokens", resp.Usage.CompletionTokens,
				"total_tokens", resp.Usage.TotalTokens,
			)
		}
	}
	slog.InfoContext(ctx, "agent reply", "content", reply.Content)

	tracing.SetTokensUsed(span, reply.TokensUsed)
	a.recordChat("complete", start, reply.TokensUsed, nil)
	return reply, nil
}

// ChatStream sends messages as a streaming completion. The caller must
// consume or close the returned stream.
func (a *Agent) ChatStream(ctx context.Context, messages []providers.Message) (*Stream, error) {
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "agent.chat_stream")
	tracing.SetChatAttributes(span, a.provider.GetName(), a.model.ID, "stream", len(messages))

	prepared, err := a.prepare(ctx, messages)
	if err != nil {
		a.recordChat("stream", start, -1, err)
		tracing.End(span, err)
		return nil, err
	}

	reader, err := a.provider.StreamCompletion(ctx, &providers.CompletionRequest{
		Model:    a.model.ID,
		Messages: prepared,
		Stream:   true,
	})
	if err != nil {
		err = fmt.Errorf("chat completion stream: %w", err)
		a.recordChat("stream", start, -1, err)
		tracing.End(span, err)
		return nil, err
	}

	slog.InfoContext(ctx, "streaming chat completion started")

	return newStream(reader, prepared, func(tokensUsed int, err error) {
		a.recordChat("stream", start, tokensUsed, err)
		tracing.SetTokensUsed(span, tokensUsed)
		tracing.End(span, err)
	}), nil
}

// prepare logs the estimate, prepends the system prompt, and summarizes
// when the history is over the threshold.
func (a *Agent) prepare(ctx context.Context, messages []providers.Message) ([]providers.Message, error) {
	analysis := a.processor.Analyze(messages, a.model.ID, maxModelLen(a.model))
	tracing.SetEstimate(trace.SpanFromContext(ctx), analysis.EstimatedTokens)
	slog.InfoContext(ctx, "chat called",
		"messages", len(messages),
		"estimated_tokens", analysis.EstimatedTokens,
	)
	if analysis.Conversation.NearLimit {
		slog.WarnContext(ctx, "context window usage high",
			"estimated_tokens", analysis.EstimatedTokens,
			"context_window", analysis.Conversation.ContextWindowLimit,
			"percent", analysis.Conversation.ContextWindowPercent,
		)
	}

	prepared := withSystemPrompt(messages)
	slog.DebugContext(ctx, "prepared messages", "messages", prepared)

	autoSummarize, threshold, verbose := a.settings()
	if !autoSummarize {
		return prepared, nil
	}

	estimate := a.processor.Estimator().Count(prepared, a.model.ID)
	if a.metrics != nil {
		a.metrics.RecordPromptEstimate(a.model.ID, estimate)
	}
	if !conversation.ShouldSummarize(autoSummarize, estimate, threshold) {
		return prepared, nil
	}

	if verbose {
		slog.InfoContext(ctx, "context over threshold, summarizing",
			"estimated_tokens", estimate,
			"threshold", threshold,
		)
	}

	sctx, span := tracing.StartSpan(ctx, "agent.summarize")
	summarized, err := a.summarizer.Summarize(sctx, prepared)
	tracing.End(span, err)
	if a.metrics != nil {
		a.metrics.RecordSummarization(a.model.ID, err == nil)
	}
	if err != nil {
		return nil, err
	}
	return summarized, nil
}

// withSystemPrompt returns messages with the system prompt prepended. The
// prompt is always added, even when the history already starts with it.
func withSystemPrompt(messages []providers.Message) []providers.Message {
	out := make([]providers.Message, 0, len(messages)+1)
	out = append(out, providers.Message{Role: providers.RoleSystem, Content: SystemPrompt})
	return append(out, messages...)
}

func (a *Agent) recordChat(mode string, start time.Time, tokensUsed int, err error) {
	if a.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		a.metrics.RecordUpstreamError(a.provider.GetName(), err)
	}
	a.metrics.RecordChat(a.model.ID, mode, status, time.Since(start), tokensUsed)
}
