package processing

import (
	"time"

	"github.com/personal-assistant/interpreter/pkg/processing/conversation"
	"github.com/personal-assistant/interpreter/pkg/processing/tokens"
	"github.com/personal-assistant/interpreter/pkg/providers"
)

// Processor combines token estimation and conversation analysis.
// It is safe for concurrent use.
type Processor struct {
	tokenEstimator       *tokens.Estimator
	conversationAnalyzer *conversation.Analyzer
}

// NewProcessor creates a processor. A nil estimator selects a tiktoken
// estimator; warnRatio is passed to the conversation analyzer.
func NewProcessor(estimator *tokens.Estimator, warnRatio float64) *Processor {
	if estimator == nil {
		estimator = tokens.NewEstimator(nil)
	}
	return &Processor{
		tokenEstimator:       estimator,
		conversationAnalyzer: conversation.NewAnalyzer(warnRatio),
	}
}

// Estimator returns the token estimator.
func (p *Processor) Estimator() *tokens.Estimator {
	return p.tokenEstimator
}

// Analyze estimates the prompt tokens of messages for model and relates
// them to contextWindow (zero when unknown).
func (p *Processor) Analyze(messages []providers.Message, model string, contextWindow int) *Analysis {
	startTime := time.Now()

	estimate := p.tokenEstimator.Count(messages, model)

	return &Analysis{
		Model:              model,
		EstimatedTokens:    estimate,
		Conversation:       p.conversationAnalyzer.AnalyzeConversation(messages, estimate, contextWindow),
		ProcessingDuration: time.Since(startTime),
	}
}
