// Package processing analyzes conversations before they are sent to the
// model server.
//
// # Architecture
//
// The processing package is organized into specialized sub-packages:
//
//   - tokens: prompt token estimation with tiktoken encodings
//   - conversation: history container, summarization and context window analysis
//
// Processor ties them together for callers that need both the estimate and
// the context window view, such as the agent's per-turn logging and the
// tokens command.
//
// # Basic Usage
//
//	processor := processing.NewProcessor(nil, cfg.Agent.ContextWarnRatio)
//	analysis := processor.Analyze(messages, model, maxModelLen)
//	if analysis.Conversation.NearLimit {
//		slog.Warn("context window usage high",
//			"tokens", analysis.EstimatedTokens,
//			"percent", analysis.Conversation.ContextWindowPercent)
//	}
package processing
