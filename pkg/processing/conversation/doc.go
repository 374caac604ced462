// Package conversation manages chat history: the Conversation container,
// summarization of long histories, and context window analysis.
//
// # Summarization
//
// When automatic summarization is enabled and the estimated prompt tokens
// reach the threshold, the whole history is sent to the model with a
// summarization instruction and replaced by two system messages:
//
//	[{system "You are a helpful assistant."}, {system <summary>}]
//
// Summarization is a single completion request. Failures are returned to
// the caller, which fails the chat turn that triggered it.
//
// # Context Window Management
//
// The analyzer relates the token estimate to the model's context length as
// reported by the server (max_model_len), assuming 4096 tokens when it is
// unknown:
//
//	analyzer := conversation.NewAnalyzer(0.8)
//	ctx := analyzer.AnalyzeConversation(messages, estimate, maxModelLen)
//	if ctx.NearLimit {
//		slog.Warn("context window usage high",
//			"percent", ctx.ContextWindowPercent,
//			"tokens", ctx.ContextWindowUsage)
//	}
package conversation
