// Package tokens estimates the prompt token count of a conversation.
//
// The estimate follows the chat formatting arithmetic of OpenAI-style
// models: a fixed overhead per message, the tokens of its content, a
// correction for named messages, and a fixed reply priming. It is used to
// decide when a conversation should be summarized and to report context
// window usage, so an approximation is sufficient.
//
// # Tokenizers
//
// Tokens are counted with tiktoken (github.com/pkoukk/tiktoken-go). The
// encoding registered for the model is used when tiktoken knows the model;
// any other model silently uses cl100k_base. When no encoding can be loaded
// at all (the BPE ranks are downloaded on first use) the estimator falls
// back to a character heuristic of one token per four bytes.
//
// # Usage
//
//	estimator := tokens.NewEstimator(nil)
//	n := estimator.Count([]providers.Message{
//		{Role: "user", Content: "hi"},
//	}, "llama-3.1-8b")
//	// n == 4 + 1 + 2
//
// Tests inject a TokenizerFactory to avoid network access.
package tokens
