// Package agent dispatches chat conversations to an OpenAI-compatible model
// server.
//
// On construction the agent lists the models served upstream and uses the
// first one, or the configured one when it is served. Every chat turn then:
//
//  1. logs the message count and the token estimate;
//  2. prepends the "You are a helpful assistant." system prompt;
//  3. replaces the history with a summary when automatic summarization is
//     enabled and the estimate reaches the threshold;
//  4. sends a streaming or non-streaming completion.
//
// Reply and Stream both expose the history that was actually sent, so
// interactive callers can adopt a summarized history for the next turn.
package agent
