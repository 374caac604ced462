// Interpreter is a conversational agent front end for an OpenAI-compatible
// model server such as vLLM or llama.cpp.
//
// It keeps the conversation within budget by estimating prompt tokens and
// condensing the history into a summary once a threshold is reached, and
// exposes the agent over HTTP or an interactive terminal:
//
// Usage:
//
//	# Start the HTTP API
//	interpreter serve
//
//	# Chat in the terminal
//	interpreter chat
//
//	# Estimate the prompt tokens of a conversation
//	interpreter tokens conversation.json
//
//	# Show version information
//	interpreter version
package main

func main() {
	Execute()
}
