// Package openai implements providers.Provider for OpenAI-compatible model
// servers (vLLM, llama.cpp server, Ollama, OpenAI itself) on top of the
// go-openai client.
//
// It supports:
//
//   - Chat completions
//   - Streaming responses with trailing usage (stream_options.include_usage)
//   - Model listing, including the max_model_len extension
//   - Token usage tracking
//
// # Basic Usage
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    BaseURL: "http://localhost:8000/v1",
//	    Timeout: 120 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	stream, err := provider.StreamCompletion(ctx, &providers.CompletionRequest{
//	    Model:    "llama-3.1-8b",
//	    Messages: []providers.Message{{Role: "user", Content: "Hello!"}},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
// Completions share the HTTP client of the embedded providers.HTTPProvider,
// so model listing, health probes and chat traffic use one connection pool.
// Errors from go-openai are mapped onto the typed errors of package
// providers.
package openai
