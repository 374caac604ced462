// Package providers implements the client side of an OpenAI-compatible
// upstream model server.
//
// # Overview
//
// The package defines the Provider interface the agent talks to, the
// provider-agnostic request and response types, and the typed errors that
// callers inspect with errors.As. Concrete clients live in sub-packages; the
// openai sub-package implements Provider on top of go-openai.
//
// # Architecture
//
//  1. Provider Interface - The contract used by the agent and the HTTP API
//  2. Base HTTP Provider - Shared HTTP client, model listing, retries, health
//  3. Completion Client - providers/openai, chat completions and streaming
//
// # Basic Usage
//
//	provider, err := openai.New(providers.ProviderConfig{
//	    BaseURL: "http://localhost:8000/v1",
//	    Timeout: 120 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	models, err := provider.ListModels(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := provider.SendCompletion(ctx, &providers.CompletionRequest{
//	    Model:    models[0].ID,
//	    Messages: []providers.Message{{Role: providers.RoleUser, Content: "Hello!"}},
//	})
//
// # Retries
//
// Model listing and health probes are idempotent and are retried with
// exponential backoff on 5xx responses and network failures. Chat completion
// requests are never retried; a failed completion is reported to the caller
// unchanged.
//
// # Health
//
// Every request updates the provider health state. Three consecutive
// failures mark the provider unhealthy, the next success marks it healthy
// again.
//
// # Errors
//
// Non-2xx responses are mapped to typed errors:
//
//   - 401, 403: *AuthError
//   - 429: *RateLimitError
//   - other 4xx: *ProviderError with StatusCode set
//   - 5xx after retries: *ProviderError
//   - deadline exceeded: *TimeoutError
//
// IsConnectionError distinguishes an unreachable server from one that
// answered with an error.
package providers
