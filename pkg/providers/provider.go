package providers

import "context"

// Provider is the interface implemented by upstream model server clients.
// It abstracts an OpenAI-compatible chat completion endpoint so the agent
// can be exercised against mocks and alternative transports.
//
// All methods accept a context.Context for cancellation and timeout control.
//
// Example usage:
//
//	resp, err := provider.SendCompletion(ctx, &CompletionRequest{
//	    Model: "llama-3.1-8b",
//	    Messages: []Message{
//	        {Role: RoleUser, Content: "Hello!"},
//	    },
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content)
type Provider interface {
	// SendCompletion sends a non-streaming completion request and returns
	// the complete response. Completion requests are not retried.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// StreamCompletion starts a streaming completion request. The returned
	// reader yields chunks in server emission order and must be closed by
	// the caller.
	//
	// Example:
	//
	//  stream, err := provider.StreamCompletion(ctx, req)
	//  if err != nil {
	//      return err
	//  }
	//  defer stream.Close()
	//  for {
	//      chunk, err := stream.Read()
	//      if errors.Is(err, io.EOF) {
	//          break
	//      }
	//      if err != nil {
	//          return err
	//      }
	//      fmt.Print(chunk.Delta)
	//  }
	StreamCompletion(ctx context.Context, req *CompletionRequest) (StreamReader, error)

	// ListModels returns the models served by the upstream server.
	ListModels(ctx context.Context) ([]Model, error)

	// HealthCheck performs a lightweight request against the upstream
	// server and returns nil when it responds.
	HealthCheck(ctx context.Context) error

	// GetName returns the provider's configured name.
	GetName() string

	// IsHealthy returns the current health status of the provider.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases idle connections. The provider must not be used after.
	Close() error
}

// StreamReader is a blocking iterator over a streaming completion.
type StreamReader interface {
	// Read returns the next chunk. It returns nil and io.EOF when the
	// stream ends normally, or nil and an error on failure.
	Read() (*StreamChunk, error)

	// Close closes the stream and releases the underlying connection.
	Close() error
}
