package openai

import (
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// streamReader adapts a go-openai completion stream to providers.StreamReader.
type streamReader struct {
	provider string
	stream   *openai.ChatCompletionStream
	closed   bool
}

func newStreamReader(provider string, stream *openai.ChatCompletionStream) *streamReader {
	return &streamReader{
		provider: provider,
		stream:   stream,
	}
}

// Read reads the next chunk from the stream.
// Returns nil, io.EOF when the stream ends normally.
func (s *streamReader) Read() (*providers.StreamChunk, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		resp, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			return nil, &providers.StreamError{
				Provider: s.provider,
				Message:  "failed to read stream",
				Cause:    mapError(s.provider, err),
			}
		}

		// Role-only preambles and keep-alive events carry nothing.
		if chunk := transformStreamChunk(&resp); chunk != nil {
			return chunk, nil
		}
	}
}

// Close closes the stream and releases resources.
func (s *streamReader) Close() error {
	if s.closed {
		return nil
	}

	s.closed = true
	return s.stream.Close()
}
