package agent

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// ErrStreamClosed is reported when a stream is closed before it ended.
var ErrStreamClosed = errors.New("stream closed before completion")

// Stream is a blocking iterator over the content of a streaming chat.
//
//	stream, err := agent.ChatStream(ctx, messages)
//	if err != nil {
//		return err
//	}
//	defer stream.Close()
//	for stream.Next() {
//		fmt.Print(stream.Content())
//	}
//	if err := stream.Err(); err != nil {
//		return err
//	}
//
// A Stream is not safe for concurrent use.
type Stream struct {
	reader   providers.StreamReader
	messages []providers.Message
	onDone   func(tokensUsed int, err error)

	content string
	text    strings.Builder
	usage   *providers.TokenUsage
	err     error
	done    bool

	closeOnce sync.Once
	closeErr  error
}

func newStream(reader providers.StreamReader, messages []providers.Message, onDone func(int, error)) *Stream {
	return &Stream{
		reader:   reader,
		messages: messages,
		onDone:   onDone,
	}
}

// Next advances to the next non-empty content delta. It returns false when
// the stream ended or failed; Err distinguishes the two.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}

	for {
		chunk, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			s.finish(nil)
			return false
		}
		if err != nil {
			s.finish(err)
			return false
		}

		if chunk.Usage != nil {
			s.usage = chunk.Usage
		}
		if chunk.Delta == "" {
			continue
		}

		s.content = chunk.Delta
		s.text.WriteString(chunk.Delta)
		return true
	}
}

func (s *Stream) finish(err error) {
	s.done = true
	s.content = ""
	s.err = err
	if s.onDone != nil {
		s.onDone(s.TokensUsed(), err)
	}
	_ = s.closeReader()
}

// Content returns the delta produced by the last successful Next.
func (s *Stream) Content() string {
	return s.content
}

// Text returns all content received so far.
func (s *Stream) Text() string {
	return s.text.String()
}

// Usage returns the token usage sent by the server at the end of the
// stream, or nil when the server sent none or the stream has not ended.
func (s *Stream) Usage() *providers.TokenUsage {
	return s.usage
}

// TokensUsed returns the total tokens of Usage, or -1 when unknown.
func (s *Stream) TokensUsed() int {
	if s.usage == nil {
		return -1
	}
	return s.usage.TotalTokens
}

// Err returns the error that ended the stream, if any.
func (s *Stream) Err() error {
	return s.err
}

// Messages returns the history that was sent.
func (s *Stream) Messages() []providers.Message {
	return s.messages
}

// Close releases the underlying connection. Closing a stream that has not
// ended abandons it with ErrStreamClosed. It is safe to call more than once.
func (s *Stream) Close() error {
	if !s.done {
		s.finish(ErrStreamClosed)
	}
	return s.closeReader()
}

func (s *Stream) closeReader() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.reader.Close()
	})
	return s.closeErr
}
