package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/personal-assistant/interpreter/pkg/agent"
	"github.com/personal-assistant/interpreter/pkg/processing/conversation"
	"github.com/personal-assistant/interpreter/pkg/providers"
)

// Chatter is the part of the agent an interactive session uses.
type Chatter interface {
	Chat(ctx context.Context, messages []providers.Message) (*agent.Reply, error)
	ChatStream(ctx context.Context, messages []providers.Message) (*agent.Stream, error)
}

// SessionOptions configure an interactive session.
type SessionOptions struct {
	// Stream prints the reply as it is generated.
	Stream bool

	// Retry applies to each turn when the model server is unreachable.
	Retry RetryPolicy

	// Styles renders labels. Nil selects PlainStyles.
	Styles *Styles
}

// Session is a terminal chat loop. The history is kept across turns and
// replaced by the summarized history whenever the agent summarized it.
type Session struct {
	agent   Chatter
	in      *bufio.Scanner
	out     io.Writer
	opts    SessionOptions
	styles  *Styles
	history *conversation.Conversation
}

// Commands that end a session.
var exitCommands = map[string]bool{"exit": true, "quit": true}

// NewSession creates a session reading user input from in and writing
// replies to out.
func NewSession(a Chatter, in io.Reader, out io.Writer, opts SessionOptions) *Session {
	styles := opts.Styles
	if styles == nil {
		styles = PlainStyles()
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Session{
		agent:   a,
		in:      scanner,
		out:     out,
		opts:    opts,
		styles:  styles,
		history: conversation.New(),
	}
}

// Run reads lines until "exit", "quit", end of input or cancellation.
// A failed turn is reported and the loop continues; the failed input is
// not added to the history.
func (s *Session) Run(ctx context.Context) error {
	for {
		fmt.Fprintf(s.out, "%s: ", s.styles.User.Render("You"))

		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}

		input := strings.TrimSpace(s.in.Text())
		if input == "" {
			continue
		}
		if exitCommands[strings.ToLower(input)] {
			return nil
		}

		if _, err := s.Turn(ctx, input); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintln(s.out, s.styles.Error.Render("Error: "+err.Error()))
		}
	}
}

// Turn sends input with the history and returns the reply, retrying while
// the model server is unreachable.
func (s *Session) Turn(ctx context.Context, input string) (string, error) {
	messages := append(withoutSystemPrompt(s.history.Messages()), providers.Message{
		Role:    providers.RoleUser,
		Content: input,
	})

	var (
		content string
		sent    []providers.Message
	)
	err := Retry(ctx, s.opts.Retry, providers.IsConnectionError, s.onRetry, func() error {
		var err error
		if s.opts.Stream {
			content, sent, err = s.streamTurn(ctx, messages)
		} else {
			content, sent, err = s.completeTurn(ctx, messages)
		}
		return err
	})
	if err != nil {
		return "", err
	}

	if len(sent) != len(messages)+1 {
		slog.DebugContext(ctx, "history summarized", "before", len(messages), "after", len(sent))
	}
	s.history.Replace(append(sent, providers.Message{
		Role:    providers.RoleAssistant,
		Content: content,
	}))

	return content, nil
}

// withoutSystemPrompt drops the leading system prompt of a stored history,
// since the agent prepends it on every call.
func withoutSystemPrompt(messages []providers.Message) []providers.Message {
	if len(messages) > 0 {
		first := messages[0]
		if first.Role == providers.RoleSystem && first.Content == conversation.SystemPrompt && first.Name == "" {
			return messages[1:]
		}
	}
	return messages
}

func (s *Session) completeTurn(ctx context.Context, messages []providers.Message) (string, []providers.Message, error) {
	reply, err := s.agent.Chat(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	fmt.Fprintf(s.out, "%s: %s\n", s.styles.Assistant.Render("Agent"), reply.Content)
	return reply.Content, reply.Messages, nil
}

func (s *Session) streamTurn(ctx context.Context, messages []providers.Message) (string, []providers.Message, error) {
	stream, err := s.agent.ChatStream(ctx, messages)
	if err != nil {
		return "", nil, err
	}
	defer stream.Close()

	fmt.Fprintf(s.out, "%s: ", s.styles.Assistant.Render("Agent"))
	for stream.Next() {
		fmt.Fprint(s.out, stream.Content())
	}
	fmt.Fprintln(s.out)

	if err := stream.Err(); err != nil {
		return "", nil, err
	}
	return stream.Text(), stream.Messages(), nil
}

func (s *Session) onRetry(attempt int, err error) {
	msg := fmt.Sprintf("Model server unreachable (%v); retrying in %s (attempt %d)", err, s.opts.Retry.Delay, attempt)
	fmt.Fprintln(s.out, s.styles.Notice.Render(msg))
}

// History returns a copy of the conversation so far.
func (s *Session) History() []providers.Message {
	return s.history.Messages()
}
