package conversation

import (
	"sync"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// Conversation is an ordered message history. Insertion order is
// conversation order. It is safe for concurrent use.
type Conversation struct {
	mu       sync.RWMutex
	messages []providers.Message
}

// New creates a conversation seeded with messages.
func New(messages ...providers.Message) *Conversation {
	c := &Conversation{}
	c.messages = append(c.messages, messages...)
	return c
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(messages ...providers.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, messages...)
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []providers.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]providers.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Replace swaps the whole history, for example for a summarized one.
func (c *Conversation) Replace(messages []providers.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = make([]providers.Message, len(messages))
	copy(c.messages, messages)
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Reset empties the conversation.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
