package tokens

import (
	"log/slog"
	"sync"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// Chat formatting constants of the estimate. Every message costs
// MessageOverhead tokens for its framing; a named message saves NamePenalty
// because the name replaces the role; ReplyPriming covers the tokens that
// open the assistant reply.
const (
	MessageOverhead = 4
	NamePenalty     = 1
	ReplyPriming    = 2
)

// Tokenizer counts the tokens of a text.
type Tokenizer interface {
	Count(text string) int
}

// TokenizerFactory resolves the tokenizer for a model name.
type TokenizerFactory func(model string) (Tokenizer, error)

// Estimator estimates the prompt tokens of a conversation. Tokenizers are
// resolved lazily and cached per model name; counts are never cached.
// It is safe for concurrent use.
type Estimator struct {
	factory TokenizerFactory

	mu         sync.RWMutex
	tokenizers map[string]Tokenizer
}

// NewEstimator creates an estimator resolving tokenizers with factory.
// A nil factory selects TiktokenFactory.
func NewEstimator(factory TokenizerFactory) *Estimator {
	if factory == nil {
		factory = TiktokenFactory
	}
	return &Estimator{
		factory:    factory,
		tokenizers: make(map[string]Tokenizer),
	}
}

// Count returns the estimated prompt tokens of messages for model.
//
// Each message costs MessageOverhead plus its content tokens; a name adds
// its own tokens minus NamePenalty. ReplyPriming is added once.
func (e *Estimator) Count(messages []providers.Message, model string) int {
	tok := e.tokenizer(model)

	total := 0
	for _, msg := range messages {
		total += MessageOverhead
		total += tok.Count(msg.Content)
		if msg.Name != "" {
			total += tok.Count(msg.Name)
			total -= NamePenalty
		}
	}
	total += ReplyPriming

	if total < 0 {
		return 0
	}
	return total
}

// CountText returns the token count of a single text for model.
func (e *Estimator) CountText(text string, model string) int {
	return e.tokenizer(model).Count(text)
}

// tokenizer returns the cached tokenizer for model, resolving it on first
// use. A model whose tokenizer cannot be loaded gets the character heuristic.
func (e *Estimator) tokenizer(model string) Tokenizer {
	e.mu.RLock()
	tok, ok := e.tokenizers[model]
	e.mu.RUnlock()
	if ok {
		return tok
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if tok, ok := e.tokenizers[model]; ok {
		return tok
	}

	tok, err := e.factory(model)
	if err != nil {
		slog.Debug("tokenizer unavailable, using character heuristic",
			"model", model,
			"error", err,
		)
		tok = CharTokenizer{}
	}
	e.tokenizers[model] = tok
	return tok
}
