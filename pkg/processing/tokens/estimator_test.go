package tokens

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/personal-assistant/interpreter/pkg/providers"
)

// lenTokenizer counts one token per byte.
type lenTokenizer struct{}

func (lenTokenizer) Count(text string) int { return len(text) }

func lenFactory(string) (Tokenizer, error) { return lenTokenizer{}, nil }

func TestEstimator_Count(t *testing.T) {
	estimator := NewEstimator(lenFactory)

	tests := []struct {
		name     string
		messages []providers.Message
		expected int
	}{
		{
			name:     "empty conversation",
			messages: nil,
			expected: ReplyPriming,
		},
		{
			name:     "single user message",
			messages: []providers.Message{{Role: "user", Content: "hi"}},
			expected: 4 + 2 + 2,
		},
		{
			name: "named message",
			messages: []providers.Message{
				{Role: "user", Content: "hi", Name: "bob"},
			},
			expected: 4 + 2 + 3 - 1 + 2,
		},
		{
			name: "empty content",
			messages: []providers.Message{
				{Role: "assistant", Content: ""},
			},
			expected: 4 + 2,
		},
		{
			name: "multi turn",
			messages: []providers.Message{
				{Role: "system", Content: "You are a helpful assistant."},
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "hi there"},
			},
			expected: 3*4 + 28 + 5 + 8 + 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimator.Count(tt.messages, "test-model")
			if got != tt.expected {
				t.Errorf("Count() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestEstimator_RoleIsNotCounted(t *testing.T) {
	estimator := NewEstimator(lenFactory)

	user := estimator.Count([]providers.Message{{Role: "user", Content: "x"}}, "m")
	system := estimator.Count([]providers.Message{{Role: "system", Content: "x"}}, "m")
	if user != system {
		t.Errorf("role changed the estimate: user=%d system=%d", user, system)
	}
}

func TestEstimator_AddingMessageIncreasesByAtLeastOverhead(t *testing.T) {
	estimator := NewEstimator(lenFactory)

	messages := []providers.Message{{Role: "user", Content: "hello"}}
	added := []providers.Message{
		{Role: "assistant", Content: ""},
		{Role: "user", Content: "question"},
		{Role: "user", Content: "", Name: "a"},
	}

	for _, msg := range added {
		before := estimator.Count(messages, "m")
		messages = append(messages, msg)
		after := estimator.Count(messages, "m")
		if after-before < MessageOverhead {
			t.Errorf("adding %+v increased estimate by %d, want >= %d", msg, after-before, MessageOverhead)
		}
	}
}

func TestEstimator_CachesTokenizerPerModel(t *testing.T) {
	var calls atomic.Int32
	factory := func(model string) (Tokenizer, error) {
		calls.Add(1)
		return lenTokenizer{}, nil
	}
	estimator := NewEstimator(factory)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			estimator.Count([]providers.Message{{Role: "user", Content: "hi"}}, "a")
		}()
	}
	wg.Wait()

	estimator.CountText("hi", "b")
	estimator.CountText("hi", "b")

	if got := calls.Load(); got != 2 {
		t.Errorf("factory called %d times, want 2", got)
	}
}

func TestEstimator_FallsBackToCharHeuristic(t *testing.T) {
	estimator := NewEstimator(func(string) (Tokenizer, error) {
		return nil, errors.New("offline")
	})

	// ceil(5/4) = 2
	if got := estimator.CountText("hello", "m"); got != 2 {
		t.Errorf("CountText() = %d, want 2", got)
	}
	if got := estimator.Count([]providers.Message{{Role: "user", Content: "hi"}}, "m"); got != 4+1+2 {
		t.Errorf("Count() = %d, want 7", got)
	}
}

func TestCharTokenizer(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
	}

	for _, tt := range tests {
		if got := (CharTokenizer{}).Count(tt.text); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
