package agent

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	testhelpers "github.com/personal-assistant/interpreter/internal/providers"
	"github.com/personal-assistant/interpreter/pkg/processing"
	"github.com/personal-assistant/interpreter/pkg/processing/conversation"
	"github.com/personal-assistant/interpreter/pkg/processing/tokens"
	"github.com/personal-assistant/interpreter/pkg/providers"
	"github.com/personal-assistant/interpreter/pkg/providers/openai"
)

// byteTokenizer counts one token per byte.
type byteTokenizer struct{}

func (byteTokenizer) Count(text string) int { return len(text) }

func testProcessor() *processing.Processor {
	return processing.NewProcessor(tokens.NewEstimator(func(string) (tokens.Tokenizer, error) {
		return byteTokenizer{}, nil
	}), 0)
}

type chatRecord struct {
	mode, status string
	tokens       int
}

type fakeRecorder struct {
	mu             sync.Mutex
	chats          []chatRecord
	estimates      []int
	summarizations []bool
	errors         int
}

func (r *fakeRecorder) RecordChat(_, mode, status string, _ time.Duration, tokensUsed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = append(r.chats, chatRecord{mode: mode, status: status, tokens: tokensUsed})
}

func (r *fakeRecorder) RecordPromptEstimate(_ string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.estimates = append(r.estimates, n)
}

func (r *fakeRecorder) RecordSummarization(_ string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summarizations = append(r.summarizations, success)
}

func (r *fakeRecorder) RecordUpstreamError(string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors++
}

func newProvider(t *testing.T, mock *testhelpers.MockServer) *openai.Provider {
	t.Helper()
	provider, err := openai.NewProvider(testhelpers.TestConfig(mock.BaseURL()))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

func newTestAgent(t *testing.T, mock *testhelpers.MockServer, opts Options) *Agent {
	t.Helper()
	opts.Provider = newProvider(t, mock)
	if opts.Processor == nil {
		opts.Processor = testProcessor()
	}
	a, err := New(context.Background(), opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func userMessages(contents ...string) []providers.Message {
	out := make([]providers.Message, 0, len(contents))
	for _, c := range contents {
		out = append(out, testhelpers.TestMessage(providers.RoleUser, c))
	}
	return out
}

func sentMessages(t *testing.T, body map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, ok := body["messages"].([]interface{})
	if !ok {
		t.Fatalf("request body has no messages: %v", body)
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, m := range raw {
		out = append(out, m.(map[string]interface{}))
	}
	return out
}

func TestNew_ModelSelection(t *testing.T) {
	tests := []struct {
		name    string
		models  []string
		pinned  string
		want    string
		wantErr func(error) bool
	}{
		{
			name:   "first listed model",
			models: []string{"llama-3", "mistral"},
			want:   "llama-3",
		},
		{
			name:   "pinned model present",
			models: []string{"llama-3", "mistral"},
			pinned: "mistral",
			want:   "mistral",
		},
		{
			name:   "pinned model absent",
			models: []string{"llama-3"},
			pinned: "gpt-4",
			wantErr: func(err error) bool {
				var mnf *providers.ModelNotFoundError
				return errors.As(err, &mnf) && mnf.Model == "gpt-4"
			},
		},
		{
			name:    "empty model list",
			models:  nil,
			wantErr: func(err error) bool { return errors.Is(err, providers.ErrNoModel) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewMockServer()
			defer mock.Close()
			mock.SetModels(tt.models...)

			a, err := New(context.Background(), Options{
				Provider:  newProvider(t, mock),
				Model:     tt.pinned,
				Processor: testProcessor(),
			})

			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if a.Model() != tt.want {
				t.Errorf("Model() = %q, want %q", a.Model(), tt.want)
			}
		})
	}
}

func TestNew_ListingFailure(t *testing.T) {
	mock := testhelpers.NewMockServer()
	defer mock.Close()
	mock.SetResponse(testhelpers.ModelsPath, testhelpers.MockServerError())

	_, err := New(context.Background(), Options{Provider: newProvider(t, mock)})
	if err == nil {
		t.Fatal("expected error when the model listing fails")
	}
}

func TestNew_RequiresProvider(t *testing.T) {
	if _, err := New(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without provider")
	}
}

func TestAgent_ModelInfo(t *testing.T) {
	t.Run("max_model_len reported", func(t *testing.T) {
		mock := testhelpers.NewMockServer()
		defer mock.Close()
		mock.SetResponse(testhelpers.ModelsPath, testhelpers.MockResponse{
			StatusCode: http.StatusOK,
			Body: map[string]interface{}{
				"object": "list",
				"data": []map[string]interface{}{
					{"id": "llama-3", "object": "model", "max_model_len": 8192},
				},
			},
		})

		a := newTestAgent(t, mock, Options{AutoSummarize: true, SummarizeThreshold: 4000})
		info := a.ModelInfo()

		if info.ModelID != "llama-3" || !info.AutoSummarize || info.SummarizeThresholdTokens != 4000 {
			t.Errorf("unexpected info: %+v", info)
		}
		if info.MaxTokens == nil || *info.MaxTokens != 8192 {
			t.Errorf("MaxTokens = %v, want 8192", info.MaxTokens)
		}
	})

	t.Run("max_model_len absent", func(t *testing.T) {
		mock := testhelpers.NewUpstream(t, "llama-3")
		a := newTestAgent(t, mock, Options{})
		if info := a.ModelInfo(); info.MaxTokens != nil {
			t.Errorf("MaxTokens = %v, want nil", *info.MaxTokens)
		}
	})
}

func TestAgent_UpdateSettings(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	a := newTestAgent(t, mock, Options{AutoSummarize: true, SummarizeThreshold: 4000})

	a.UpdateSettings(false, 100, false)

	info := a.ModelInfo()
	if info.AutoSummarize || info.SummarizeThresholdTokens != 100 {
		t.Errorf("settings not applied: %+v", info)
	}
}

func TestAgent_Chat(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.ReplyWith("Hello there", 42)
	rec := &fakeRecorder{}
	a := newTestAgent(t, mock, Options{Metrics: rec})

	reply, err := a.Chat(context.Background(), userMessages("hi"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if reply.Content != "Hello there" {
		t.Errorf("Content = %q", reply.Content)
	}
	if reply.TokensUsed != 42 {
		t.Errorf("TokensUsed = %d, want 42", reply.TokensUsed)
	}

	sent := sentMessages(t, mock.LastCompletionRequest())
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sent))
	}
	if sent[0]["role"] != providers.RoleSystem || sent[0]["content"] != SystemPrompt {
		t.Errorf("first message = %v, want system prompt", sent[0])
	}
	if sent[1]["content"] != "hi" {
		t.Errorf("second message = %v", sent[1])
	}
	if len(reply.Messages) != 2 || reply.Messages[0].Content != SystemPrompt {
		t.Errorf("Reply.Messages = %+v", reply.Messages)
	}

	if len(rec.chats) != 1 || rec.chats[0] != (chatRecord{mode: "complete", status: "success", tokens: 42}) {
		t.Errorf("recorded chats = %+v", rec.chats)
	}
}

func TestAgent_Chat_NoUsage(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.ReplyWith("ok", -1)
	a := newTestAgent(t, mock, Options{})

	reply, err := a.Chat(context.Background(), userMessages("hi"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.TokensUsed != -1 {
		t.Errorf("TokensUsed = %d, want -1", reply.TokensUsed)
	}
}

func TestAgent_Chat_AlwaysPrependsSystemPrompt(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.ReplyWith("ok", 1)
	a := newTestAgent(t, mock, Options{})

	history := []providers.Message{
		{Role: providers.RoleSystem, Content: SystemPrompt},
		{Role: providers.RoleSystem, Content: "summary of earlier turns"},
		{Role: providers.RoleUser, Content: "and then?"},
	}
	if _, err := a.Chat(context.Background(), history); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	sent := sentMessages(t, mock.LastCompletionRequest())
	if len(sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(sent))
	}
	for i, want := range []string{SystemPrompt, SystemPrompt, "summary of earlier turns", "and then?"} {
		if sent[i]["content"] != want {
			t.Errorf("message %d = %v, want content %q", i, sent[i], want)
		}
	}
}

func TestAgent_Chat_PrefixedHistoryEstimate(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.ReplyWith("ok", 1)
	rec := &fakeRecorder{}
	a := newTestAgent(t, mock, Options{AutoSummarize: true, SummarizeThreshold: 1_000_000, Metrics: rec})

	history := []providers.Message{
		{Role: providers.RoleSystem, Content: SystemPrompt},
		{Role: providers.RoleUser, Content: "hi"},
	}
	if _, err := a.Chat(context.Background(), history); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// Two copies of the prompt are counted, as they are sent.
	want := 2*(4+len(SystemPrompt)) + 4 + 2 + 2
	if len(rec.estimates) != 1 || rec.estimates[0] != want {
		t.Errorf("estimates = %v, want [%d]", rec.estimates, want)
	}
	if n := len(sentMessages(t, mock.LastCompletionRequest())); n != 3 {
		t.Errorf("upstream received %d messages, want 3", n)
	}
}

func TestAgent_Chat_UpstreamError(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.SetResponse(testhelpers.CompletionsPath, testhelpers.MockServerError())
	rec := &fakeRecorder{}
	a := newTestAgent(t, mock, Options{Metrics: rec})

	_, err := a.Chat(context.Background(), userMessages("hi"))
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *providers.ProviderError
	if !errors.As(err, &pe) || pe.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected wrapped ProviderError 500, got %v", err)
	}
	if rec.errors != 1 || len(rec.chats) != 1 || rec.chats[0].status != "error" {
		t.Errorf("recorder = %+v", rec)
	}
}

func TestAgent_Summarization(t *testing.T) {
	tests := []struct {
		name          string
		autoSummarize bool
		threshold     int
		wantRequests  int
	}{
		{name: "below threshold", autoSummarize: true, threshold: 1_000_000, wantRequests: 1},
		{name: "at threshold", autoSummarize: true, threshold: 1, wantRequests: 2},
		{name: "disabled", autoSummarize: false, threshold: 1, wantRequests: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewUpstream(t, "m")
			mock.ReplyWith("condensed", 10)
			rec := &fakeRecorder{}
			a := newTestAgent(t, mock, Options{
				AutoSummarize:      tt.autoSummarize,
				SummarizeThreshold: tt.threshold,
				Metrics:            rec,
			})

			reply, err := a.Chat(context.Background(), userMessages("hi"))
			if err != nil {
				t.Fatalf("Chat: %v", err)
			}

			reqs := mock.Requests(testhelpers.CompletionsPath)
			if len(reqs) != tt.wantRequests {
				t.Fatalf("completion requests = %d, want %d", len(reqs), tt.wantRequests)
			}

			if tt.wantRequests == 1 {
				if len(reply.Messages) != 2 || reply.Messages[1].Content != "hi" {
					t.Errorf("history changed without summarization: %+v", reply.Messages)
				}
				return
			}

			if !strings.Contains(string(reqs[0].Body), conversation.SummarizerPrompt) {
				t.Errorf("first request is not a summarization: %s", reqs[0].Body)
			}
			if len(reply.Messages) != 2 {
				t.Fatalf("summarized history has %d messages, want 2", len(reply.Messages))
			}
			for _, m := range reply.Messages {
				if m.Role != providers.RoleSystem {
					t.Errorf("summarized message role = %q, want system", m.Role)
				}
			}
			if reply.Messages[1].Content != "condensed" {
				t.Errorf("summary = %q", reply.Messages[1].Content)
			}
			if len(rec.summarizations) != 1 || !rec.summarizations[0] {
				t.Errorf("summarizations = %v", rec.summarizations)
			}
		})
	}
}

func TestAgent_Summarization_EstimateWithSystemPrompt(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.ReplyWith("ok", 1)
	rec := &fakeRecorder{}
	a := newTestAgent(t, mock, Options{AutoSummarize: true, SummarizeThreshold: 1_000_000, Metrics: rec})

	if _, err := a.Chat(context.Background(), userMessages("hi")); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// system prompt (4+28) + "hi" (4+2) + reply priming 2
	want := 4 + len(SystemPrompt) + 4 + 2 + 2
	if len(rec.estimates) != 1 || rec.estimates[0] != want {
		t.Errorf("estimates = %v, want [%d]", rec.estimates, want)
	}
}

func TestAgent_ChatStream(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.StreamWith([]string{"Hel", "lo", "", " world"}, 17)
	rec := &fakeRecorder{}
	a := newTestAgent(t, mock, Options{Metrics: rec})

	stream, err := a.ChatStream(context.Background(), userMessages("hi"))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	defer stream.Close()

	var deltas []string
	for stream.Next() {
		deltas = append(deltas, stream.Content())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}

	if strings.Join(deltas, "|") != "Hel|lo| world" {
		t.Errorf("deltas = %q", deltas)
	}
	if stream.Text() != "Hello world" {
		t.Errorf("Text() = %q", stream.Text())
	}
	if stream.TokensUsed() != 17 {
		t.Errorf("TokensUsed() = %d, want 17", stream.TokensUsed())
	}
	if stream.Next() {
		t.Error("Next after end returned true")
	}

	body := mock.LastCompletionRequest()
	if body["stream"] != true {
		t.Errorf("stream flag = %v", body["stream"])
	}
	if opts, ok := body["stream_options"].(map[string]interface{}); !ok || opts["include_usage"] != true {
		t.Errorf("stream_options = %v", body["stream_options"])
	}

	if len(rec.chats) != 1 || rec.chats[0] != (chatRecord{mode: "stream", status: "success", tokens: 17}) {
		t.Errorf("recorded chats = %+v", rec.chats)
	}
}

func TestAgent_ChatStream_NoUsage(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.StreamWith([]string{"a", "b"}, 0)
	a := newTestAgent(t, mock, Options{})

	stream, err := a.ChatStream(context.Background(), userMessages("hi"))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	defer stream.Close()
	for stream.Next() {
	}

	if stream.Usage() != nil || stream.TokensUsed() != -1 {
		t.Errorf("Usage = %+v, TokensUsed = %d", stream.Usage(), stream.TokensUsed())
	}
}

func TestAgent_StreamMatchesComplete(t *testing.T) {
	deltas := []string{"The ", "quick ", "brown ", "", "fox."}
	want := strings.Join(deltas, "")

	mock := testhelpers.NewUpstream(t, "m")
	a := newTestAgent(t, mock, Options{})

	mock.ReplyWith(want, 5)
	reply, err := a.Chat(context.Background(), userMessages("go"))
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	mock.StreamWith(deltas, 5)
	stream, err := a.ChatStream(context.Background(), userMessages("go"))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	defer stream.Close()

	var b strings.Builder
	for stream.Next() {
		b.WriteString(stream.Content())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream: %v", err)
	}

	if b.String() != reply.Content {
		t.Errorf("stream %q != complete %q", b.String(), reply.Content)
	}
}

func TestStream_CloseIdempotent(t *testing.T) {
	mock := testhelpers.NewUpstream(t, "m")
	mock.StreamWith([]string{"a"}, 1)
	a := newTestAgent(t, mock, Options{})

	stream, err := a.ChatStream(context.Background(), userMessages("hi"))
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestWithSystemPrompt(t *testing.T) {
	tests := []struct {
		name     string
		messages []providers.Message
		wantLen  int
	}{
		{name: "empty", messages: nil, wantLen: 1},
		{name: "user only", messages: userMessages("a"), wantLen: 2},
		{
			name:     "already prefixed",
			messages: []providers.Message{{Role: providers.RoleSystem, Content: SystemPrompt}},
			wantLen:  2,
		},
		{
			name:     "different system prompt",
			messages: []providers.Message{{Role: providers.RoleSystem, Content: "be terse"}},
			wantLen:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := withSystemPrompt(tt.messages)
			if len(got) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Content != SystemPrompt {
				t.Errorf("first message = %+v", got[0])
			}
		})
	}
}
