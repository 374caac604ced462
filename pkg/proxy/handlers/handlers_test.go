package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	testhelpers "github.com/personal-assistant/interpreter/internal/providers"
	"github.com/personal-assistant/interpreter/pkg/agent"
	"github.com/personal-assistant/interpreter/pkg/processing"
	"github.com/personal-assistant/interpreter/pkg/processing/tokens"
	"github.com/personal-assistant/interpreter/pkg/providers/openai"
	"github.com/personal-assistant/interpreter/pkg/proxy/types"
	"github.com/personal-assistant/interpreter/pkg/telemetry/health"
)

const testModel = "test-model"

type byteTokenizer struct{}

func (byteTokenizer) Count(text string) int { return len(text) }

func newTestAgent(t *testing.T, mock *testhelpers.MockServer) *agent.Agent {
	t.Helper()
	return newSummarizingAgent(t, mock, false, 4000)
}

func newSummarizingAgent(t *testing.T, mock *testhelpers.MockServer, autoSummarize bool, threshold int) *agent.Agent {
	t.Helper()

	provider, err := openai.NewProvider(testhelpers.TestConfig(mock.BaseURL()))
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Close() })

	estimator := tokens.NewEstimator(func(string) (tokens.Tokenizer, error) {
		return byteTokenizer{}, nil
	})
	a, err := agent.New(context.Background(), agent.Options{
		Provider:           provider,
		AutoSummarize:      autoSummarize,
		SummarizeThreshold: threshold,
		Processor:          processing.NewProcessor(estimator, 0),
	})
	if err != nil {
		t.Fatalf("agent.New: %v", err)
	}
	return a
}

func postChat(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// parseEvents splits a streamed body into its JSON payloads.
func parseEvents(t *testing.T, body string) []map[string]interface{} {
	t.Helper()
	var events []map[string]interface{}
	for _, block := range strings.Split(body, "\n\n") {
		if block == "" {
			continue
		}
		if !strings.HasPrefix(block, "data: ") {
			t.Fatalf("event without data prefix: %q", block)
		}
		var ev map[string]interface{}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(block, "data: ")), &ev); err != nil {
			t.Fatalf("invalid event %q: %v", block, err)
		}
		events = append(events, ev)
	}
	return events
}

func TestChatHandler_Complete(t *testing.T) {
	mock := testhelpers.NewUpstream(t, testModel)
	mock.ReplyWith("Hello there", 42)
	h := NewChatHandler(newTestAgent(t, mock))

	w := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp types.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message.Content != "Hello there" {
		t.Errorf("content = %q", resp.Message.Content)
	}
	if resp.Message.TokensUsed != 42 {
		t.Errorf("tokens_used = %d", resp.Message.TokensUsed)
	}
}

func TestChatHandler_Validation(t *testing.T) {
	mock := testhelpers.NewUpstream(t, testModel)
	mock.ReplyWith("unused", 1)
	h := NewChatHandler(newTestAgent(t, mock))

	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{
			name:       "invalid json",
			body:       `{"messages":`,
			wantDetail: "invalid JSON",
		},
		{
			name:       "missing messages",
			body:       `{"stream":false}`,
			wantDetail: "messages: field required",
		},
		{
			name:       "missing role",
			body:       `{"messages":[{"content":"hi"}]}`,
			wantDetail: "messages[0].role",
		},
		{
			name:       "missing content",
			body:       `{"messages":[{"role":"user"}]}`,
			wantDetail: "messages[0].content",
		},
		{
			name:       "wrong stream type",
			body:       `{"messages":[],"stream":"yes"}`,
			wantDetail: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postChat(t, h, tt.body)

			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", w.Code)
			}
			var resp types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(resp.Detail, tt.wantDetail) {
				t.Errorf("detail = %q, want it to contain %q", resp.Detail, tt.wantDetail)
			}
		})
	}

	if n := len(mock.Requests(testhelpers.CompletionsPath)); n != 0 {
		t.Errorf("upstream received %d completion requests", n)
	}
}

func TestChatHandler_UpstreamError(t *testing.T) {
	for _, stream := range []bool{false, true} {
		name := "complete"
		if stream {
			name = "stream"
		}
		t.Run(name, func(t *testing.T) {
			mock := testhelpers.NewUpstream(t, testModel)
			mock.SetResponse(testhelpers.CompletionsPath, testhelpers.MockServerError())
			h := NewChatHandler(newTestAgent(t, mock))

			body := `{"messages":[{"role":"user","content":"hi"}],"stream":false}`
			if stream {
				body = `{"messages":[{"role":"user","content":"hi"}],"stream":true}`
			}
			w := postChat(t, h, body)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500", w.Code)
			}
			var resp types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.HasPrefix(resp.Detail, "Chat processing error: ") {
				t.Errorf("detail = %q", resp.Detail)
			}
		})
	}
}

func TestChatHandler_SummarizationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "complete", body: `{"messages":[{"role":"user","content":"hi"}],"stream":false}`},
		{name: "stream", body: `{"messages":[{"role":"user","content":"hi"}],"stream":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewUpstream(t, testModel)
			mock.SetResponse(testhelpers.CompletionsPath, testhelpers.MockServerError())
			h := NewChatHandler(newSummarizingAgent(t, mock, true, 1))

			w := postChat(t, h, tt.body)

			if w.Code != http.StatusInternalServerError {
				t.Fatalf("status = %d, want 500, body = %s", w.Code, w.Body.String())
			}
			var resp types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if want := "Chat processing error: summarize conversation:"; !strings.HasPrefix(resp.Detail, want) {
				t.Errorf("detail = %q, want prefix %q", resp.Detail, want)
			}
			if n := len(mock.Requests(testhelpers.CompletionsPath)); n != 1 {
				t.Errorf("upstream received %d completion requests, want 1", n)
			}
		})
	}
}

func TestChatHandler_Stream(t *testing.T) {
	tests := []struct {
		name        string
		deltas      []string
		totalTokens int
		wantUsage   bool
	}{
		{
			name:        "with usage",
			deltas:      []string{"Hel", "lo", "!"},
			totalTokens: 17,
			wantUsage:   true,
		},
		{
			name:   "without usage",
			deltas: []string{"Hi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testhelpers.NewUpstream(t, testModel)
			mock.StreamWith(tt.deltas, tt.totalTokens)
			h := NewChatHandler(newTestAgent(t, mock))

			w := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}],"stream":true}`)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
				t.Errorf("Content-Type = %q", ct)
			}

			events := parseEvents(t, w.Body.String())
			var text strings.Builder
			i := 0
			for ; i < len(tt.deltas); i++ {
				text.WriteString(events[i]["content"].(string))
			}
			if text.String() != strings.Join(tt.deltas, "") {
				t.Errorf("streamed content = %q", text.String())
			}

			if tt.wantUsage {
				if got := events[i]["tokens_used"]; got != float64(tt.totalTokens) {
					t.Errorf("tokens_used = %v, want %d", got, tt.totalTokens)
				}
				i++
			}

			if len(events) != i+1 {
				t.Fatalf("got %d events, want %d", len(events), i+1)
			}
			if events[i]["content"] != types.DoneMarker {
				t.Errorf("last event = %v", events[i])
			}
		})
	}
}

func TestChatHandler_StreamMatchesComplete(t *testing.T) {
	deltas := []string{"The ", "answer ", "is 4."}

	mock := testhelpers.NewUpstream(t, testModel)
	h := NewChatHandler(newTestAgent(t, mock))
	body := `{"messages":[{"role":"user","content":"2+2?"}],"stream":%s}`

	mock.StreamWith(deltas, 9)
	streamed := postChat(t, h, strings.Replace(body, "%s", "true", 1))
	var text strings.Builder
	for _, ev := range parseEvents(t, streamed.Body.String()) {
		if c, ok := ev["content"].(string); ok && c != types.DoneMarker {
			text.WriteString(c)
		}
	}

	mock.ReplyWith(strings.Join(deltas, ""), 9)
	completed := postChat(t, h, strings.Replace(body, "%s", "false", 1))
	var resp types.ChatResponse
	if err := json.Unmarshal(completed.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if text.String() != resp.Message.Content {
		t.Errorf("streamed %q, completed %q", text.String(), resp.Message.Content)
	}
}

func TestChatHandler_MidStreamError(t *testing.T) {
	mock := testhelpers.NewUpstream(t, testModel)
	mock.SetResponse(testhelpers.CompletionsPath, testhelpers.MockResponse{
		StatusCode: http.StatusOK,
		StreamChunks: []string{
			testhelpers.MockOpenAIStreamChunk("partial", ""),
			`{not json`,
		},
	})
	h := NewChatHandler(newTestAgent(t, mock))

	w := postChat(t, h, `{"messages":[{"role":"user","content":"hi"}],"stream":true}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 once streaming started", w.Code)
	}
	events := parseEvents(t, w.Body.String())
	if len(events) != 2 {
		t.Fatalf("got %d events: %s", len(events), w.Body.String())
	}
	if events[0]["content"] != "partial" {
		t.Errorf("first event = %v", events[0])
	}
	msg, ok := events[1]["error"].(string)
	if !ok || !strings.HasPrefix(msg, "Chat processing error: ") {
		t.Errorf("last event = %v", events[1])
	}
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	mock := testhelpers.NewUpstream(t, testModel)
	h := NewChatHandler(newTestAgent(t, mock))

	req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
	if allow := w.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow = %q", allow)
	}
}

type staticHealth struct {
	status health.HealthStatus
	ok     bool
}

func (s staticHealth) Last() (health.HealthStatus, bool) { return s.status, s.ok }

func TestHealthHandler(t *testing.T) {
	mock := testhelpers.NewUpstream(t, testModel)
	a := newTestAgent(t, mock)

	failed := health.HealthStatus{
		Healthy: false,
		Checks: map[string]health.CheckResult{
			"upstream": {Status: health.StatusUnhealthy, Message: "connection refused"},
		},
		Timestamp: time.Now(),
	}

	tests := []struct {
		name       string
		source     HealthSource
		wantCode   int
		wantStatus string
		wantError  string
	}{
		{
			name:       "no probe configured",
			source:     nil,
			wantCode:   http.StatusOK,
			wantStatus: types.StatusHealthy,
		},
		{
			name:       "probe not run yet",
			source:     staticHealth{},
			wantCode:   http.StatusOK,
			wantStatus: types.StatusHealthy,
		},
		{
			name:       "probe healthy",
			source:     staticHealth{status: health.HealthStatus{Healthy: true}, ok: true},
			wantCode:   http.StatusOK,
			wantStatus: types.StatusHealthy,
		},
		{
			name:       "probe failed",
			source:     staticHealth{status: failed, ok: true},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: types.StatusUnhealthy,
			wantError:  "upstream: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(a, tt.source)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var resp types.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status field = %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.Model != testModel {
				t.Errorf("model = %q", resp.Model)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestHealthHandler_ScheduledProbe(t *testing.T) {
	mock := testhelpers.NewUpstream(t, testModel)
	a := newTestAgent(t, mock)

	checker := health.New(time.Second)
	checker.RegisterCheck("upstream", func(ctx context.Context) error {
		return errors.New("model server unreachable")
	})
	checker.Check(context.Background())

	w := httptest.NewRecorder()
	NewHealthHandler(a, checker).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "model server unreachable") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestModelInfoHandler(t *testing.T) {
	mock := testhelpers.NewUpstream(t, testModel)
	h := NewModelInfoHandler(newTestAgent(t, mock))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/model-info", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["model_id"] != testModel {
		t.Errorf("model_id = %v", resp["model_id"])
	}
	if resp["auto_summarize"] != false {
		t.Errorf("auto_summarize = %v", resp["auto_summarize"])
	}
	if resp["summarize_threshold_tokens"] != float64(4000) {
		t.Errorf("summarize_threshold_tokens = %v", resp["summarize_threshold_tokens"])
	}
	if v, ok := resp["max_tokens"]; !ok || v != nil {
		t.Errorf("max_tokens = %v, present %v; want null", v, ok)
	}
}

func TestRootHandler(t *testing.T) {
	endpoints := []types.Endpoint{
		{Path: "/v1/chat", Methods: []string{"POST"}, Name: "chat"},
		{Path: "/v1/health", Methods: []string{"GET"}, Name: "health"},
	}
	h := NewRootHandler(endpoints)

	t.Run("root", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp types.RootResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Message != "Agent Interpreter API" || resp.Version != "v1" {
			t.Errorf("resp = %+v", resp)
		}
		if len(resp.AvailableEndpoints) != 2 || resp.AvailableEndpoints[0].Path != "/v1/chat" {
			t.Errorf("endpoints = %+v", resp.AvailableEndpoints)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}
