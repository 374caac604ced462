package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/personal-assistant/interpreter/pkg/proxy"
	"github.com/personal-assistant/interpreter/pkg/proxy/middleware"
	"github.com/personal-assistant/interpreter/pkg/proxy/types"
)

// ChatHandler serves POST /v1/chat.
type ChatHandler struct {
	Agent ChatAgent
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(a ChatAgent) *ChatHandler {
	return &ChatHandler{Agent: a}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, r, http.MethodPost)
		return
	}

	chatReq, err := proxy.ParseChatRequest(r)
	if err != nil {
		slog.WarnContext(ctx, "invalid chat request",
			"request_id", requestID,
			"error", err,
		)
		writeError(w, r, err)
		return
	}

	md := proxy.ExtractRequestMetadata(r, requestID, chatReq)
	slog.InfoContext(ctx, "processing chat request", md.LogAttrs()...)

	if chatReq.Stream {
		h.serveStream(w, r, chatReq, md)
		return
	}
	h.serveComplete(w, r, chatReq, md)
}

func (h *ChatHandler) serveComplete(w http.ResponseWriter, r *http.Request, chatReq *types.ChatRequest, md *proxy.RequestMetadata) {
	ctx := r.Context()

	reply, err := h.Agent.Chat(ctx, chatReq.ProviderMessages())
	if err != nil {
		slog.ErrorContext(ctx, "chat failed",
			"request_id", md.RequestID,
			"model", h.Agent.Model(),
			"error", err,
		)
		writeError(w, r, err)
		return
	}

	slog.InfoContext(ctx, "chat completed",
		"request_id", md.RequestID,
		"model", h.Agent.Model(),
		"tokens_used", reply.TokensUsed,
		"latency_ms", time.Since(md.Timestamp).Milliseconds(),
	)

	resp := types.ChatResponse{
		Message: types.MessageResponse{
			Content:    reply.Content,
			TokensUsed: reply.TokensUsed,
		},
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(ctx, "failed to write response",
			"request_id", md.RequestID,
			"error", err,
		)
	}
}

func (h *ChatHandler) serveStream(w http.ResponseWriter, r *http.Request, chatReq *types.ChatRequest, md *proxy.RequestMetadata) {
	ctx := r.Context()

	// Summarization and the upstream request happen here, so failures can
	// still be reported with a status code.
	stream, err := h.Agent.ChatStream(ctx, chatReq.ProviderMessages())
	if err != nil {
		slog.ErrorContext(ctx, "streaming chat failed",
			"request_id", md.RequestID,
			"model", h.Agent.Model(),
			"error", err,
		)
		writeError(w, r, err)
		return
	}
	defer stream.Close()

	proxy.SetStreamHeaders(w)
	w.WriteHeader(http.StatusOK)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	var firstDelta time.Time
	deltas := 0
	for stream.Next() {
		if deltas == 0 {
			firstDelta = time.Now()
		}
		deltas++

		if err := proxy.WriteSSEContent(w, stream.Content()); err != nil {
			slog.WarnContext(ctx, "client disconnected during streaming",
				"request_id", md.RequestID,
				"deltas_sent", deltas,
				"error", err,
			)
			return
		}
	}

	if err := stream.Err(); err != nil {
		slog.ErrorContext(ctx, "error during streaming",
			"request_id", md.RequestID,
			"model", h.Agent.Model(),
			"deltas_sent", deltas,
			"error", err,
		)
		if err := proxy.WriteSSEError(w, proxy.StreamErrorEvent(err)); err != nil {
			slog.ErrorContext(ctx, "failed to write stream error", "error", err)
		}
		return
	}

	if err := proxy.WriteSSEUsage(w, stream.TokensUsed()); err != nil {
		slog.ErrorContext(ctx, "failed to write usage event", "error", err)
		return
	}
	if err := proxy.WriteSSEDone(w); err != nil {
		slog.ErrorContext(ctx, "failed to write done marker", "error", err)
		return
	}

	var firstDeltaLatency time.Duration
	if !firstDelta.IsZero() {
		firstDeltaLatency = firstDelta.Sub(md.Timestamp)
	}
	slog.InfoContext(ctx, "streaming chat completed",
		"request_id", md.RequestID,
		"model", h.Agent.Model(),
		"deltas_sent", deltas,
		"tokens_used", stream.TokensUsed(),
		"first_delta_latency_ms", firstDeltaLatency.Milliseconds(),
		"total_latency_ms", time.Since(md.Timestamp).Milliseconds(),
	)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errResp := proxy.HandleError(err)
	if err := proxy.WriteErrorResponse(w, status, errResp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}

func writeMethodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	resp := types.NewErrorResponse("Method Not Allowed")
	if err := proxy.WriteErrorResponse(w, http.StatusMethodNotAllowed, resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}
