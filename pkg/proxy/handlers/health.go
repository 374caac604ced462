package handlers

import (
	"log/slog"
	"net/http"

	"github.com/personal-assistant/interpreter/pkg/proxy"
	"github.com/personal-assistant/interpreter/pkg/proxy/types"
)

// HealthHandler serves GET /v1/health from the last scheduled probe. Before
// the first probe completes the service reports healthy, since the model was
// already resolved at startup.
type HealthHandler struct {
	Agent  ChatAgent
	Health HealthSource
}

// NewHealthHandler creates a new health handler. source may be nil.
func NewHealthHandler(a ChatAgent, source HealthSource) *HealthHandler {
	return &HealthHandler{Agent: a, Health: source}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r, http.MethodGet)
		return
	}

	resp := types.HealthResponse{
		Status: types.StatusHealthy,
		Model:  h.Agent.Model(),
	}
	statusCode := http.StatusOK

	if h.Health != nil {
		if last, ok := h.Health.Last(); ok && !last.Healthy {
			resp.Status = types.StatusUnhealthy
			resp.Error = last.Error()
			statusCode = http.StatusServiceUnavailable
		}
	}

	if err := proxy.WriteJSONResponse(w, statusCode, resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write health response", "error", err)
	}
}

// ModelInfoHandler serves GET /v1/model-info.
type ModelInfoHandler struct {
	Agent ChatAgent
}

// NewModelInfoHandler creates a new model info handler.
func NewModelInfoHandler(a ChatAgent) *ModelInfoHandler {
	return &ModelInfoHandler{Agent: a}
}

// ServeHTTP implements http.Handler.
func (h *ModelInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r, http.MethodGet)
		return
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, h.Agent.ModelInfo()); err != nil {
		slog.ErrorContext(r.Context(), "failed to write model info", "error", err)
	}
}
