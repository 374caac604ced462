package handlers

import (
	"log/slog"
	"net/http"

	"github.com/personal-assistant/interpreter/pkg/proxy"
	"github.com/personal-assistant/interpreter/pkg/proxy/types"
)

const (
	// ServiceName is reported by GET /.
	ServiceName = "Agent Interpreter API"

	// APIVersion is the version prefix of the chat routes.
	APIVersion = "v1"
)

// RootHandler serves GET / with the list of available endpoints.
type RootHandler struct {
	Endpoints []types.Endpoint
}

// NewRootHandler creates a root handler listing endpoints.
func NewRootHandler(endpoints []types.Endpoint) *RootHandler {
	return &RootHandler{Endpoints: endpoints}
}

// ServeHTTP implements http.Handler.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		resp := types.NewErrorResponse("Not Found")
		if err := proxy.WriteErrorResponse(w, http.StatusNotFound, resp); err != nil {
			slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
		}
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, r, http.MethodGet)
		return
	}

	endpoints := h.Endpoints
	if endpoints == nil {
		endpoints = []types.Endpoint{}
	}
	resp := types.RootResponse{
		Message:            ServiceName,
		Version:            APIVersion,
		AvailableEndpoints: endpoints,
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to write root response", "error", err)
	}
}
