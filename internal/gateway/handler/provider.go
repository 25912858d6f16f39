package handler

import (
	"context"
	"net/http"
	"strings"

	"agentui/internal/upstream"
)

type ProviderAPI interface {
	CurrentProvider(ctx context.Context) (*upstream.ProviderResponse, error)
	SetProvider(ctx context.Context, in upstream.ProviderRequest) (*upstream.ProviderResponse, error)
}

// ProviderHandler exposes the LLM provider settings and the supervisor list.
type ProviderHandler struct {
	api ProviderAPI
}

func NewProviderHandler(api ProviderAPI) *ProviderHandler {
	return &ProviderHandler{api: api}
}

func (h *ProviderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	out, err := h.api.CurrentProvider(r.Context())
	if err != nil {
		writeServiceError(w, "provider get", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProviderHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var in upstream.ProviderRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(in.Provider) == "" {
		writeError(w, http.StatusBadRequest, "provider is required")
		return
	}
	out, err := h.api.SetProvider(r.Context(), in)
	if err != nil {
		writeServiceError(w, "provider set", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProviderHandler) HandleSupervisors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":     upstream.DefaultSupervisor,
		"supervisors": upstream.Supervisors(),
	})
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
