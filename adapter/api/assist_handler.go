package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/casetrack/casetrack/internal/aiassist"
)

// AssistHandler proxies search and drafting requests to the assist service.
type AssistHandler struct {
	client *aiassist.Client
	logger *slog.Logger
}

// NewAssistHandler creates a new assist handler.
func NewAssistHandler(client *aiassist.Client, logger *slog.Logger) *AssistHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistHandler{client: client, logger: logger}
}

type searchRequest struct {
	Query string `json:"query"`
}

// Search handles POST /api/v1/assist/search
func (h *AssistHandler) Search(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusUnprocessableEntity, "query cannot be empty")
		return
	}

	results, err := h.client.Search(r.Context(), req.Query)
	if err != nil {
		h.respondAssistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

type draftRequest struct {
	DocumentType string `json:"document_type"`
	Instructions string `json:"instructions"`
}

// Draft handles POST /api/v1/assist/draft
func (h *AssistHandler) Draft(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DocumentType == "" {
		writeError(w, http.StatusUnprocessableEntity, "document type cannot be empty")
		return
	}

	draft, err := h.client.Draft(r.Context(), req.DocumentType, req.Instructions)
	if err != nil {
		h.respondAssistError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"draft": draft})
}

func (h *AssistHandler) respondAssistError(w http.ResponseWriter, err error) {
	if errors.Is(err, aiassist.ErrUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "assist service is unavailable")
		return
	}
	h.logger.Error("assist request failed", "error", err)
	writeError(w, http.StatusBadGateway, "assist request failed")
}
