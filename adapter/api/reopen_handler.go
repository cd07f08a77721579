package api

import (
	"log/slog"
	"net/http"

	"github.com/casetrack/casetrack/internal/reopen/application/commands"
	"github.com/casetrack/casetrack/internal/reopen/application/queries"
)

// ReopenHandler handles reopen request endpoints.
type ReopenHandler struct {
	request      *commands.RequestReopenHandler
	approve      *commands.ApproveReopenHandler
	reject       *commands.RejectReopenHandler
	caseRequests *queries.CaseRequestsHandler
	logger       *slog.Logger
}

// NewReopenHandler creates a new reopen handler.
func NewReopenHandler(
	request *commands.RequestReopenHandler,
	approve *commands.ApproveReopenHandler,
	reject *commands.RejectReopenHandler,
	caseRequests *queries.CaseRequestsHandler,
	logger *slog.Logger,
) *ReopenHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReopenHandler{
		request:      request,
		approve:      approve,
		reject:       reject,
		caseRequests: caseRequests,
		logger:       logger,
	}
}

type requestReopenRequest struct {
	PoliceReason string `json:"police_reason"`
}

// Request handles POST /api/v1/cases/{caseID}/reopen-requests
func (h *ReopenHandler) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req requestReopenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.request.Handle(r.Context(), commands.RequestReopenCommand{
		CaseID:       caseID,
		Actor:        actor,
		PoliceReason: req.PoliceReason,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type decideReopenRequest struct {
	JudgeNote string `json:"judge_note"`
}

// Approve handles POST /api/v1/reopen-requests/{requestID}/approve
func (h *ReopenHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req decideReopenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.approve.Handle(r.Context(), commands.ApproveReopenCommand{
		RequestID: requestID,
		Actor:     actor,
		JudgeNote: req.JudgeNote,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Reject handles POST /api/v1/reopen-requests/{requestID}/reject
func (h *ReopenHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req decideReopenRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.reject.Handle(r.Context(), commands.RejectReopenCommand{
		RequestID: requestID,
		Actor:     actor,
		JudgeNote: req.JudgeNote,
	}); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "REJECTED"})
}

// ListRequests handles GET /api/v1/cases/{caseID}/reopen-requests
func (h *ReopenHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	requests, err := h.caseRequests.Handle(r.Context(), queries.CaseRequestsQuery{CaseID: caseID})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}
