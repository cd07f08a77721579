package api

import (
	"log/slog"
	"net/http"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/court/application/commands"
	"github.com/casetrack/casetrack/internal/court/application/queries"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	"github.com/google/uuid"
)

// CourtHandler handles court submission and court action requests.
type CourtHandler struct {
	submit           *commands.SubmitToCourtHandler
	resubmit         *commands.ResubmitHandler
	intake           *commands.IntakeSubmissionHandler
	returnForDefects *commands.ReturnForDefectsHandler
	recordAction     *commands.RecordCourtActionHandler

	caseSubmissions *queries.CaseSubmissionsHandler
	caseActions     *queries.CaseActionsHandler

	logger *slog.Logger
}

// CourtHandlerConfig holds dependencies for the court handler.
type CourtHandlerConfig struct {
	Submit           *commands.SubmitToCourtHandler
	Resubmit         *commands.ResubmitHandler
	Intake           *commands.IntakeSubmissionHandler
	ReturnForDefects *commands.ReturnForDefectsHandler
	RecordAction     *commands.RecordCourtActionHandler
	CaseSubmissions  *queries.CaseSubmissionsHandler
	CaseActions      *queries.CaseActionsHandler
	Logger           *slog.Logger
}

// NewCourtHandler creates a new court handler.
func NewCourtHandler(cfg CourtHandlerConfig) *CourtHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CourtHandler{
		submit:           cfg.Submit,
		resubmit:         cfg.Resubmit,
		intake:           cfg.Intake,
		returnForDefects: cfg.ReturnForDefects,
		recordAction:     cfg.RecordAction,
		caseSubmissions:  cfg.CaseSubmissions,
		caseActions:      cfg.CaseActions,
		logger:           cfg.Logger,
	}
}

type submitRequest struct {
	FromStateExpected string    `json:"from_state_expected"`
	CourtID           uuid.UUID `json:"court_id"`
	Reason            string    `json:"reason"`
}

// Submit handles POST /api/v1/cases/{caseID}/submissions
func (h *CourtHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := lifecycle.ParseState(req.FromStateExpected)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.submit.Handle(r.Context(), commands.SubmitToCourtCommand{
		CaseID:            caseID,
		FromStateExpected: from,
		CourtID:           req.CourtID,
		Actor:             actor,
		Reason:            req.Reason,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Resubmit handles POST /api/v1/cases/{caseID}/submissions/resubmit
func (h *CourtHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := lifecycle.ParseState(req.FromStateExpected)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.resubmit.Handle(r.Context(), commands.ResubmitCommand{
		CaseID:            caseID,
		FromStateExpected: from,
		CourtID:           req.CourtID,
		Actor:             actor,
		Reason:            req.Reason,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type intakeRequest struct {
	FromStateExpected     string `json:"from_state_expected"`
	AcknowledgementNumber string `json:"acknowledgement_number"`
}

// Intake handles POST /api/v1/cases/{caseID}/submissions/intake
func (h *CourtHandler) Intake(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req intakeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := lifecycle.ParseState(req.FromStateExpected)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.intake.Handle(r.Context(), commands.IntakeSubmissionCommand{
		CaseID:                caseID,
		FromStateExpected:     from,
		Actor:                 actor,
		AcknowledgementNumber: req.AcknowledgementNumber,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ReturnForDefects handles POST /api/v1/cases/{caseID}/submissions/return
func (h *CourtHandler) ReturnForDefects(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	state, err := h.returnForDefects.Handle(r.Context(), commands.ReturnForDefectsCommand{
		CaseID:            caseID,
		FromStateExpected: from,
		Actor:             actor,
		Reason:            reason,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, transitionResponse{State: state.String()})
}

type recordActionRequest struct {
	FromStateExpected string `json:"from_state_expected"`
	ActionType        string `json:"action_type"`
	Note              string `json:"note"`
}

// RecordAction handles POST /api/v1/cases/{caseID}/court-actions
func (h *CourtHandler) RecordAction(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req recordActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := lifecycle.ParseState(req.FromStateExpected)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	actionType, err := courtDomain.ParseActionType(req.ActionType)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.recordAction.Handle(r.Context(), commands.RecordCourtActionCommand{
		CaseID:            caseID,
		FromStateExpected: from,
		ActionType:        actionType,
		Note:              req.Note,
		Actor:             actor,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListSubmissions handles GET /api/v1/cases/{caseID}/submissions
func (h *CourtHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	submissions, err := h.caseSubmissions.Handle(r.Context(), queries.CaseSubmissionsQuery{CaseID: caseID})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": submissions})
}

// ListActions handles GET /api/v1/cases/{caseID}/court-actions
func (h *CourtHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	actions, err := h.caseActions.Handle(r.Context(), queries.CaseActionsQuery{CaseID: caseID})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": actions})
}
