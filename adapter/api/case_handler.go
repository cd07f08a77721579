package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/application/commands"
	"github.com/casetrack/casetrack/internal/casefile/application/queries"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// CaseHandler handles FIR registration and case lifecycle requests.
type CaseHandler struct {
	registerFIR           *commands.RegisterFIRHandler
	assignCase            *commands.AssignCaseHandler
	startInvestigation    *commands.StartInvestigationHandler
	pauseInvestigation    *commands.PauseInvestigationHandler
	resumeInvestigation   *commands.ResumeInvestigationHandler
	completeInvestigation *commands.CompleteInvestigationHandler
	prepareChargeSheet    *commands.PrepareChargeSheetHandler
	prepareClosureReport  *commands.PrepareClosureReportHandler
	archiveCase           *commands.ArchiveCaseHandler

	getCase        *queries.GetCaseHandler
	listCases      *queries.ListCasesHandler
	myCases        *queries.MyCasesHandler
	stateHistory   *queries.StateHistoryHandler
	allowedActions *queries.AllowedActionsHandler

	logger *slog.Logger
}

// CaseHandlerConfig holds dependencies for the case handler.
type CaseHandlerConfig struct {
	RegisterFIR           *commands.RegisterFIRHandler
	AssignCase            *commands.AssignCaseHandler
	StartInvestigation    *commands.StartInvestigationHandler
	PauseInvestigation    *commands.PauseInvestigationHandler
	ResumeInvestigation   *commands.ResumeInvestigationHandler
	CompleteInvestigation *commands.CompleteInvestigationHandler
	PrepareChargeSheet    *commands.PrepareChargeSheetHandler
	PrepareClosureReport  *commands.PrepareClosureReportHandler
	ArchiveCase           *commands.ArchiveCaseHandler
	GetCase               *queries.GetCaseHandler
	ListCases             *queries.ListCasesHandler
	MyCases               *queries.MyCasesHandler
	StateHistory          *queries.StateHistoryHandler
	AllowedActions        *queries.AllowedActionsHandler
	Logger                *slog.Logger
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(cfg CaseHandlerConfig) *CaseHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CaseHandler{
		registerFIR:           cfg.RegisterFIR,
		assignCase:            cfg.AssignCase,
		startInvestigation:    cfg.StartInvestigation,
		pauseInvestigation:    cfg.PauseInvestigation,
		resumeInvestigation:   cfg.ResumeInvestigation,
		completeInvestigation: cfg.CompleteInvestigation,
		prepareChargeSheet:    cfg.PrepareChargeSheet,
		prepareClosureReport:  cfg.PrepareClosureReport,
		archiveCase:           cfg.ArchiveCase,
		getCase:               cfg.GetCase,
		listCases:             cfg.ListCases,
		myCases:               cfg.MyCases,
		stateHistory:          cfg.StateHistory,
		allowedActions:        cfg.AllowedActions,
		logger:                cfg.Logger,
	}
}

type registerFIRRequest struct {
	FIRNumber       string    `json:"fir_number"`
	ComplainantName string    `json:"complainant_name"`
	ComplainantTel  string    `json:"complainant_tel"`
	IncidentDate    time.Time `json:"incident_date"`
	Description     string    `json:"description"`
	SectionsApplied []string  `json:"sections_applied"`
	DocumentURL     string    `json:"document_url"`
}

// RegisterFIR handles POST /api/v1/firs
func (h *CaseHandler) RegisterFIR(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if actor.Role != lifecycle.RolePolice && actor.Role != lifecycle.RoleSHO {
		writeError(w, http.StatusForbidden, "only police station staff may register a FIR")
		return
	}

	var req registerFIRRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.registerFIR.Handle(r.Context(), commands.RegisterFIRCommand{
		PoliceStationID: actor.OrganizationID,
		RegisteredBy:    actor.ID,
		FIRNumber:       req.FIRNumber,
		ComplainantName: req.ComplainantName,
		ComplainantTel:  req.ComplainantTel,
		IncidentDate:    req.IncidentDate,
		Description:     req.Description,
		SectionsApplied: req.SectionsApplied,
		DocumentURL:     req.DocumentURL,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// transitionRequest is the common body for lifecycle transitions.
type transitionRequest struct {
	FromStateExpected string `json:"from_state_expected"`
	Reason            string `json:"reason"`
}

// decodeTransition parses the case id and common transition body.
func decodeTransition(w http.ResponseWriter, r *http.Request) (uuid.UUID, lifecycle.State, string, bool) {
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return uuid.Nil, "", "", false
	}
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return uuid.Nil, "", "", false
	}
	from, err := lifecycle.ParseState(req.FromStateExpected)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return uuid.Nil, "", "", false
	}
	return caseID, from, req.Reason, true
}

type assignCaseRequest struct {
	FromStateExpected string    `json:"from_state_expected"`
	AssignedTo        uuid.UUID `json:"assigned_to"`
	Reason            string    `json:"reason"`
}

// AssignCase handles POST /api/v1/cases/{caseID}/assign
func (h *CaseHandler) AssignCase(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req assignCaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	from, err := lifecycle.ParseState(req.FromStateExpected)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.assignCase.Handle(r.Context(), commands.AssignCaseCommand{
		CaseID:            caseID,
		FromStateExpected: from,
		AssignedTo:        req.AssignedTo,
		Actor:             actor,
		Reason:            req.Reason,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type transitionResponse struct {
	State string `json:"state"`
}

// StartInvestigation handles POST /api/v1/cases/{caseID}/investigation/start
func (h *CaseHandler) StartInvestigation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	state, err := h.startInvestigation.Handle(r.Context(), commands.StartInvestigationCommand{
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

// PauseInvestigation handles POST /api/v1/cases/{caseID}/investigation/pause
func (h *CaseHandler) PauseInvestigation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	state, err := h.pauseInvestigation.Handle(r.Context(), commands.PauseInvestigationCommand{
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

// ResumeInvestigation handles POST /api/v1/cases/{caseID}/investigation/resume
func (h *CaseHandler) ResumeInvestigation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	state, err := h.resumeInvestigation.Handle(r.Context(), commands.ResumeInvestigationCommand{
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

// CompleteInvestigation handles POST /api/v1/cases/{caseID}/investigation/complete
func (h *CaseHandler) CompleteInvestigation(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	state, err := h.completeInvestigation.Handle(r.Context(), commands.CompleteInvestigationCommand{
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

// PrepareChargeSheet handles POST /api/v1/cases/{caseID}/charge-sheet
func (h *CaseHandler) PrepareChargeSheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	state, err := h.prepareChargeSheet.Handle(r.Context(), commands.PrepareChargeSheetCommand{
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

// PrepareClosureReport handles POST /api/v1/cases/{caseID}/closure-report
func (h *CaseHandler) PrepareClosureReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	state, err := h.prepareClosureReport.Handle(r.Context(), commands.PrepareClosureReportCommand{
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

// ArchiveCase handles POST /api/v1/cases/{caseID}/archive
func (h *CaseHandler) ArchiveCase(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, from, reason, ok := decodeTransition(w, r)
	if !ok {
		return
	}
	result, err := h.archiveCase.Handle(r.Context(), commands.ArchiveCaseCommand{
		CaseID:            caseID,
		FromStateExpected: from,
		Actor:             actor,
		Reason:            reason,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetCase handles GET /api/v1/cases/{caseID}
func (h *CaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	detail, err := h.getCase.Handle(r.Context(), queries.GetCaseQuery{CaseID: caseID})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListCases handles GET /api/v1/cases
func (h *CaseHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	result, err := h.listCases.Handle(r.Context(), queries.ListCasesQuery{
		PoliceStationID: actor.OrganizationID,
		State:           r.URL.Query().Get("state"),
		Page: sharedApplication.Page{
			Number: parseIntParam(r, "page", 1),
			Size:   parseIntParam(r, "size", 20),
		},
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// MyCases handles GET /api/v1/cases/my
func (h *CaseHandler) MyCases(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	result, err := h.myCases.Handle(r.Context(), queries.MyCasesQuery{
		AssigneeID: actor.ID,
		Page: sharedApplication.Page{
			Number: parseIntParam(r, "page", 1),
			Size:   parseIntParam(r, "size", 20),
		},
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// StateHistory handles GET /api/v1/cases/{caseID}/history
func (h *CaseHandler) StateHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	rows, err := h.stateHistory.Handle(r.Context(), queries.StateHistoryQuery{CaseID: caseID})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": rows})
}

// AllowedActions handles GET /api/v1/cases/{caseID}/allowed-actions
func (h *CaseHandler) AllowedActions(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	result, err := h.allowedActions.Handle(r.Context(), queries.AllowedActionsQuery{
		CaseID: caseID,
		Actor:  actor,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
