package commands

import (
	"context"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// ResumeInvestigationCommand moves a case from INVESTIGATION_PAUSED back to
// UNDER_INVESTIGATION.
type ResumeInvestigationCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// ResumeInvestigationHandler handles the ResumeInvestigationCommand.
type ResumeInvestigationHandler struct {
	engine    *services.Engine
	recorder  audit.Recorder
	caseCache cache.CaseCache
	uow       sharedApplication.UnitOfWork
}

// NewResumeInvestigationHandler creates a new ResumeInvestigationHandler.
func NewResumeInvestigationHandler(engine *services.Engine, recorder audit.Recorder, caseCache cache.CaseCache, uow sharedApplication.UnitOfWork) *ResumeInvestigationHandler {
	return &ResumeInvestigationHandler{engine: engine, recorder: recorder, caseCache: caseCache, uow: uow}
}

// Handle executes the ResumeInvestigationCommand.
func (h *ResumeInvestigationHandler) Handle(ctx context.Context, cmd ResumeInvestigationCommand) (lifecycle.State, error) {
	return applyTransition(ctx, h.uow, h.engine, h.recorder, h.caseCache, lifecycle.Request{
		CaseID:            cmd.CaseID,
		FromStateExpected: cmd.FromStateExpected,
		ToState:           lifecycle.StateUnderInvestigation,
		Actor:             cmd.Actor,
		Reason:            cmd.Reason,
	}, "RESUME_INVESTIGATION")
}
