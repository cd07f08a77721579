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

// StartInvestigationCommand moves a case from CASE_ASSIGNED to
// UNDER_INVESTIGATION. The assigned officer starts their own case; an SHO may
// start it for any officer.
type StartInvestigationCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// StartInvestigationHandler handles the StartInvestigationCommand.
type StartInvestigationHandler struct {
	engine    *services.Engine
	recorder  audit.Recorder
	caseCache cache.CaseCache
	uow       sharedApplication.UnitOfWork
}

// NewStartInvestigationHandler creates a new StartInvestigationHandler.
func NewStartInvestigationHandler(engine *services.Engine, recorder audit.Recorder, caseCache cache.CaseCache, uow sharedApplication.UnitOfWork) *StartInvestigationHandler {
	return &StartInvestigationHandler{engine: engine, recorder: recorder, caseCache: caseCache, uow: uow}
}

// Handle executes the StartInvestigationCommand.
func (h *StartInvestigationHandler) Handle(ctx context.Context, cmd StartInvestigationCommand) (lifecycle.State, error) {
	return applyTransition(ctx, h.uow, h.engine, h.recorder, h.caseCache, lifecycle.Request{
		CaseID:            cmd.CaseID,
		FromStateExpected: cmd.FromStateExpected,
		ToState:           lifecycle.StateUnderInvestigation,
		Actor:             cmd.Actor,
		Reason:            cmd.Reason,
	}, "START_INVESTIGATION")
}
