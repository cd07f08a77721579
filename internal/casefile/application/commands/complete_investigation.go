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

// CompleteInvestigationCommand moves a case from UNDER_INVESTIGATION to
// INVESTIGATION_COMPLETED. Only the assigned officer may complete.
type CompleteInvestigationCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// CompleteInvestigationHandler handles the CompleteInvestigationCommand.
type CompleteInvestigationHandler struct {
	engine    *services.Engine
	recorder  audit.Recorder
	caseCache cache.CaseCache
	uow       sharedApplication.UnitOfWork
}

// NewCompleteInvestigationHandler creates a new CompleteInvestigationHandler.
func NewCompleteInvestigationHandler(engine *services.Engine, recorder audit.Recorder, caseCache cache.CaseCache, uow sharedApplication.UnitOfWork) *CompleteInvestigationHandler {
	return &CompleteInvestigationHandler{engine: engine, recorder: recorder, caseCache: caseCache, uow: uow}
}

// Handle executes the CompleteInvestigationCommand.
func (h *CompleteInvestigationHandler) Handle(ctx context.Context, cmd CompleteInvestigationCommand) (lifecycle.State, error) {
	return applyTransition(ctx, h.uow, h.engine, h.recorder, h.caseCache, lifecycle.Request{
		CaseID:            cmd.CaseID,
		FromStateExpected: cmd.FromStateExpected,
		ToState:           lifecycle.StateInvestigationCompleted,
		Actor:             cmd.Actor,
		Reason:            cmd.Reason,
	}, "COMPLETE_INVESTIGATION")
}
