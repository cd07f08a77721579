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

// PauseInvestigationCommand moves a case from UNDER_INVESTIGATION to
// INVESTIGATION_PAUSED. Only the assigned officer may pause.
type PauseInvestigationCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// PauseInvestigationHandler handles the PauseInvestigationCommand.
type PauseInvestigationHandler struct {
	engine    *services.Engine
	recorder  audit.Recorder
	caseCache cache.CaseCache
	uow       sharedApplication.UnitOfWork
}

// NewPauseInvestigationHandler creates a new PauseInvestigationHandler.
func NewPauseInvestigationHandler(engine *services.Engine, recorder audit.Recorder, caseCache cache.CaseCache, uow sharedApplication.UnitOfWork) *PauseInvestigationHandler {
	return &PauseInvestigationHandler{engine: engine, recorder: recorder, caseCache: caseCache, uow: uow}
}

// Handle executes the PauseInvestigationCommand.
func (h *PauseInvestigationHandler) Handle(ctx context.Context, cmd PauseInvestigationCommand) (lifecycle.State, error) {
	return applyTransition(ctx, h.uow, h.engine, h.recorder, h.caseCache, lifecycle.Request{
		CaseID:            cmd.CaseID,
		FromStateExpected: cmd.FromStateExpected,
		ToState:           lifecycle.StateInvestigationPaused,
		Actor:             cmd.Actor,
		Reason:            cmd.Reason,
	}, "PAUSE_INVESTIGATION")
}
