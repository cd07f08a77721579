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

// PrepareClosureReportCommand moves a case from INVESTIGATION_COMPLETED to
// CLOSURE_REPORT_PREPARED. SHO decision to recommend closure.
type PrepareClosureReportCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// PrepareClosureReportHandler handles the PrepareClosureReportCommand.
type PrepareClosureReportHandler struct {
	engine    *services.Engine
	recorder  audit.Recorder
	caseCache cache.CaseCache
	uow       sharedApplication.UnitOfWork
}

// NewPrepareClosureReportHandler creates a new PrepareClosureReportHandler.
func NewPrepareClosureReportHandler(engine *services.Engine, recorder audit.Recorder, caseCache cache.CaseCache, uow sharedApplication.UnitOfWork) *PrepareClosureReportHandler {
	return &PrepareClosureReportHandler{engine: engine, recorder: recorder, caseCache: caseCache, uow: uow}
}

// Handle executes the PrepareClosureReportCommand.
func (h *PrepareClosureReportHandler) Handle(ctx context.Context, cmd PrepareClosureReportCommand) (lifecycle.State, error) {
	return applyTransition(ctx, h.uow, h.engine, h.recorder, h.caseCache, lifecycle.Request{
		CaseID:            cmd.CaseID,
		FromStateExpected: cmd.FromStateExpected,
		ToState:           lifecycle.StateClosureReportPrepared,
		Actor:             cmd.Actor,
		Reason:            cmd.Reason,
	}, "PREPARE_CLOSURE_REPORT")
}
