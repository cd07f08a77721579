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

// PrepareChargeSheetCommand moves a case from INVESTIGATION_COMPLETED to
// CHARGE_SHEET_PREPARED. SHO decision to prosecute.
type PrepareChargeSheetCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// PrepareChargeSheetHandler handles the PrepareChargeSheetCommand.
type PrepareChargeSheetHandler struct {
	engine    *services.Engine
	recorder  audit.Recorder
	caseCache cache.CaseCache
	uow       sharedApplication.UnitOfWork
}

// NewPrepareChargeSheetHandler creates a new PrepareChargeSheetHandler.
func NewPrepareChargeSheetHandler(engine *services.Engine, recorder audit.Recorder, caseCache cache.CaseCache, uow sharedApplication.UnitOfWork) *PrepareChargeSheetHandler {
	return &PrepareChargeSheetHandler{engine: engine, recorder: recorder, caseCache: caseCache, uow: uow}
}

// Handle executes the PrepareChargeSheetCommand.
func (h *PrepareChargeSheetHandler) Handle(ctx context.Context, cmd PrepareChargeSheetCommand) (lifecycle.State, error) {
	return applyTransition(ctx, h.uow, h.engine, h.recorder, h.caseCache, lifecycle.Request{
		CaseID:            cmd.CaseID,
		FromStateExpected: cmd.FromStateExpected,
		ToState:           lifecycle.StateChargeSheetPrepared,
		Actor:             cmd.Actor,
		Reason:            cmd.Reason,
	}, "PREPARE_CHARGE_SHEET")
}
