package commands

import (
	"context"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// RecordCourtActionCommand records a judicial action. Cognizance, judgment
// and disposal also move the lifecycle; an appeal is recorded without a
// state change.
type RecordCourtActionCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	ActionType        courtDomain.ActionType
	Note              string
	Actor             lifecycle.Actor
}

// RecordCourtActionResult contains the result of recording an action.
type RecordCourtActionResult struct {
	ActionID uuid.UUID
	State    lifecycle.State
}

// RecordCourtActionHandler handles the RecordCourtActionCommand.
type RecordCourtActionHandler struct {
	actionRepo courtDomain.CourtActionRepository
	engine     *services.Engine
	recorder   audit.Recorder
	caseCache  cache.CaseCache
	uow        sharedApplication.UnitOfWork
}

// NewRecordCourtActionHandler creates a new RecordCourtActionHandler.
func NewRecordCourtActionHandler(
	actionRepo courtDomain.CourtActionRepository,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *RecordCourtActionHandler {
	return &RecordCourtActionHandler{
		actionRepo: actionRepo,
		engine:     engine,
		recorder:   recorder,
		caseCache:  caseCache,
		uow:        uow,
	}
}

// Handle executes the RecordCourtActionCommand.
func (h *RecordCourtActionHandler) Handle(ctx context.Context, cmd RecordCourtActionCommand) (*RecordCourtActionResult, error) {
	var result *RecordCourtActionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		state := cmd.FromStateExpected

		if target, moves := cmd.ActionType.TargetState(); moves {
			next, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
				CaseID:            cmd.CaseID,
				FromStateExpected: cmd.FromStateExpected,
				ToState:           target,
				Actor:             cmd.Actor,
				Reason:            cmd.Note,
			})
			if err != nil {
				return err
			}
			state = next
		}

		a := courtDomain.NewCourtAction(cmd.CaseID, cmd.Actor.OrganizationID, cmd.Actor.ID, cmd.ActionType, cmd.Note)
		if err := h.actionRepo.Save(txCtx, a); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "RECORD_COURT_ACTION",
			Entity:   "CourtAction",
			EntityID: a.ID(),
		}); err != nil {
			return err
		}

		result = &RecordCourtActionResult{ActionID: a.ID(), State: state}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = h.caseCache.Invalidate(ctx, cmd.CaseID)
	return result, nil
}
