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

// ReturnForDefectsCommand returns the case's pending submission to the police
// with a defects note. The reason is mandatory.
type ReturnForDefectsCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// ReturnForDefectsHandler handles the ReturnForDefectsCommand.
type ReturnForDefectsHandler struct {
	submissionRepo courtDomain.SubmissionRepository
	engine         *services.Engine
	recorder       audit.Recorder
	caseCache      cache.CaseCache
	uow            sharedApplication.UnitOfWork
}

// NewReturnForDefectsHandler creates a new ReturnForDefectsHandler.
func NewReturnForDefectsHandler(
	submissionRepo courtDomain.SubmissionRepository,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *ReturnForDefectsHandler {
	return &ReturnForDefectsHandler{
		submissionRepo: submissionRepo,
		engine:         engine,
		recorder:       recorder,
		caseCache:      caseCache,
		uow:            uow,
	}
}

// Handle executes the ReturnForDefectsCommand.
func (h *ReturnForDefectsHandler) Handle(ctx context.Context, cmd ReturnForDefectsCommand) (lifecycle.State, error) {
	var next lifecycle.State

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		s, err := h.submissionRepo.FindPending(txCtx, cmd.CaseID)
		if err != nil {
			return err
		}
		if s.CourtID() != cmd.Actor.OrganizationID {
			return lifecycle.NewUnauthorized("submission belongs to a different court")
		}

		state, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
			CaseID:            cmd.CaseID,
			FromStateExpected: cmd.FromStateExpected,
			ToState:           lifecycle.StateReturnedForDefects,
			Actor:             cmd.Actor,
			Reason:            cmd.Reason,
		})
		if err != nil {
			return err
		}
		next = state

		if err := s.Return(cmd.Reason); err != nil {
			return err
		}
		if err := h.submissionRepo.Save(txCtx, s); err != nil {
			return err
		}

		return h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "RETURN_FOR_DEFECTS",
			Entity:   "CourtSubmission",
			EntityID: s.ID(),
		})
	})
	if err != nil {
		return "", err
	}

	_ = h.caseCache.Invalidate(ctx, cmd.CaseID)
	return next, nil
}
