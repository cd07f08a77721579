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

// ResubmitCommand resubmits a case returned for defects. A new submission
// record opens with the next version; the type carries over from the latest
// submission.
type ResubmitCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	CourtID           uuid.UUID
	Actor             lifecycle.Actor
	Reason            string
}

// ResubmitHandler handles the ResubmitCommand.
type ResubmitHandler struct {
	submissionRepo courtDomain.SubmissionRepository
	engine         *services.Engine
	recorder       audit.Recorder
	caseCache      cache.CaseCache
	uow            sharedApplication.UnitOfWork
}

// NewResubmitHandler creates a new ResubmitHandler.
func NewResubmitHandler(
	submissionRepo courtDomain.SubmissionRepository,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *ResubmitHandler {
	return &ResubmitHandler{
		submissionRepo: submissionRepo,
		engine:         engine,
		recorder:       recorder,
		caseCache:      caseCache,
		uow:            uow,
	}
}

// Handle executes the ResubmitCommand.
func (h *ResubmitHandler) Handle(ctx context.Context, cmd ResubmitCommand) (*SubmitToCourtResult, error) {
	var result *SubmitToCourtResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		previous, err := h.submissionRepo.FindByCase(txCtx, cmd.CaseID)
		if err != nil {
			return err
		}
		if len(previous) == 0 {
			return courtDomain.ErrSubmissionNotFound
		}
		latest := previous[0]

		state, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
			CaseID:            cmd.CaseID,
			FromStateExpected: cmd.FromStateExpected,
			ToState:           lifecycle.StateResubmittedToCourt,
			Actor:             cmd.Actor,
			Reason:            cmd.Reason,
			CourtID:           cmd.CourtID,
		})
		if err != nil {
			return err
		}

		s := courtDomain.NewSubmission(cmd.CaseID, cmd.CourtID, cmd.Actor.ID, latest.Type(), latest.Version()+1)
		if err := h.submissionRepo.Save(txCtx, s); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "RESUBMIT_TO_COURT",
			Entity:   "CourtSubmission",
			EntityID: s.ID(),
		}); err != nil {
			return err
		}

		result = &SubmitToCourtResult{
			SubmissionID:      s.ID(),
			SubmissionVersion: s.Version(),
			State:             state,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = h.caseCache.Invalidate(ctx, cmd.CaseID)
	return result, nil
}
