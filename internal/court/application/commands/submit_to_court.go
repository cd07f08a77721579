// Package commands holds the write-side handlers of the court context. Each
// handler pairs one lifecycle transition with the submission or action
// records it implies, in a single transaction.
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

// SubmitToCourtCommand submits a prepared charge sheet or closure report to a
// court. The submission type follows from the expected state.
type SubmitToCourtCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	CourtID           uuid.UUID
	Actor             lifecycle.Actor
	Reason            string
}

// SubmitToCourtResult contains the result of a submission.
type SubmitToCourtResult struct {
	SubmissionID      uuid.UUID
	SubmissionVersion int
	State             lifecycle.State
}

// SubmitToCourtHandler handles the SubmitToCourtCommand.
type SubmitToCourtHandler struct {
	submissionRepo courtDomain.SubmissionRepository
	engine         *services.Engine
	recorder       audit.Recorder
	caseCache      cache.CaseCache
	uow            sharedApplication.UnitOfWork
}

// NewSubmitToCourtHandler creates a new SubmitToCourtHandler.
func NewSubmitToCourtHandler(
	submissionRepo courtDomain.SubmissionRepository,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *SubmitToCourtHandler {
	return &SubmitToCourtHandler{
		submissionRepo: submissionRepo,
		engine:         engine,
		recorder:       recorder,
		caseCache:      caseCache,
		uow:            uow,
	}
}

// Handle executes the SubmitToCourtCommand.
func (h *SubmitToCourtHandler) Handle(ctx context.Context, cmd SubmitToCourtCommand) (*SubmitToCourtResult, error) {
	var submissionType courtDomain.SubmissionType
	switch cmd.FromStateExpected {
	case lifecycle.StateChargeSheetPrepared:
		submissionType = courtDomain.SubmissionChargeSheet
	case lifecycle.StateClosureReportPrepared:
		submissionType = courtDomain.SubmissionClosureReport
	default:
		return nil, lifecycle.NewInvalidEdge(cmd.FromStateExpected, lifecycle.StateSubmittedToCourt)
	}

	var result *SubmitToCourtResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		state, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
			CaseID:            cmd.CaseID,
			FromStateExpected: cmd.FromStateExpected,
			ToState:           lifecycle.StateSubmittedToCourt,
			Actor:             cmd.Actor,
			Reason:            cmd.Reason,
			CourtID:           cmd.CourtID,
		})
		if err != nil {
			return err
		}

		version, err := h.submissionRepo.LatestVersion(txCtx, cmd.CaseID)
		if err != nil {
			return err
		}

		s := courtDomain.NewSubmission(cmd.CaseID, cmd.CourtID, cmd.Actor.ID, submissionType, version+1)
		if err := h.submissionRepo.Save(txCtx, s); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "SUBMIT_TO_COURT",
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
