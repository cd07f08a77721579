package commands

import (
	"context"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// RejectReopenCommand rejects a pending reopen request. The case stays
// ARCHIVED; only the request entity changes.
type RejectReopenCommand struct {
	RequestID uuid.UUID
	Actor     lifecycle.Actor
	JudgeNote string
}

// RejectReopenHandler handles the RejectReopenCommand.
type RejectReopenHandler struct {
	reopenRepo     reopenDomain.Repository
	submissionRepo courtDomain.SubmissionRepository
	recorder       audit.Recorder
	uow            sharedApplication.UnitOfWork
}

// NewRejectReopenHandler creates a new RejectReopenHandler.
func NewRejectReopenHandler(
	reopenRepo reopenDomain.Repository,
	submissionRepo courtDomain.SubmissionRepository,
	recorder audit.Recorder,
	uow sharedApplication.UnitOfWork,
) *RejectReopenHandler {
	return &RejectReopenHandler{
		reopenRepo:     reopenRepo,
		submissionRepo: submissionRepo,
		recorder:       recorder,
		uow:            uow,
	}
}

// Handle executes the RejectReopenCommand.
func (h *RejectReopenHandler) Handle(ctx context.Context, cmd RejectReopenCommand) error {
	if cmd.Actor.Role != lifecycle.RoleJudge {
		return lifecycle.NewUnauthorized("only a judge may decide a reopen request")
	}
	if cmd.JudgeNote == "" {
		return lifecycle.NewPreconditionFailed("a reason is required to reject a reopen request")
	}

	return sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		req, err := h.reopenRepo.FindByID(txCtx, cmd.RequestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return reopenDomain.ErrRequestDecided
		}

		subs, err := h.submissionRepo.FindByCase(txCtx, req.CaseID())
		if err != nil {
			return err
		}
		if len(subs) == 0 || subs[0].CourtID() != cmd.Actor.OrganizationID {
			return lifecycle.NewUnauthorized("case belongs to a different court")
		}

		if err := req.Reject(cmd.Actor.ID, cmd.JudgeNote); err != nil {
			return err
		}
		if err := h.reopenRepo.Save(txCtx, req); err != nil {
			return err
		}

		return h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "REJECT_REOPEN",
			Entity:   "CaseReopenRequest",
			EntityID: req.ID(),
		})
	})
}
