package commands

import (
	"context"
	"time"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// ApproveReopenCommand approves a pending reopen request. Phase two: the
// case moves ARCHIVED -> UNDER_INVESTIGATION and is reassigned to the
// requesting officer, all in one transaction with the decision.
type ApproveReopenCommand struct {
	RequestID uuid.UUID
	Actor     lifecycle.Actor
	JudgeNote string
}

// ApproveReopenResult contains the result of an approval.
type ApproveReopenResult struct {
	CaseID       uuid.UUID
	State        lifecycle.State
	AssignmentID uuid.UUID
}

// ApproveReopenHandler handles the ApproveReopenCommand.
type ApproveReopenHandler struct {
	reopenRepo     reopenDomain.Repository
	caseRepo       casefile.Repository
	assignmentRepo casefile.AssignmentRepository
	submissionRepo courtDomain.SubmissionRepository
	engine         *services.Engine
	recorder       audit.Recorder
	caseCache      cache.CaseCache
	uow            sharedApplication.UnitOfWork
}

// NewApproveReopenHandler creates a new ApproveReopenHandler.
func NewApproveReopenHandler(
	reopenRepo reopenDomain.Repository,
	caseRepo casefile.Repository,
	assignmentRepo casefile.AssignmentRepository,
	submissionRepo courtDomain.SubmissionRepository,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *ApproveReopenHandler {
	return &ApproveReopenHandler{
		reopenRepo:     reopenRepo,
		caseRepo:       caseRepo,
		assignmentRepo: assignmentRepo,
		submissionRepo: submissionRepo,
		engine:         engine,
		recorder:       recorder,
		caseCache:      caseCache,
		uow:            uow,
	}
}

// Handle executes the ApproveReopenCommand. Only a judge of the court that
// last received the case may decide its reopen requests.
func (h *ApproveReopenHandler) Handle(ctx context.Context, cmd ApproveReopenCommand) (*ApproveReopenResult, error) {
	var result *ApproveReopenResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		req, err := h.reopenRepo.FindByID(txCtx, cmd.RequestID)
		if err != nil {
			return err
		}
		if !req.IsPending() {
			return reopenDomain.ErrRequestDecided
		}

		if err := h.checkCourt(txCtx, req.CaseID(), cmd.Actor); err != nil {
			return err
		}

		reason := cmd.JudgeNote
		if reason == "" {
			reason = req.PoliceReason()
		}

		state, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
			CaseID:            req.CaseID(),
			FromStateExpected: lifecycle.StateArchived,
			ToState:           lifecycle.StateUnderInvestigation,
			Actor:             cmd.Actor,
			Reason:            reason,
			ReopenRequestID:   req.ID(),
		})
		if err != nil {
			return err
		}

		if err := req.Approve(cmd.Actor.ID, cmd.JudgeNote); err != nil {
			return err
		}
		if err := h.reopenRepo.Save(txCtx, req); err != nil {
			return err
		}

		c, err := h.caseRepo.FindByID(txCtx, req.CaseID())
		if err != nil {
			return err
		}
		if err := c.Unarchive(); err != nil {
			return err
		}
		if err := h.caseRepo.Save(txCtx, c); err != nil {
			return err
		}

		if _, err := h.assignmentRepo.CloseActive(txCtx, req.CaseID(), time.Now().UTC()); err != nil {
			return err
		}
		a := casefile.NewAssignment(req.CaseID(), req.RequestedBy(), cmd.Actor.ID, "case reopened")
		if err := h.assignmentRepo.Save(txCtx, a); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "APPROVE_REOPEN",
			Entity:   "CaseReopenRequest",
			EntityID: req.ID(),
		}); err != nil {
			return err
		}

		result = &ApproveReopenResult{
			CaseID:       req.CaseID(),
			State:        state,
			AssignmentID: a.ID(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = h.caseCache.Invalidate(ctx, result.CaseID)
	return result, nil
}

// checkCourt verifies the actor belongs to the court that last received the
// case.
func (h *ApproveReopenHandler) checkCourt(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor) error {
	subs, err := h.submissionRepo.FindByCase(ctx, caseID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return lifecycle.NewPreconditionFailed("case has no court submission on record")
	}
	if subs[0].CourtID() != actor.OrganizationID {
		return lifecycle.NewUnauthorized("case belongs to a different court")
	}
	return nil
}
