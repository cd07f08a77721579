// Package commands holds the write-side handlers of the reopen context.
package commands

import (
	"context"
	"errors"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// RequestReopenCommand files a reopen request against an archived case. This
// is phase one; the case does not move until a judge approves.
type RequestReopenCommand struct {
	CaseID       uuid.UUID
	Actor        lifecycle.Actor
	PoliceReason string
}

// RequestReopenResult contains the result of filing a reopen request.
type RequestReopenResult struct {
	RequestID uuid.UUID
	Status    reopenDomain.Status
}

// RequestReopenHandler handles the RequestReopenCommand.
type RequestReopenHandler struct {
	reopenRepo reopenDomain.Repository
	stateRepo  casefile.StateRepository
	recorder   audit.Recorder
	uow        sharedApplication.UnitOfWork
}

// NewRequestReopenHandler creates a new RequestReopenHandler.
func NewRequestReopenHandler(
	reopenRepo reopenDomain.Repository,
	stateRepo casefile.StateRepository,
	recorder audit.Recorder,
	uow sharedApplication.UnitOfWork,
) *RequestReopenHandler {
	return &RequestReopenHandler{
		reopenRepo: reopenRepo,
		stateRepo:  stateRepo,
		recorder:   recorder,
		uow:        uow,
	}
}

// Handle executes the RequestReopenCommand. The case must be ARCHIVED and
// must not already carry a pending request.
func (h *RequestReopenHandler) Handle(ctx context.Context, cmd RequestReopenCommand) (*RequestReopenResult, error) {
	if cmd.Actor.Role != lifecycle.RolePolice && cmd.Actor.Role != lifecycle.RoleSHO {
		return nil, lifecycle.NewUnauthorized("only police actors may request a reopen")
	}

	var result *RequestReopenResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		state, err := h.stateRepo.CurrentState(txCtx, cmd.CaseID)
		if err != nil {
			return err
		}
		if state != lifecycle.StateArchived {
			return lifecycle.NewPreconditionFailed("only an archived case can be reopened")
		}

		_, err = h.reopenRepo.FindPendingByCase(txCtx, cmd.CaseID)
		switch {
		case err == nil:
			return reopenDomain.ErrPendingExists
		case errors.Is(err, reopenDomain.ErrRequestNotFound):
			// No pending request; proceed.
		default:
			return err
		}

		req, err := reopenDomain.NewRequest(cmd.CaseID, cmd.Actor.ID, cmd.PoliceReason)
		if err != nil {
			return err
		}
		if err := h.reopenRepo.Save(txCtx, req); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "REQUEST_REOPEN",
			Entity:   "CaseReopenRequest",
			EntityID: req.ID(),
		}); err != nil {
			return err
		}

		result = &RequestReopenResult{RequestID: req.ID(), Status: req.Status()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
