package commands

import (
	"context"
	"time"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// AssignCaseCommand assigns or reassigns a case to an officer. The expected
// state is FIR_REGISTERED for the first assignment and CASE_ASSIGNED for a
// reassignment; both land in CASE_ASSIGNED.
type AssignCaseCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	AssignedTo        uuid.UUID
	Actor             lifecycle.Actor
	Reason            string
}

// AssignCaseResult contains the result of assigning a case.
type AssignCaseResult struct {
	AssignmentID uuid.UUID
	State        lifecycle.State
}

// AssignCaseHandler handles the AssignCaseCommand.
type AssignCaseHandler struct {
	assignmentRepo casefile.AssignmentRepository
	engine         *services.Engine
	outboxRepo     outbox.Repository
	recorder       audit.Recorder
	caseCache      cache.CaseCache
	uow            sharedApplication.UnitOfWork
}

// NewAssignCaseHandler creates a new AssignCaseHandler.
func NewAssignCaseHandler(
	assignmentRepo casefile.AssignmentRepository,
	engine *services.Engine,
	outboxRepo outbox.Repository,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *AssignCaseHandler {
	return &AssignCaseHandler{
		assignmentRepo: assignmentRepo,
		engine:         engine,
		outboxRepo:     outboxRepo,
		recorder:       recorder,
		caseCache:      caseCache,
		uow:            uow,
	}
}

// Handle executes the AssignCaseCommand. The engine transition, the
// assignment swap and the audit row commit as one transaction; the previous
// active assignment (if any) is closed before the new one opens.
func (h *AssignCaseHandler) Handle(ctx context.Context, cmd AssignCaseCommand) (*AssignCaseResult, error) {
	if cmd.AssignedTo == uuid.Nil {
		return nil, lifecycle.NewPreconditionFailed("an assignee is required")
	}

	var result *AssignCaseResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		state, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
			CaseID:            cmd.CaseID,
			FromStateExpected: cmd.FromStateExpected,
			ToState:           lifecycle.StateCaseAssigned,
			Actor:             cmd.Actor,
			Reason:            cmd.Reason,
		})
		if err != nil {
			return err
		}

		if _, err := h.assignmentRepo.CloseActive(txCtx, cmd.CaseID, time.Now().UTC()); err != nil {
			return err
		}

		a := casefile.NewAssignment(cmd.CaseID, cmd.AssignedTo, cmd.Actor.ID, cmd.Reason)
		if err := h.assignmentRepo.Save(txCtx, a); err != nil {
			return err
		}

		event := casefile.NewCaseAssigned(cmd.CaseID, cmd.AssignedTo, cmd.Actor.ID, cmd.Reason)
		sharedApplication.ApplyEventMetadata([]domain.DomainEvent{event}, sharedApplication.NewEventMetadata(cmd.Actor.ID))
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		if err := h.outboxRepo.Save(txCtx, msg); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "ASSIGN_CASE",
			Entity:   "Case",
			EntityID: cmd.CaseID,
		}); err != nil {
			return err
		}

		result = &AssignCaseResult{AssignmentID: a.ID(), State: state}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = h.caseCache.Invalidate(ctx, cmd.CaseID)
	return result, nil
}
