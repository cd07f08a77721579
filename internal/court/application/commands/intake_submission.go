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

// IntakeSubmissionCommand accepts the case's pending submission. The
// acknowledgement number is optional; when present an acknowledgement record
// is created alongside.
type IntakeSubmissionCommand struct {
	CaseID                uuid.UUID
	FromStateExpected     lifecycle.State
	Actor                 lifecycle.Actor
	AcknowledgementNumber string
}

// IntakeSubmissionResult contains the result of an intake.
type IntakeSubmissionResult struct {
	SubmissionID      uuid.UUID
	AcknowledgementID *uuid.UUID
	State             lifecycle.State
}

// IntakeSubmissionHandler handles the IntakeSubmissionCommand.
type IntakeSubmissionHandler struct {
	submissionRepo courtDomain.SubmissionRepository
	engine         *services.Engine
	recorder       audit.Recorder
	caseCache      cache.CaseCache
	uow            sharedApplication.UnitOfWork
}

// NewIntakeSubmissionHandler creates a new IntakeSubmissionHandler.
func NewIntakeSubmissionHandler(
	submissionRepo courtDomain.SubmissionRepository,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *IntakeSubmissionHandler {
	return &IntakeSubmissionHandler{
		submissionRepo: submissionRepo,
		engine:         engine,
		recorder:       recorder,
		caseCache:      caseCache,
		uow:            uow,
	}
}

// Handle executes the IntakeSubmissionCommand. Only a clerk of the court the
// case was submitted to may take it in.
func (h *IntakeSubmissionHandler) Handle(ctx context.Context, cmd IntakeSubmissionCommand) (*IntakeSubmissionResult, error) {
	var result *IntakeSubmissionResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		s, err := h.submissionRepo.FindPending(txCtx, cmd.CaseID)
		if err != nil {
			return err
		}
		if s.CourtID() != cmd.Actor.OrganizationID {
			return lifecycle.NewUnauthorized("submission belongs to a different court")
		}

		state, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
			CaseID:                cmd.CaseID,
			FromStateExpected:     cmd.FromStateExpected,
			ToState:               lifecycle.StateCourtAccepted,
			Actor:                 cmd.Actor,
			AcknowledgementNumber: cmd.AcknowledgementNumber,
		})
		if err != nil {
			return err
		}

		if err := s.Accept(); err != nil {
			return err
		}
		if err := h.submissionRepo.Save(txCtx, s); err != nil {
			return err
		}

		result = &IntakeSubmissionResult{SubmissionID: s.ID(), State: state}

		if cmd.AcknowledgementNumber != "" {
			ack := courtDomain.NewAcknowledgement(s.ID(), cmd.Actor.ID, cmd.AcknowledgementNumber)
			if err := h.submissionRepo.SaveAcknowledgement(txCtx, ack); err != nil {
				return err
			}
			ackID := ack.ID()
			result.AcknowledgementID = &ackID
		}

		return h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "INTAKE_SUBMISSION",
			Entity:   "CourtSubmission",
			EntityID: s.ID(),
		})
	})
	if err != nil {
		return nil, err
	}

	_ = h.caseCache.Invalidate(ctx, cmd.CaseID)
	return result, nil
}
