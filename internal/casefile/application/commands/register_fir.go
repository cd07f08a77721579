package commands

import (
	"context"
	"time"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RegisterFIRCommand contains the data needed to register a FIR. The case is
// created atomically with the FIR, starting in FIR_REGISTERED.
type RegisterFIRCommand struct {
	PoliceStationID uuid.UUID
	RegisteredBy    uuid.UUID
	FIRNumber       string
	ComplainantName string
	ComplainantTel  string
	IncidentDate    time.Time
	Description     string
	SectionsApplied []string
	DocumentURL     string
}

// RegisterFIRResult contains the result of registering a FIR.
type RegisterFIRResult struct {
	FIRID      uuid.UUID
	CaseID     uuid.UUID
	CaseNumber string
	State      lifecycle.State
}

// RegisterFIRHandler handles the RegisterFIRCommand.
type RegisterFIRHandler struct {
	firRepo    casefile.FIRRepository
	caseRepo   casefile.Repository
	stateRepo  casefile.StateRepository
	outboxRepo outbox.Repository
	recorder   audit.Recorder
	uow        sharedApplication.UnitOfWork
}

// NewRegisterFIRHandler creates a new RegisterFIRHandler.
func NewRegisterFIRHandler(
	firRepo casefile.FIRRepository,
	caseRepo casefile.Repository,
	stateRepo casefile.StateRepository,
	outboxRepo outbox.Repository,
	recorder audit.Recorder,
	uow sharedApplication.UnitOfWork,
) *RegisterFIRHandler {
	return &RegisterFIRHandler{
		firRepo:    firRepo,
		caseRepo:   caseRepo,
		stateRepo:  stateRepo,
		outboxRepo: outboxRepo,
		recorder:   recorder,
		uow:        uow,
	}
}

// Handle executes the RegisterFIRCommand.
func (h *RegisterFIRHandler) Handle(ctx context.Context, cmd RegisterFIRCommand) (*RegisterFIRResult, error) {
	var result *RegisterFIRResult

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		fir, err := casefile.NewFIR(cmd.PoliceStationID, cmd.RegisteredBy, cmd.FIRNumber, cmd.ComplainantName, cmd.IncidentDate)
		if err != nil {
			return err
		}
		fir.SetDetails(cmd.Description, cmd.ComplainantTel, cmd.SectionsApplied, cmd.DocumentURL)

		if err := h.firRepo.Save(txCtx, fir); err != nil {
			return err
		}

		c, err := casefile.NewCase(fir.ID(), casefile.NextCaseNumber(fir.FIRNumber(), fir.CreatedAt()))
		if err != nil {
			return err
		}
		if err := h.caseRepo.Save(txCtx, c); err != nil {
			return err
		}

		if err := h.stateRepo.InitState(txCtx, c.ID(), lifecycle.InitialState, fir.CreatedAt()); err != nil {
			return err
		}

		events := c.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.RegisteredBy))
		msgs, err := outbox.MessagesFromEvents(events)
		if err != nil {
			return err
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.RegisteredBy,
			Action:   "REGISTER_FIR",
			Entity:   "FIR",
			EntityID: fir.ID(),
		}); err != nil {
			return err
		}

		result = &RegisterFIRResult{
			FIRID:      fir.ID(),
			CaseID:     c.ID(),
			CaseNumber: c.CaseNumber(),
			State:      lifecycle.InitialState,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
