// Package application drives investigation record keeping. Every write
// checks case scope first: a police actor must hold the active assignment,
// an SHO must belong to the case's police station; court roles have read
// access only.
package application

import (
	"context"
	"errors"
	"time"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	invDomain "github.com/casetrack/casetrack/internal/investigation/domain"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// Service drives investigation record CRUD.
type Service struct {
	repo           invDomain.Repository
	firRepo        casefile.FIRRepository
	assignmentRepo casefile.AssignmentRepository
	recorder       audit.Recorder
	uow            sharedApplication.UnitOfWork
}

// NewService creates an investigation record service.
func NewService(
	repo invDomain.Repository,
	firRepo casefile.FIRRepository,
	assignmentRepo casefile.AssignmentRepository,
	recorder audit.Recorder,
	uow sharedApplication.UnitOfWork,
) *Service {
	return &Service{
		repo:           repo,
		firRepo:        firRepo,
		assignmentRepo: assignmentRepo,
		recorder:       recorder,
		uow:            uow,
	}
}

// checkWriteScope enforces who may write to a case's investigation record.
func (s *Service) checkWriteScope(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor) error {
	switch actor.Role {
	case lifecycle.RolePolice:
		a, err := s.assignmentRepo.FindActive(ctx, caseID)
		if err != nil {
			if errors.Is(err, casefile.ErrNoActiveAssignment) {
				return lifecycle.NewUnauthorized("case is not assigned to you")
			}
			return err
		}
		if a.AssignedTo() != actor.ID {
			return lifecycle.NewUnauthorized("case is not assigned to you")
		}
		return nil
	case lifecycle.RoleSHO:
		fir, err := s.firRepo.FindByCaseID(ctx, caseID)
		if err != nil {
			return err
		}
		if fir.PoliceStationID() != actor.OrganizationID {
			return lifecycle.NewUnauthorized("case belongs to a different police station")
		}
		return nil
	default:
		return lifecycle.NewUnauthorized("court roles may not write investigation records")
	}
}

// AddEvent records an investigation event.
func (s *Service) AddEvent(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor, eventType, description string, occurredAt time.Time) (*invDomain.Event, error) {
	var created *invDomain.Event
	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.checkWriteScope(txCtx, caseID, actor); err != nil {
			return err
		}
		e, err := invDomain.NewEvent(caseID, actor.ID, eventType, description, occurredAt)
		if err != nil {
			return err
		}
		if err := s.repo.SaveEvent(txCtx, e); err != nil {
			return err
		}
		created = e
		return s.record(txCtx, actor, "ADD_INVESTIGATION_EVENT", "InvestigationEvent", e.ID())
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddEvidence records an evidence item.
func (s *Service) AddEvidence(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor, label, description, storageRef string) (*invDomain.Evidence, error) {
	var created *invDomain.Evidence
	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.checkWriteScope(txCtx, caseID, actor); err != nil {
			return err
		}
		e, err := invDomain.NewEvidence(caseID, actor.ID, label, description, storageRef)
		if err != nil {
			return err
		}
		if err := s.repo.SaveEvidence(txCtx, e); err != nil {
			return err
		}
		created = e
		return s.record(txCtx, actor, "ADD_EVIDENCE", "Evidence", e.ID())
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddWitness records a witness.
func (s *Service) AddWitness(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor, name, tel, statement string) (*invDomain.Witness, error) {
	var created *invDomain.Witness
	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.checkWriteScope(txCtx, caseID, actor); err != nil {
			return err
		}
		w, err := invDomain.NewWitness(caseID, actor.ID, name, tel, statement)
		if err != nil {
			return err
		}
		if err := s.repo.SaveWitness(txCtx, w); err != nil {
			return err
		}
		created = w
		return s.record(txCtx, actor, "ADD_WITNESS", "Witness", w.ID())
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddAccused records an accused person.
func (s *Service) AddAccused(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor, name, description string, status invDomain.AccusedStatus) (*invDomain.Accused, error) {
	var created *invDomain.Accused
	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		if err := s.checkWriteScope(txCtx, caseID, actor); err != nil {
			return err
		}
		a, err := invDomain.NewAccused(caseID, actor.ID, name, description, status)
		if err != nil {
			return err
		}
		if err := s.repo.SaveAccused(txCtx, a); err != nil {
			return err
		}
		created = a
		return s.record(txCtx, actor, "ADD_ACCUSED", "Accused", a.ID())
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateAccusedStatus updates the custody status of an accused person.
func (s *Service) UpdateAccusedStatus(ctx context.Context, accusedID uuid.UUID, actor lifecycle.Actor, status invDomain.AccusedStatus) error {
	return sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		a, err := s.repo.FindAccused(txCtx, accusedID)
		if err != nil {
			return err
		}
		if err := s.checkWriteScope(txCtx, a.CaseID(), actor); err != nil {
			return err
		}
		a.SetStatus(status)
		if err := s.repo.SaveAccused(txCtx, a); err != nil {
			return err
		}
		return s.record(txCtx, actor, "UPDATE_ACCUSED_STATUS", "Accused", a.ID())
	})
}

func (s *Service) record(ctx context.Context, actor lifecycle.Actor, action, entity string, entityID uuid.UUID) error {
	return s.recorder.Record(ctx, audit.Entry{
		UserID:   actor.ID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	})
}

// Events lists a case's investigation events.
func (s *Service) Events(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Event, error) {
	return s.repo.EventsByCase(ctx, caseID)
}

// Evidence lists a case's evidence items.
func (s *Service) Evidence(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Evidence, error) {
	return s.repo.EvidenceByCase(ctx, caseID)
}

// Witnesses lists a case's witnesses.
func (s *Service) Witnesses(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Witness, error) {
	return s.repo.WitnessesByCase(ctx, caseID)
}

// Accused lists a case's accused persons.
func (s *Service) Accused(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Accused, error) {
	return s.repo.AccusedByCase(ctx, caseID)
}
