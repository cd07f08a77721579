package docrequest

import (
	"context"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// Service drives the document request workflow.
type Service struct {
	repo     Repository
	caseRepo casefile.Repository
	recorder audit.Recorder
	uow      sharedApplication.UnitOfWork
}

// NewService creates a document request service.
func NewService(repo Repository, caseRepo casefile.Repository, recorder audit.Recorder, uow sharedApplication.UnitOfWork) *Service {
	return &Service{repo: repo, caseRepo: caseRepo, recorder: recorder, uow: uow}
}

// Request files a document request against a case.
func (s *Service) Request(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor, documentType, note string) (*DocumentRequest, error) {
	var created *DocumentRequest

	err := sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		exists, err := s.caseRepo.Exists(txCtx, caseID)
		if err != nil {
			return err
		}
		if !exists {
			return casefile.ErrCaseNotFound
		}

		d, err := New(caseID, actor.ID, documentType, note)
		if err != nil {
			return err
		}
		if err := s.repo.Save(txCtx, d); err != nil {
			return err
		}

		if err := s.recorder.Record(txCtx, audit.Entry{
			UserID:   actor.ID,
			Action:   "REQUEST_DOCUMENT",
			Entity:   "DocumentRequest",
			EntityID: d.ID(),
		}); err != nil {
			return err
		}

		created = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Fulfill attaches a file URL to an open request.
func (s *Service) Fulfill(ctx context.Context, requestID uuid.UUID, actor lifecycle.Actor, fileURL string) error {
	return s.handle(ctx, requestID, actor, "FULFILL_DOCUMENT_REQUEST", func(d *DocumentRequest) error {
		return d.Fulfill(actor.ID, fileURL)
	})
}

// Reject settles an open request without a file.
func (s *Service) Reject(ctx context.Context, requestID uuid.UUID, actor lifecycle.Actor, note string) error {
	return s.handle(ctx, requestID, actor, "REJECT_DOCUMENT_REQUEST", func(d *DocumentRequest) error {
		return d.Reject(actor.ID, note)
	})
}

func (s *Service) handle(ctx context.Context, requestID uuid.UUID, actor lifecycle.Actor, action string, apply func(*DocumentRequest) error) error {
	if actor.Role == lifecycle.RolePolice {
		return lifecycle.NewUnauthorized("police actors may not settle document requests")
	}

	return sharedApplication.WithUnitOfWork(ctx, s.uow, func(txCtx context.Context) error {
		d, err := s.repo.FindByID(txCtx, requestID)
		if err != nil {
			return err
		}
		if err := apply(d); err != nil {
			return err
		}
		if err := s.repo.Save(txCtx, d); err != nil {
			return err
		}

		return s.recorder.Record(txCtx, audit.Entry{
			UserID:   actor.ID,
			Action:   action,
			Entity:   "DocumentRequest",
			EntityID: d.ID(),
		})
	})
}

// ListByCase returns the document requests of a case.
func (s *Service) ListByCase(ctx context.Context, caseID uuid.UUID) ([]*DocumentRequest, error) {
	return s.repo.FindByCase(ctx, caseID)
}
