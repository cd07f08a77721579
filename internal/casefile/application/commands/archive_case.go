package commands

import (
	"context"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// ClosureReportGenerator produces the closure-report artifact for a case and
// returns its URL.
type ClosureReportGenerator interface {
	GenerateClosureReport(ctx context.Context, caseID uuid.UUID) (string, error)
}

// ArchiveCaseCommand archives a case (judicial closure). The closure artifact
// is generated before the transition; if generation fails the case does not
// move.
type ArchiveCaseCommand struct {
	CaseID            uuid.UUID
	FromStateExpected lifecycle.State
	Actor             lifecycle.Actor
	Reason            string
}

// ArchiveCaseResult contains the result of archiving a case.
type ArchiveCaseResult struct {
	State            lifecycle.State
	ClosureReportURL string
}

// ArchiveCaseHandler handles the ArchiveCaseCommand.
type ArchiveCaseHandler struct {
	caseRepo  casefile.Repository
	generator ClosureReportGenerator
	engine    *services.Engine
	recorder  audit.Recorder
	caseCache cache.CaseCache
	uow       sharedApplication.UnitOfWork
}

// NewArchiveCaseHandler creates a new ArchiveCaseHandler.
func NewArchiveCaseHandler(
	caseRepo casefile.Repository,
	generator ClosureReportGenerator,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	uow sharedApplication.UnitOfWork,
) *ArchiveCaseHandler {
	return &ArchiveCaseHandler{
		caseRepo:  caseRepo,
		generator: generator,
		engine:    engine,
		recorder:  recorder,
		caseCache: caseCache,
		uow:       uow,
	}
}

// Handle executes the ArchiveCaseCommand. Artifact generation happens first,
// outside the transaction; the guard then requires the artifact URL, so a
// generation failure means no transition is attempted at all.
func (h *ArchiveCaseHandler) Handle(ctx context.Context, cmd ArchiveCaseCommand) (*ArchiveCaseResult, error) {
	artifactURL, err := h.generator.GenerateClosureReport(ctx, cmd.CaseID)
	if err != nil {
		return nil, lifecycle.NewDownstreamFailure("generate closure report", err)
	}

	var result *ArchiveCaseResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		state, err := h.engine.AttemptTransition(txCtx, lifecycle.Request{
			CaseID:            cmd.CaseID,
			FromStateExpected: cmd.FromStateExpected,
			ToState:           lifecycle.StateArchived,
			Actor:             cmd.Actor,
			Reason:            cmd.Reason,
			ArtifactURL:       artifactURL,
		})
		if err != nil {
			return err
		}

		c, err := h.caseRepo.FindByID(txCtx, cmd.CaseID)
		if err != nil {
			return err
		}
		if err := c.Archive(artifactURL); err != nil {
			return err
		}
		if err := h.caseRepo.Save(txCtx, c); err != nil {
			return err
		}

		if err := h.recorder.Record(txCtx, audit.Entry{
			UserID:   cmd.Actor.ID,
			Action:   "ARCHIVE_CASE",
			Entity:   "Case",
			EntityID: cmd.CaseID,
		}); err != nil {
			return err
		}

		result = &ArchiveCaseResult{State: state, ClosureReportURL: artifactURL}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = h.caseCache.Invalidate(ctx, cmd.CaseID)
	return result, nil
}
