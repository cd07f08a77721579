// Package commands holds the write-side handlers of the casefile context.
// Every handler that moves a case between states delegates the decision to
// the lifecycle engine and only adds its own writes (assignments, artifacts,
// audit rows) inside the same transaction.
package commands

import (
	"context"

	"github.com/casetrack/casetrack/internal/audit"
	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
)

// applyTransition runs one engine transition plus its audit row in a single
// unit of work, then drops the case's cache entry. Invalidation happens after
// commit and is best effort; the TTL bounds staleness if it fails.
func applyTransition(
	ctx context.Context,
	uow sharedApplication.UnitOfWork,
	engine *services.Engine,
	recorder audit.Recorder,
	caseCache cache.CaseCache,
	req lifecycle.Request,
	action string,
) (lifecycle.State, error) {
	var next lifecycle.State

	err := sharedApplication.WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
		state, err := engine.AttemptTransition(txCtx, req)
		if err != nil {
			return err
		}
		next = state

		return recorder.Record(txCtx, audit.Entry{
			UserID:   req.Actor.ID,
			Action:   action,
			Entity:   "Case",
			EntityID: req.CaseID,
		})
	})
	if err != nil {
		return "", err
	}

	_ = caseCache.Invalidate(ctx, req.CaseID)
	return next, nil
}
