// Package services hosts the case lifecycle engine. Every workflow command
// that moves a case between states funnels through Engine.AttemptTransition;
// nothing else writes the current-state row or the history log.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// Engine validates and applies case lifecycle transitions. On acceptance it
// swaps the current state, appends one history row and stages one transition
// event in the outbox, all inside a single transaction. On rejection nothing
// is written.
type Engine struct {
	store      lifecycle.Store
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	now        func() time.Time
}

// NewEngine creates a lifecycle engine.
func NewEngine(store lifecycle.Store, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:      store,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the engine clock. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// AttemptTransition evaluates the guard steps in order (case exists, expected
// state matches, edge exists, role authorized, preconditions hold) and, when
// all pass, commits the state swap plus history row atomically. The returned
// error is always a *lifecycle.Error; infrastructure failures surface as
// KindDownstreamFailure with the cause preserved.
func (e *Engine) AttemptTransition(ctx context.Context, req lifecycle.Request) (lifecycle.State, error) {
	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return "", lifecycle.NewDownstreamFailure("begin transaction", err)
	}

	applied, aerr := e.attempt(txCtx, req)
	if aerr != nil {
		_ = e.uow.Rollback(txCtx)
		return "", aerr
	}

	if err := e.uow.Commit(txCtx); err != nil {
		return "", lifecycle.NewDownstreamFailure("commit transition", err)
	}

	e.logger.Info("case transitioned",
		"case_id", req.CaseID,
		"from", applied.FromState,
		"to", applied.ToState,
		"actor_id", req.Actor.ID,
		"actor_role", req.Actor.Role,
	)

	return applied.ToState, nil
}

func (e *Engine) attempt(ctx context.Context, req lifecycle.Request) (lifecycle.Applied, error) {
	var none lifecycle.Applied

	exists, err := e.store.CaseExists(ctx, req.CaseID)
	if err != nil {
		return none, lifecycle.NewDownstreamFailure("check case", err)
	}
	if !exists {
		return none, lifecycle.NewCaseNotFound()
	}

	current, err := e.store.CurrentState(ctx, req.CaseID)
	if err != nil {
		return none, lifecycle.NewDownstreamFailure("read current state", err)
	}
	if current != req.FromStateExpected {
		return none, lifecycle.NewStaleState(current)
	}

	assignee, err := e.store.ActiveAssignee(ctx, req.CaseID)
	if err != nil {
		return none, lifecycle.NewDownstreamFailure("read active assignment", err)
	}

	snap := lifecycle.Snapshot{Current: current, AssigneeID: assignee}
	if err := lifecycle.Decide(req, snap); err != nil {
		return none, err
	}

	actual, swapped, err := e.store.SwapState(ctx, req.CaseID, current, req.ToState)
	if err != nil {
		return none, lifecycle.NewDownstreamFailure("swap state", err)
	}
	if !swapped {
		// A concurrent transition won the race between our read and the swap.
		return none, lifecycle.NewStaleState(actual)
	}

	changedAt := e.now()
	entry := lifecycle.HistoryEntry{
		CaseID:       req.CaseID,
		FromState:    current,
		ToState:      req.ToState,
		ChangedBy:    req.Actor.ID,
		ChangeReason: req.Reason,
		ChangedAt:    changedAt,
	}
	if err := e.store.AppendHistory(ctx, entry); err != nil {
		return none, lifecycle.NewDownstreamFailure("append history", err)
	}

	applied := lifecycle.Applied{
		CaseID:     req.CaseID,
		FromState:  current,
		ToState:    req.ToState,
		ActorID:    req.Actor.ID,
		ActorRole:  req.Actor.Role,
		Reason:     req.Reason,
		OccurredAt: changedAt,
	}

	if err := e.stageEvent(ctx, applied); err != nil {
		return none, lifecycle.NewDownstreamFailure("stage transition event", err)
	}

	return applied, nil
}

// stageEvent writes the transition event to the outbox inside the current
// transaction, so it is published iff the transition commits.
func (e *Engine) stageEvent(ctx context.Context, applied lifecycle.Applied) error {
	event := casefile.NewCaseTransitioned(applied)
	sharedApplication.ApplyEventMetadata(
		[]domain.DomainEvent{event},
		sharedApplication.NewEventMetadata(applied.ActorID),
	)

	msg, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return e.outboxRepo.Save(ctx, msg)
}

// AllowedTransitions returns the target states the actor may request for the
// case right now. It consults the same guard table as the write side.
func (e *Engine) AllowedTransitions(ctx context.Context, caseID uuid.UUID, actor lifecycle.Actor) (lifecycle.State, []lifecycle.State, error) {
	exists, err := e.store.CaseExists(ctx, caseID)
	if err != nil {
		return "", nil, lifecycle.NewDownstreamFailure("check case", err)
	}
	if !exists {
		return "", nil, lifecycle.NewCaseNotFound()
	}

	current, err := e.store.CurrentState(ctx, caseID)
	if err != nil {
		return "", nil, lifecycle.NewDownstreamFailure("read current state", err)
	}
	assignee, err := e.store.ActiveAssignee(ctx, caseID)
	if err != nil {
		return "", nil, lifecycle.NewDownstreamFailure("read active assignment", err)
	}

	snap := lifecycle.Snapshot{Current: current, AssigneeID: assignee}
	return current, lifecycle.AllowedTransitions(actor, snap), nil
}
