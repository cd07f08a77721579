package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStateRepository implements casefile.StateRepository. The conditional
// UPDATE in SwapState is the serialization point for concurrent transitions on
// the same case.
type PostgresStateRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStateRepository creates a new state repository.
func NewPostgresStateRepository(pool *pgxpool.Pool) *PostgresStateRepository {
	return &PostgresStateRepository{pool: pool}
}

// CaseExists reports whether the case id resolves.
func (r *PostgresStateRepository) CaseExists(ctx context.Context, caseID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`
	var exists bool
	execer := sharedPersistence.Executor(ctx, r.pool)
	if err := execer.QueryRow(ctx, query, caseID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CurrentState returns the case's current lifecycle state.
func (r *PostgresStateRepository) CurrentState(ctx context.Context, caseID uuid.UUID) (lifecycle.State, error) {
	query := `SELECT current_state FROM current_case_state WHERE case_id = $1`
	var raw string
	execer := sharedPersistence.Executor(ctx, r.pool)
	if err := execer.QueryRow(ctx, query, caseID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", casefile.ErrCaseNotFound
		}
		return "", err
	}
	return lifecycle.ParseState(raw)
}

// ActiveAssignee returns the holder of the active assignment, or uuid.Nil
// when the case is unassigned.
func (r *PostgresStateRepository) ActiveAssignee(ctx context.Context, caseID uuid.UUID) (uuid.UUID, error) {
	query := `SELECT assigned_to FROM case_assignments WHERE case_id = $1 AND unassigned_at IS NULL`
	var assignee uuid.UUID
	execer := sharedPersistence.Executor(ctx, r.pool)
	if err := execer.QueryRow(ctx, query, caseID).Scan(&assignee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return assignee, nil
}

// SwapState sets the current state to next iff it still equals expected. On a
// lost race it re-reads and returns the actual state with swapped=false.
func (r *PostgresStateRepository) SwapState(ctx context.Context, caseID uuid.UUID, expected, next lifecycle.State) (lifecycle.State, bool, error) {
	query := `
		UPDATE current_case_state
		SET current_state = $3, updated_at = NOW()
		WHERE case_id = $1 AND current_state = $2
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	tag, err := execer.Exec(ctx, query, caseID, expected.String(), next.String())
	if err != nil {
		return "", false, err
	}
	if tag.RowsAffected() == 1 {
		return next, true, nil
	}

	actual, err := r.CurrentState(ctx, caseID)
	if err != nil {
		return "", false, fmt.Errorf("reading actual state after failed swap: %w", err)
	}
	return actual, false, nil
}

// AppendHistory appends one history entry.
func (r *PostgresStateRepository) AppendHistory(ctx context.Context, entry lifecycle.HistoryEntry) error {
	query := `
		INSERT INTO case_state_history (
			id, case_id, from_state, to_state, changed_by, change_reason, changed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		uuid.New(),
		entry.CaseID,
		entry.FromState.String(),
		entry.ToState.String(),
		entry.ChangedBy,
		entry.ChangeReason,
		entry.ChangedAt,
	)
	return err
}

// InitState creates the current-state row for a new case.
func (r *PostgresStateRepository) InitState(ctx context.Context, caseID uuid.UUID, initial lifecycle.State, at time.Time) error {
	query := `
		INSERT INTO current_case_state (case_id, current_state, updated_at)
		VALUES ($1, $2, $3)
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query, caseID, initial.String(), at)
	return err
}

// History returns the state history in ascending changed_at order.
func (r *PostgresStateRepository) History(ctx context.Context, caseID uuid.UUID) ([]lifecycle.HistoryEntry, error) {
	query := `
		SELECT case_id, from_state, to_state, changed_by, change_reason, changed_at
		FROM case_state_history
		WHERE case_id = $1
		ORDER BY changed_at ASC, id ASC
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []lifecycle.HistoryEntry
	for rows.Next() {
		var (
			entry              lifecycle.HistoryEntry
			fromState, toState string
		)
		err := rows.Scan(
			&entry.CaseID,
			&fromState,
			&toState,
			&entry.ChangedBy,
			&entry.ChangeReason,
			&entry.ChangedAt,
		)
		if err != nil {
			return nil, err
		}
		entry.FromState = lifecycle.State(fromState)
		entry.ToState = lifecycle.State(toState)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
