package casefile

import (
	"context"
	"errors"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/google/uuid"
)

var (
	ErrCaseNotFound       = errors.New("case not found")
	ErrFIRNotFound        = errors.New("fir not found")
	ErrNoActiveAssignment = errors.New("case has no active assignment")
)

// FIRRepository persists FIRs.
type FIRRepository interface {
	Save(ctx context.Context, fir *FIR) error
	FindByID(ctx context.Context, id uuid.UUID) (*FIR, error)
	FindByCaseID(ctx context.Context, caseID uuid.UUID) (*FIR, error)
}

// Repository persists cases.
type Repository interface {
	Save(ctx context.Context, c *Case) error
	FindByID(ctx context.Context, id uuid.UUID) (*Case, error)
	// Exists is the cheap existence probe used by the lifecycle engine.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// AssignmentRepository persists case assignments. The active assignment is
// the single row per case with unassigned_at IS NULL.
type AssignmentRepository interface {
	Save(ctx context.Context, a *Assignment) error
	FindActive(ctx context.Context, caseID uuid.UUID) (*Assignment, error)
	FindByCase(ctx context.Context, caseID uuid.UUID) ([]*Assignment, error)
	// CloseActive closes any active assignment for the case and returns how
	// many rows it closed (0 or 1).
	CloseActive(ctx context.Context, caseID uuid.UUID, at time.Time) (int64, error)
}

// StateRepository reads and writes the current-state row and the append-only
// history. Writes go through the lifecycle engine only.
type StateRepository interface {
	lifecycle.Store

	// InitState creates the current-state row for a new case, in the same
	// transaction as the case insert.
	InitState(ctx context.Context, caseID uuid.UUID, initial lifecycle.State, at time.Time) error

	// History returns the state history in ascending changed_at order.
	History(ctx context.Context, caseID uuid.UUID) ([]lifecycle.HistoryEntry, error)
}
