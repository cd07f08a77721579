package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one immutable row of the case state audit trail. Entries
// are only ever appended, and only for accepted transitions.
type HistoryEntry struct {
	CaseID       uuid.UUID
	FromState    State
	ToState      State
	ChangedBy    uuid.UUID
	ChangeReason string
	ChangedAt    time.Time
}

// Store is the transactional persistence boundary the engine drives. The
// current-state row is owned exclusively by the engine; no other component
// writes it. Implementations must honor the context transaction so the swap
// and the history append commit as one unit.
type Store interface {
	// CaseExists reports whether the case id resolves.
	CaseExists(ctx context.Context, caseID uuid.UUID) (bool, error)

	// CurrentState returns the case's current lifecycle state.
	CurrentState(ctx context.Context, caseID uuid.UUID) (State, error)

	// ActiveAssignee returns the holder of the active assignment, or uuid.Nil
	// when the case is unassigned.
	ActiveAssignee(ctx context.Context, caseID uuid.UUID) (uuid.UUID, error)

	// SwapState sets the current state to next iff it still equals expected.
	// When the swap does not apply it returns the actual stored state and
	// swapped=false; this is the per-case serialization point.
	SwapState(ctx context.Context, caseID uuid.UUID, expected, next State) (actual State, swapped bool, err error)

	// AppendHistory appends one history entry.
	AppendHistory(ctx context.Context, entry HistoryEntry) error
}

// Applied describes an accepted, committed transition. It is the payload of
// the transition event consumed by the notification collaborator.
type Applied struct {
	CaseID     uuid.UUID
	FromState  State
	ToState    State
	ActorID    uuid.UUID
	ActorRole  Role
	Reason     string
	OccurredAt time.Time
}
