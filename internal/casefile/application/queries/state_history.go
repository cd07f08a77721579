package queries

import (
	"context"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/google/uuid"
)

// StateHistoryQuery retrieves the state history of a case in ascending order.
type StateHistoryQuery struct {
	CaseID uuid.UUID
}

// HistoryRow is one entry of the state history.
type HistoryRow struct {
	FromState    string    `json:"from_state"`
	ToState      string    `json:"to_state"`
	ChangedBy    uuid.UUID `json:"changed_by"`
	ChangeReason string    `json:"change_reason,omitempty"`
	ChangedAt    time.Time `json:"changed_at"`
}

// StateHistoryHandler handles the StateHistoryQuery.
type StateHistoryHandler struct {
	caseRepo  casefile.Repository
	stateRepo casefile.StateRepository
}

// NewStateHistoryHandler creates a new StateHistoryHandler.
func NewStateHistoryHandler(caseRepo casefile.Repository, stateRepo casefile.StateRepository) *StateHistoryHandler {
	return &StateHistoryHandler{caseRepo: caseRepo, stateRepo: stateRepo}
}

// Handle executes the StateHistoryQuery.
func (h *StateHistoryHandler) Handle(ctx context.Context, query StateHistoryQuery) ([]HistoryRow, error) {
	exists, err := h.caseRepo.Exists(ctx, query.CaseID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, casefile.ErrCaseNotFound
	}

	entries, err := h.stateRepo.History(ctx, query.CaseID)
	if err != nil {
		return nil, err
	}

	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, HistoryRow{
			FromState:    e.FromState.String(),
			ToState:      e.ToState.String(),
			ChangedBy:    e.ChangedBy,
			ChangeReason: e.ChangeReason,
			ChangedAt:    e.ChangedAt,
		})
	}
	return rows, nil
}
