// Package queries holds the read-side handlers of the casefile context. List
// queries go through a dedicated reader that joins cases, FIRs, current state
// and the active assignment in one statement; the case detail query is
// fronted by the Redis cache.
package queries

import (
	"context"
	"time"

	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// CaseSummary is one row of a case list.
type CaseSummary struct {
	CaseID       uuid.UUID  `json:"case_id"`
	CaseNumber   string     `json:"case_number"`
	FIRNumber    string     `json:"fir_number"`
	CurrentState string     `json:"current_state"`
	IsArchived   bool       `json:"is_archived"`
	AssignedTo   *uuid.UUID `json:"assigned_to,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// CaseReader is the list-side read model over cases.
type CaseReader interface {
	// ListByStation returns cases of a police station, optionally filtered by
	// current state (empty string means all), newest first.
	ListByStation(ctx context.Context, stationID uuid.UUID, state string, page sharedApplication.Page) ([]CaseSummary, int, error)

	// ListByAssignee returns cases whose active assignment is held by the
	// officer, newest first.
	ListByAssignee(ctx context.Context, assigneeID uuid.UUID, page sharedApplication.Page) ([]CaseSummary, int, error)
}
