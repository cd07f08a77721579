package queries

import (
	"context"
	"time"

	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	"github.com/google/uuid"
)

// CaseActionsQuery lists the judicial actions recorded against a case.
type CaseActionsQuery struct {
	CaseID uuid.UUID
}

// CourtActionDTO is one court action row.
type CourtActionDTO struct {
	ActionID uuid.UUID `json:"action_id"`
	CourtID  uuid.UUID `json:"court_id"`
	Type     string    `json:"type"`
	Note     string    `json:"note,omitempty"`
	TakenBy  uuid.UUID `json:"taken_by"`
	TakenAt  time.Time `json:"taken_at"`
}

// CaseActionsHandler handles the CaseActionsQuery.
type CaseActionsHandler struct {
	actionRepo courtDomain.CourtActionRepository
}

// NewCaseActionsHandler creates a new CaseActionsHandler.
func NewCaseActionsHandler(actionRepo courtDomain.CourtActionRepository) *CaseActionsHandler {
	return &CaseActionsHandler{actionRepo: actionRepo}
}

// Handle executes the CaseActionsQuery.
func (h *CaseActionsHandler) Handle(ctx context.Context, query CaseActionsQuery) ([]CourtActionDTO, error) {
	actions, err := h.actionRepo.FindByCase(ctx, query.CaseID)
	if err != nil {
		return nil, err
	}

	dtos := make([]CourtActionDTO, 0, len(actions))
	for _, a := range actions {
		dtos = append(dtos, CourtActionDTO{
			ActionID: a.ID(),
			CourtID:  a.CourtID(),
			Type:     string(a.Type()),
			Note:     a.Note(),
			TakenBy:  a.TakenBy(),
			TakenAt:  a.TakenAt(),
		})
	}
	return dtos, nil
}
