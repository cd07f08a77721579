// Package queries holds the read-side handlers of the reopen context.
package queries

import (
	"context"
	"time"

	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
	"github.com/google/uuid"
)

// CaseRequestsQuery lists the reopen requests filed against a case.
type CaseRequestsQuery struct {
	CaseID uuid.UUID
}

// RequestDTO is one reopen request row.
type RequestDTO struct {
	RequestID    uuid.UUID  `json:"request_id"`
	RequestedBy  uuid.UUID  `json:"requested_by"`
	PoliceReason string     `json:"police_reason"`
	Status       string     `json:"status"`
	JudgeNote    string     `json:"judge_note,omitempty"`
	DecidedBy    *uuid.UUID `json:"decided_by,omitempty"`
	DecidedAt    *time.Time `json:"decided_at,omitempty"`
	FiledAt      time.Time  `json:"filed_at"`
}

// CaseRequestsHandler handles the CaseRequestsQuery.
type CaseRequestsHandler struct {
	reopenRepo reopenDomain.Repository
}

// NewCaseRequestsHandler creates a new CaseRequestsHandler.
func NewCaseRequestsHandler(reopenRepo reopenDomain.Repository) *CaseRequestsHandler {
	return &CaseRequestsHandler{reopenRepo: reopenRepo}
}

// Handle executes the CaseRequestsQuery.
func (h *CaseRequestsHandler) Handle(ctx context.Context, query CaseRequestsQuery) ([]RequestDTO, error) {
	reqs, err := h.reopenRepo.FindByCase(ctx, query.CaseID)
	if err != nil {
		return nil, err
	}

	dtos := make([]RequestDTO, 0, len(reqs))
	for _, r := range reqs {
		dto := RequestDTO{
			RequestID:    r.ID(),
			RequestedBy:  r.RequestedBy(),
			PoliceReason: r.PoliceReason(),
			Status:       string(r.Status()),
			JudgeNote:    r.JudgeNote(),
			DecidedAt:    r.DecidedAt(),
			FiledAt:      r.CreatedAt(),
		}
		if r.DecidedBy() != uuid.Nil {
			by := r.DecidedBy()
			dto.DecidedBy = &by
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
