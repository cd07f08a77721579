// Package queries holds the read-side handlers of the court context.
package queries

import (
	"context"
	"time"

	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	"github.com/google/uuid"
)

// CaseSubmissionsQuery lists the submissions of a case, newest version first.
type CaseSubmissionsQuery struct {
	CaseID uuid.UUID
}

// AcknowledgementDTO is one acknowledgement of a submission.
type AcknowledgementDTO struct {
	AcknowledgementID uuid.UUID `json:"acknowledgement_id"`
	AckNumber         string    `json:"ack_number"`
	AcknowledgedBy    uuid.UUID `json:"acknowledged_by"`
	AcknowledgedAt    time.Time `json:"acknowledged_at"`
}

// SubmissionDTO is one submission row.
type SubmissionDTO struct {
	SubmissionID      uuid.UUID            `json:"submission_id"`
	CourtID           uuid.UUID            `json:"court_id"`
	SubmittedBy       uuid.UUID            `json:"submitted_by"`
	Type              string               `json:"type"`
	Version           int                  `json:"version"`
	Status            string               `json:"status"`
	DefectsNote       string               `json:"defects_note,omitempty"`
	SubmittedAt       time.Time            `json:"submitted_at"`
	Acknowledgements  []AcknowledgementDTO `json:"acknowledgements,omitempty"`
}

// CaseSubmissionsHandler handles the CaseSubmissionsQuery.
type CaseSubmissionsHandler struct {
	submissionRepo courtDomain.SubmissionRepository
}

// NewCaseSubmissionsHandler creates a new CaseSubmissionsHandler.
func NewCaseSubmissionsHandler(submissionRepo courtDomain.SubmissionRepository) *CaseSubmissionsHandler {
	return &CaseSubmissionsHandler{submissionRepo: submissionRepo}
}

// Handle executes the CaseSubmissionsQuery.
func (h *CaseSubmissionsHandler) Handle(ctx context.Context, query CaseSubmissionsQuery) ([]SubmissionDTO, error) {
	subs, err := h.submissionRepo.FindByCase(ctx, query.CaseID)
	if err != nil {
		return nil, err
	}

	dtos := make([]SubmissionDTO, 0, len(subs))
	for _, s := range subs {
		dto := SubmissionDTO{
			SubmissionID: s.ID(),
			CourtID:      s.CourtID(),
			SubmittedBy:  s.SubmittedBy(),
			Type:         string(s.Type()),
			Version:      s.Version(),
			Status:       string(s.Status()),
			DefectsNote:  s.DefectsNote(),
			SubmittedAt:  s.SubmittedAt(),
		}

		acks, err := h.submissionRepo.FindAcknowledgements(ctx, s.ID())
		if err != nil {
			return nil, err
		}
		for _, a := range acks {
			dto.Acknowledgements = append(dto.Acknowledgements, AcknowledgementDTO{
				AcknowledgementID: a.ID(),
				AckNumber:         a.AckNumber(),
				AcknowledgedBy:    a.AcknowledgedBy(),
				AcknowledgedAt:    a.AcknowledgedAt(),
			})
		}

		dtos = append(dtos, dto)
	}
	return dtos, nil
}
