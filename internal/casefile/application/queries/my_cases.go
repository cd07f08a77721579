package queries

import (
	"context"

	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// MyCasesQuery lists the cases currently assigned to an officer.
type MyCasesQuery struct {
	AssigneeID uuid.UUID
	Page       sharedApplication.Page
}

// MyCasesHandler handles the MyCasesQuery.
type MyCasesHandler struct {
	reader CaseReader
}

// NewMyCasesHandler creates a new MyCasesHandler.
func NewMyCasesHandler(reader CaseReader) *MyCasesHandler {
	return &MyCasesHandler{reader: reader}
}

// Handle executes the MyCasesQuery.
func (h *MyCasesHandler) Handle(ctx context.Context, query MyCasesQuery) (*ListCasesResult, error) {
	page := query.Page.Normalize()
	cases, total, err := h.reader.ListByAssignee(ctx, query.AssigneeID, page)
	if err != nil {
		return nil, err
	}

	return &ListCasesResult{
		Cases:    cases,
		PageInfo: sharedApplication.NewPageInfo(page, total),
	}, nil
}
