package queries

import (
	"context"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	"github.com/google/uuid"
)

// ListCasesQuery lists the cases of a police station.
type ListCasesQuery struct {
	PoliceStationID uuid.UUID
	State           string
	Page            sharedApplication.Page
}

// ListCasesResult contains one page of cases.
type ListCasesResult struct {
	Cases    []CaseSummary             `json:"cases"`
	PageInfo sharedApplication.PageInfo `json:"page_info"`
}

// ListCasesHandler handles the ListCasesQuery.
type ListCasesHandler struct {
	reader CaseReader
}

// NewListCasesHandler creates a new ListCasesHandler.
func NewListCasesHandler(reader CaseReader) *ListCasesHandler {
	return &ListCasesHandler{reader: reader}
}

// Handle executes the ListCasesQuery.
func (h *ListCasesHandler) Handle(ctx context.Context, query ListCasesQuery) (*ListCasesResult, error) {
	if query.State != "" {
		if _, err := lifecycle.ParseState(query.State); err != nil {
			return nil, err
		}
	}

	page := query.Page.Normalize()
	cases, total, err := h.reader.ListByStation(ctx, query.PoliceStationID, query.State, page)
	if err != nil {
		return nil, err
	}

	return &ListCasesResult{
		Cases:    cases,
		PageInfo: sharedApplication.NewPageInfo(page, total),
	}, nil
}
