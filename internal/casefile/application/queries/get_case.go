package queries

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/casefile/infrastructure/cache"
	"github.com/google/uuid"
)

// GetCaseQuery retrieves the full detail projection of one case.
type GetCaseQuery struct {
	CaseID uuid.UUID
}

// FIRDetail is the FIR portion of a case detail.
type FIRDetail struct {
	FIRID           uuid.UUID `json:"fir_id"`
	FIRNumber       string    `json:"fir_number"`
	PoliceStationID uuid.UUID `json:"police_station_id"`
	RegisteredBy    uuid.UUID `json:"registered_by"`
	ComplainantName string    `json:"complainant_name"`
	ComplainantTel  string    `json:"complainant_tel,omitempty"`
	IncidentDate    time.Time `json:"incident_date"`
	Description     string    `json:"description,omitempty"`
	SectionsApplied []string  `json:"sections_applied,omitempty"`
	DocumentURL     string    `json:"document_url,omitempty"`
}

// AssignmentDetail is the active-assignment portion of a case detail.
type AssignmentDetail struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	AssignedTo   uuid.UUID `json:"assigned_to"`
	AssignedBy   uuid.UUID `json:"assigned_by"`
	Reason       string    `json:"reason,omitempty"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// CaseDetail is the cached case detail projection.
type CaseDetail struct {
	CaseID           uuid.UUID         `json:"case_id"`
	CaseNumber       string            `json:"case_number"`
	CurrentState     string            `json:"current_state"`
	IsArchived       bool              `json:"is_archived"`
	ClosureReportURL string            `json:"closure_report_url,omitempty"`
	FIR              FIRDetail         `json:"fir"`
	Assignment       *AssignmentDetail `json:"assignment,omitempty"`
}

// GetCaseHandler handles the GetCaseQuery.
type GetCaseHandler struct {
	caseRepo       casefile.Repository
	firRepo        casefile.FIRRepository
	assignmentRepo casefile.AssignmentRepository
	stateRepo      casefile.StateRepository
	caseCache      cache.CaseCache
	logger         *slog.Logger
}

// NewGetCaseHandler creates a new GetCaseHandler.
func NewGetCaseHandler(
	caseRepo casefile.Repository,
	firRepo casefile.FIRRepository,
	assignmentRepo casefile.AssignmentRepository,
	stateRepo casefile.StateRepository,
	caseCache cache.CaseCache,
	logger *slog.Logger,
) *GetCaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetCaseHandler{
		caseRepo:       caseRepo,
		firRepo:        firRepo,
		assignmentRepo: assignmentRepo,
		stateRepo:      stateRepo,
		caseCache:      caseCache,
		logger:         logger,
	}
}

// Handle executes the GetCaseQuery. The cache is consulted first; on miss the
// projection is composed from the repositories and written back best effort.
func (h *GetCaseHandler) Handle(ctx context.Context, query GetCaseQuery) (*CaseDetail, error) {
	if cached, err := h.caseCache.Get(ctx, query.CaseID); err == nil {
		var detail CaseDetail
		if err := json.Unmarshal(cached, &detail); err == nil {
			return &detail, nil
		}
		// Unreadable entry; drop it and fall through to the database.
		_ = h.caseCache.Invalidate(ctx, query.CaseID)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		h.logger.Warn("case cache read failed", "case_id", query.CaseID, "error", err)
	}

	detail, err := h.compose(ctx, query.CaseID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(detail); err == nil {
		if err := h.caseCache.Set(ctx, query.CaseID, payload); err != nil {
			h.logger.Warn("case cache write failed", "case_id", query.CaseID, "error", err)
		}
	}

	return detail, nil
}

func (h *GetCaseHandler) compose(ctx context.Context, caseID uuid.UUID) (*CaseDetail, error) {
	c, err := h.caseRepo.FindByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	fir, err := h.firRepo.FindByID(ctx, c.FIRID())
	if err != nil {
		return nil, err
	}

	state, err := h.stateRepo.CurrentState(ctx, caseID)
	if err != nil {
		return nil, err
	}

	detail := &CaseDetail{
		CaseID:           c.ID(),
		CaseNumber:       c.CaseNumber(),
		CurrentState:     state.String(),
		IsArchived:       c.IsArchived(),
		ClosureReportURL: c.ClosureReportURL(),
		FIR: FIRDetail{
			FIRID:           fir.ID(),
			FIRNumber:       fir.FIRNumber(),
			PoliceStationID: fir.PoliceStationID(),
			RegisteredBy:    fir.RegisteredBy(),
			ComplainantName: fir.ComplainantName(),
			ComplainantTel:  fir.ComplainantTel(),
			IncidentDate:    fir.IncidentDate(),
			Description:     fir.Description(),
			SectionsApplied: fir.SectionsApplied(),
			DocumentURL:     fir.DocumentURL(),
		},
	}

	assignment, err := h.assignmentRepo.FindActive(ctx, caseID)
	switch {
	case err == nil:
		detail.Assignment = &AssignmentDetail{
			AssignmentID: assignment.ID(),
			AssignedTo:   assignment.AssignedTo(),
			AssignedBy:   assignment.AssignedBy(),
			Reason:       assignment.AssignmentReason(),
			AssignedAt:   assignment.AssignedAt(),
		}
	case errors.Is(err, casefile.ErrNoActiveAssignment):
		// Unassigned case; no assignment block.
	default:
		return nil, err
	}

	return detail, nil
}
