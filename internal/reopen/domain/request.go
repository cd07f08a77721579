// Package domain models case reopen requests. Reopening is two-phase: a
// police officer files a request against an archived case, and a judge
// decides it. Only an approval moves the case; a rejection touches nothing
// but the request.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrRequestNotFound   = errors.New("reopen request not found")
	ErrRequestDecided    = errors.New("reopen request is already decided")
	ErrEmptyPoliceReason = errors.New("police reason cannot be empty")
	ErrPendingExists     = errors.New("case already has a pending reopen request")
)

// Status is the decision state of a reopen request.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Request is one case reopen request.
type Request struct {
	domain.BaseEntity
	caseID       uuid.UUID
	requestedBy  uuid.UUID
	policeReason string
	status       Status
	judgeNote    string
	decidedBy    uuid.UUID
	decidedAt    *time.Time
}

// NewRequest files a reopen request.
func NewRequest(caseID, requestedBy uuid.UUID, policeReason string) (*Request, error) {
	policeReason = strings.TrimSpace(policeReason)
	if policeReason == "" {
		return nil, ErrEmptyPoliceReason
	}
	return &Request{
		BaseEntity:   domain.NewBaseEntity(),
		caseID:       caseID,
		requestedBy:  requestedBy,
		policeReason: policeReason,
		status:       StatusPending,
	}, nil
}

// RehydrateRequest recreates a request from persisted state.
func RehydrateRequest(
	entity domain.BaseEntity,
	caseID, requestedBy uuid.UUID,
	policeReason string,
	status Status,
	judgeNote string,
	decidedBy uuid.UUID,
	decidedAt *time.Time,
) *Request {
	return &Request{
		BaseEntity:   entity,
		caseID:       caseID,
		requestedBy:  requestedBy,
		policeReason: policeReason,
		status:       status,
		judgeNote:    judgeNote,
		decidedBy:    decidedBy,
		decidedAt:    decidedAt,
	}
}

func (r *Request) CaseID() uuid.UUID      { return r.caseID }
func (r *Request) RequestedBy() uuid.UUID { return r.requestedBy }
func (r *Request) PoliceReason() string   { return r.policeReason }
func (r *Request) Status() Status         { return r.status }
func (r *Request) JudgeNote() string      { return r.judgeNote }
func (r *Request) DecidedBy() uuid.UUID   { return r.decidedBy }
func (r *Request) DecidedAt() *time.Time  { return r.decidedAt }
func (r *Request) IsPending() bool        { return r.status == StatusPending }

// Approve decides the request in favor of reopening.
func (r *Request) Approve(judgeID uuid.UUID, note string) error {
	return r.decide(StatusApproved, judgeID, note)
}

// Reject decides the request against reopening.
func (r *Request) Reject(judgeID uuid.UUID, note string) error {
	return r.decide(StatusRejected, judgeID, note)
}

func (r *Request) decide(status Status, judgeID uuid.UUID, note string) error {
	if !r.IsPending() {
		return ErrRequestDecided
	}
	now := time.Now().UTC()
	r.status = status
	r.judgeNote = strings.TrimSpace(note)
	r.decidedBy = judgeID
	r.decidedAt = &now
	r.Touch()
	return nil
}

// Repository persists reopen requests.
type Repository interface {
	Save(ctx context.Context, r *Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// FindPendingByCase returns the case's pending request, if any.
	FindPendingByCase(ctx context.Context, caseID uuid.UUID) (*Request, error)
	FindByCase(ctx context.Context, caseID uuid.UUID) ([]*Request, error)
}
