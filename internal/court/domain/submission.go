// Package domain models the court-side records: submissions of a case to a
// court, intake acknowledgements and judicial actions. Lifecycle moves stay
// with the engine; these entities record the paperwork around them.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrNoPendingSubmission = errors.New("case has no pending submission")
	ErrSubmissionSettled   = errors.New("submission is already settled")
)

// SubmissionType distinguishes prosecution from closure submissions.
type SubmissionType string

const (
	SubmissionChargeSheet   SubmissionType = "CHARGE_SHEET"
	SubmissionClosureReport SubmissionType = "CLOSURE_REPORT"
)

// ParseSubmissionType validates a raw submission type.
func ParseSubmissionType(raw string) (SubmissionType, error) {
	switch t := SubmissionType(raw); t {
	case SubmissionChargeSheet, SubmissionClosureReport:
		return t, nil
	default:
		return "", fmt.Errorf("unknown submission type %q", raw)
	}
}

// SubmissionStatus is the clerk-side status of one submission.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "PENDING"
	SubmissionAccepted SubmissionStatus = "ACCEPTED"
	SubmissionReturned SubmissionStatus = "RETURNED"
)

// Submission is one delivery of a case to a court. Each resubmission opens a
// new record with an incremented version; earlier records keep their final
// status.
type Submission struct {
	domain.BaseEntity
	caseID            uuid.UUID
	courtID           uuid.UUID
	submittedBy       uuid.UUID
	submissionType    SubmissionType
	submissionVersion int
	status            SubmissionStatus
	defectsNote       string
	submittedAt       time.Time
}

// NewSubmission opens a submission at the given version.
func NewSubmission(caseID, courtID, submittedBy uuid.UUID, submissionType SubmissionType, version int) *Submission {
	return &Submission{
		BaseEntity:        domain.NewBaseEntity(),
		caseID:            caseID,
		courtID:           courtID,
		submittedBy:       submittedBy,
		submissionType:    submissionType,
		submissionVersion: version,
		status:            SubmissionPending,
		submittedAt:       time.Now().UTC(),
	}
}

// RehydrateSubmission recreates a submission from persisted state.
func RehydrateSubmission(
	entity domain.BaseEntity,
	caseID, courtID, submittedBy uuid.UUID,
	submissionType SubmissionType,
	version int,
	status SubmissionStatus,
	defectsNote string,
	submittedAt time.Time,
) *Submission {
	return &Submission{
		BaseEntity:        entity,
		caseID:            caseID,
		courtID:           courtID,
		submittedBy:       submittedBy,
		submissionType:    submissionType,
		submissionVersion: version,
		status:            status,
		defectsNote:       defectsNote,
		submittedAt:       submittedAt,
	}
}

func (s *Submission) CaseID() uuid.UUID              { return s.caseID }
func (s *Submission) CourtID() uuid.UUID             { return s.courtID }
func (s *Submission) SubmittedBy() uuid.UUID         { return s.submittedBy }
func (s *Submission) Type() SubmissionType           { return s.submissionType }
func (s *Submission) Version() int                   { return s.submissionVersion }
func (s *Submission) Status() SubmissionStatus       { return s.status }
func (s *Submission) DefectsNote() string            { return s.defectsNote }
func (s *Submission) SubmittedAt() time.Time         { return s.submittedAt }
func (s *Submission) IsPending() bool                { return s.status == SubmissionPending }

// Accept settles the submission as accepted.
func (s *Submission) Accept() error {
	if !s.IsPending() {
		return ErrSubmissionSettled
	}
	s.status = SubmissionAccepted
	s.Touch()
	return nil
}

// Return settles the submission as returned for defects.
func (s *Submission) Return(defectsNote string) error {
	if !s.IsPending() {
		return ErrSubmissionSettled
	}
	s.status = SubmissionReturned
	s.defectsNote = defectsNote
	s.Touch()
	return nil
}

// Acknowledgement is the clerk's intake receipt for an accepted submission.
type Acknowledgement struct {
	domain.BaseEntity
	submissionID   uuid.UUID
	ackNumber      string
	acknowledgedBy uuid.UUID
	acknowledgedAt time.Time
}

// NewAcknowledgement creates an acknowledgement for a submission.
func NewAcknowledgement(submissionID, acknowledgedBy uuid.UUID, ackNumber string) *Acknowledgement {
	return &Acknowledgement{
		BaseEntity:     domain.NewBaseEntity(),
		submissionID:   submissionID,
		ackNumber:      ackNumber,
		acknowledgedBy: acknowledgedBy,
		acknowledgedAt: time.Now().UTC(),
	}
}

// RehydrateAcknowledgement recreates an acknowledgement from persisted state.
func RehydrateAcknowledgement(entity domain.BaseEntity, submissionID, acknowledgedBy uuid.UUID, ackNumber string, acknowledgedAt time.Time) *Acknowledgement {
	return &Acknowledgement{
		BaseEntity:     entity,
		submissionID:   submissionID,
		ackNumber:      ackNumber,
		acknowledgedBy: acknowledgedBy,
		acknowledgedAt: acknowledgedAt,
	}
}

func (a *Acknowledgement) SubmissionID() uuid.UUID   { return a.submissionID }
func (a *Acknowledgement) AckNumber() string         { return a.ackNumber }
func (a *Acknowledgement) AcknowledgedBy() uuid.UUID { return a.acknowledgedBy }
func (a *Acknowledgement) AcknowledgedAt() time.Time { return a.acknowledgedAt }

// SubmissionRepository persists submissions and acknowledgements.
type SubmissionRepository interface {
	Save(ctx context.Context, s *Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	// FindPending returns the case's pending submission, if any.
	FindPending(ctx context.Context, caseID uuid.UUID) (*Submission, error)
	FindByCase(ctx context.Context, caseID uuid.UUID) ([]*Submission, error)
	// LatestVersion returns the highest submission version for the case, 0
	// when none exist.
	LatestVersion(ctx context.Context, caseID uuid.UUID) (int, error)
	SaveAcknowledgement(ctx context.Context, a *Acknowledgement) error
	FindAcknowledgements(ctx context.Context, submissionID uuid.UUID) ([]*Acknowledgement, error)
}
