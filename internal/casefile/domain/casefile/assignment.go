package casefile

import (
	"errors"
	"time"

	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var ErrAssignmentClosed = errors.New("assignment is already closed")

// Assignment records who is working a case. At most one assignment per case
// is active (unassignedAt == nil) at a time; reassignment closes the previous
// record and opens a new one. Assignment identity is deliberately separate
// from lifecycle state.
type Assignment struct {
	domain.BaseEntity
	caseID           uuid.UUID
	assignedTo       uuid.UUID
	assignedBy       uuid.UUID
	assignmentReason string
	assignedAt       time.Time
	unassignedAt     *time.Time
}

// NewAssignment opens a new assignment for a case.
func NewAssignment(caseID, assignedTo, assignedBy uuid.UUID, reason string) *Assignment {
	now := time.Now().UTC()
	return &Assignment{
		BaseEntity:       domain.NewBaseEntity(),
		caseID:           caseID,
		assignedTo:       assignedTo,
		assignedBy:       assignedBy,
		assignmentReason: reason,
		assignedAt:       now,
	}
}

// RehydrateAssignment recreates an assignment from persisted state.
func RehydrateAssignment(entity domain.BaseEntity, caseID, assignedTo, assignedBy uuid.UUID, reason string, assignedAt time.Time, unassignedAt *time.Time) *Assignment {
	return &Assignment{
		BaseEntity:       entity,
		caseID:           caseID,
		assignedTo:       assignedTo,
		assignedBy:       assignedBy,
		assignmentReason: reason,
		assignedAt:       assignedAt,
		unassignedAt:     unassignedAt,
	}
}

func (a *Assignment) CaseID() uuid.UUID        { return a.caseID }
func (a *Assignment) AssignedTo() uuid.UUID    { return a.assignedTo }
func (a *Assignment) AssignedBy() uuid.UUID    { return a.assignedBy }
func (a *Assignment) AssignmentReason() string { return a.assignmentReason }
func (a *Assignment) AssignedAt() time.Time    { return a.assignedAt }
func (a *Assignment) UnassignedAt() *time.Time { return a.unassignedAt }
func (a *Assignment) IsActive() bool           { return a.unassignedAt == nil }

// Close ends the assignment.
func (a *Assignment) Close() error {
	if a.unassignedAt != nil {
		return ErrAssignmentClosed
	}
	now := time.Now().UTC()
	a.unassignedAt = &now
	a.Touch()
	return nil
}
