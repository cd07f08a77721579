package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

// ActionType is a judicial action recorded against an accepted case.
type ActionType string

const (
	ActionCognizance ActionType = "COGNIZANCE"
	ActionJudgment   ActionType = "JUDGMENT"
	ActionDisposal   ActionType = "DISPOSAL"
	// ActionAppeal is recorded without a lifecycle move; APPEALED has no
	// inbound edge in the guard table.
	ActionAppeal ActionType = "APPEAL"
)

// ParseActionType validates a raw action type.
func ParseActionType(raw string) (ActionType, error) {
	switch t := ActionType(raw); t {
	case ActionCognizance, ActionJudgment, ActionDisposal, ActionAppeal:
		return t, nil
	default:
		return "", fmt.Errorf("unknown court action type %q", raw)
	}
}

// TargetState returns the lifecycle state the action moves the case to, and
// whether it moves the case at all.
func (t ActionType) TargetState() (lifecycle.State, bool) {
	switch t {
	case ActionCognizance:
		return lifecycle.StateTrialOngoing, true
	case ActionJudgment:
		return lifecycle.StateJudgmentReserved, true
	case ActionDisposal:
		return lifecycle.StateDisposed, true
	default:
		return "", false
	}
}

// CourtAction is one recorded judicial action.
type CourtAction struct {
	domain.BaseEntity
	caseID     uuid.UUID
	courtID    uuid.UUID
	actionType ActionType
	note       string
	takenBy    uuid.UUID
	takenAt    time.Time
}

// NewCourtAction records a judicial action.
func NewCourtAction(caseID, courtID, takenBy uuid.UUID, actionType ActionType, note string) *CourtAction {
	return &CourtAction{
		BaseEntity: domain.NewBaseEntity(),
		caseID:     caseID,
		courtID:    courtID,
		actionType: actionType,
		note:       note,
		takenBy:    takenBy,
		takenAt:    time.Now().UTC(),
	}
}

// RehydrateCourtAction recreates a court action from persisted state.
func RehydrateCourtAction(entity domain.BaseEntity, caseID, courtID, takenBy uuid.UUID, actionType ActionType, note string, takenAt time.Time) *CourtAction {
	return &CourtAction{
		BaseEntity: entity,
		caseID:     caseID,
		courtID:    courtID,
		actionType: actionType,
		note:       note,
		takenBy:    takenBy,
		takenAt:    takenAt,
	}
}

func (a *CourtAction) CaseID() uuid.UUID  { return a.caseID }
func (a *CourtAction) CourtID() uuid.UUID { return a.courtID }
func (a *CourtAction) Type() ActionType   { return a.actionType }
func (a *CourtAction) Note() string       { return a.note }
func (a *CourtAction) TakenBy() uuid.UUID { return a.takenBy }
func (a *CourtAction) TakenAt() time.Time { return a.takenAt }

// CourtActionRepository persists court actions.
type CourtActionRepository interface {
	Save(ctx context.Context, a *CourtAction) error
	FindByCase(ctx context.Context, caseID uuid.UUID) ([]*CourtAction, error)
}
