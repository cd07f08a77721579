package casefile

import (
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Case"

	RoutingKeyRegistered   = "casefile.case.registered"
	RoutingKeyAssigned     = "casefile.case.assigned"
	RoutingKeyTransitioned = "casefile.case.transitioned"
)

// CaseRegistered is emitted when a FIR is registered and its case created.
type CaseRegistered struct {
	domain.BaseEvent
	FIRID      uuid.UUID `json:"fir_id"`
	CaseNumber string    `json:"case_number"`
}

// NewCaseRegistered creates a CaseRegistered event.
func NewCaseRegistered(caseID, firID uuid.UUID, caseNumber string) *CaseRegistered {
	return &CaseRegistered{
		BaseEvent:  domain.NewBaseEvent(caseID, AggregateType, RoutingKeyRegistered),
		FIRID:      firID,
		CaseNumber: caseNumber,
	}
}

// CaseAssigned is emitted when an assignment opens (including reassignment).
type CaseAssigned struct {
	domain.BaseEvent
	AssignedTo uuid.UUID `json:"assigned_to"`
	AssignedBy uuid.UUID `json:"assigned_by"`
	Reason     string    `json:"reason,omitempty"`
}

// NewCaseAssigned creates a CaseAssigned event.
func NewCaseAssigned(caseID, assignedTo, assignedBy uuid.UUID, reason string) *CaseAssigned {
	return &CaseAssigned{
		BaseEvent:  domain.NewBaseEvent(caseID, AggregateType, RoutingKeyAssigned),
		AssignedTo: assignedTo,
		AssignedBy: assignedBy,
		Reason:     reason,
	}
}

// CaseTransitioned is emitted exactly once per accepted lifecycle transition,
// after the state swap and history append commit.
type CaseTransitioned struct {
	domain.BaseEvent
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	ActorID   uuid.UUID `json:"actor_id"`
	ActorRole string    `json:"actor_role"`
	Reason    string    `json:"reason,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// NewCaseTransitioned creates a CaseTransitioned event from an applied transition.
func NewCaseTransitioned(applied lifecycle.Applied) *CaseTransitioned {
	return &CaseTransitioned{
		BaseEvent: domain.NewBaseEvent(applied.CaseID, AggregateType, RoutingKeyTransitioned),
		FromState: applied.FromState.String(),
		ToState:   applied.ToState.String(),
		ActorID:   applied.ActorID,
		ActorRole: applied.ActorRole.String(),
		Reason:    applied.Reason,
		ChangedAt: applied.OccurredAt,
	}
}
