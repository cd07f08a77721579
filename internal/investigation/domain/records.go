// Package domain models the investigation record of a case: chronological
// events, seized evidence, witnesses and accused persons. Records are scoped
// to the case's police station; writing them requires holding the active
// assignment (police) or SHO rank.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrRecordNotFound = errors.New("investigation record not found")
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrEmptyName      = errors.New("name cannot be empty")
)

// Event is one chronological entry of the investigation diary.
type Event struct {
	domain.BaseEntity
	caseID      uuid.UUID
	recordedBy  uuid.UUID
	eventType   string
	description string
	occurredAt  time.Time
}

// NewEvent records an investigation event.
func NewEvent(caseID, recordedBy uuid.UUID, eventType, description string, occurredAt time.Time) (*Event, error) {
	eventType = strings.TrimSpace(eventType)
	if eventType == "" {
		return nil, ErrEmptyTitle
	}
	return &Event{
		BaseEntity:  domain.NewBaseEntity(),
		caseID:      caseID,
		recordedBy:  recordedBy,
		eventType:   eventType,
		description: description,
		occurredAt:  occurredAt,
	}, nil
}

// RehydrateEvent recreates an event from persisted state.
func RehydrateEvent(entity domain.BaseEntity, caseID, recordedBy uuid.UUID, eventType, description string, occurredAt time.Time) *Event {
	return &Event{BaseEntity: entity, caseID: caseID, recordedBy: recordedBy, eventType: eventType, description: description, occurredAt: occurredAt}
}

func (e *Event) CaseID() uuid.UUID     { return e.caseID }
func (e *Event) RecordedBy() uuid.UUID { return e.recordedBy }
func (e *Event) EventType() string     { return e.eventType }
func (e *Event) Description() string   { return e.description }
func (e *Event) OccurredAt() time.Time { return e.occurredAt }

// Evidence is one seized or collected item.
type Evidence struct {
	domain.BaseEntity
	caseID      uuid.UUID
	recordedBy  uuid.UUID
	label       string
	description string
	storageRef  string
}

// NewEvidence records an evidence item.
func NewEvidence(caseID, recordedBy uuid.UUID, label, description, storageRef string) (*Evidence, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrEmptyTitle
	}
	return &Evidence{
		BaseEntity:  domain.NewBaseEntity(),
		caseID:      caseID,
		recordedBy:  recordedBy,
		label:       label,
		description: description,
		storageRef:  storageRef,
	}, nil
}

// RehydrateEvidence recreates an evidence item from persisted state.
func RehydrateEvidence(entity domain.BaseEntity, caseID, recordedBy uuid.UUID, label, description, storageRef string) *Evidence {
	return &Evidence{BaseEntity: entity, caseID: caseID, recordedBy: recordedBy, label: label, description: description, storageRef: storageRef}
}

func (e *Evidence) CaseID() uuid.UUID     { return e.caseID }
func (e *Evidence) RecordedBy() uuid.UUID { return e.recordedBy }
func (e *Evidence) Label() string         { return e.label }
func (e *Evidence) Description() string   { return e.description }
func (e *Evidence) StorageRef() string    { return e.storageRef }

// Witness is one recorded witness and statement.
type Witness struct {
	domain.BaseEntity
	caseID     uuid.UUID
	recordedBy uuid.UUID
	name       string
	tel        string
	statement  string
}

// NewWitness records a witness.
func NewWitness(caseID, recordedBy uuid.UUID, name, tel, statement string) (*Witness, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Witness{
		BaseEntity: domain.NewBaseEntity(),
		caseID:     caseID,
		recordedBy: recordedBy,
		name:       name,
		tel:        tel,
		statement:  statement,
	}, nil
}

// RehydrateWitness recreates a witness from persisted state.
func RehydrateWitness(entity domain.BaseEntity, caseID, recordedBy uuid.UUID, name, tel, statement string) *Witness {
	return &Witness{BaseEntity: entity, caseID: caseID, recordedBy: recordedBy, name: name, tel: tel, statement: statement}
}

func (w *Witness) CaseID() uuid.UUID     { return w.caseID }
func (w *Witness) RecordedBy() uuid.UUID { return w.recordedBy }
func (w *Witness) Name() string          { return w.name }
func (w *Witness) Tel() string           { return w.tel }
func (w *Witness) Statement() string     { return w.statement }

// AccusedStatus is the custody status of an accused person.
type AccusedStatus string

const (
	AccusedAbsconding AccusedStatus = "ABSCONDING"
	AccusedArrested   AccusedStatus = "ARRESTED"
	AccusedBailed     AccusedStatus = "BAILED"
)

// ParseAccusedStatus validates a raw string against the known statuses.
func ParseAccusedStatus(raw string) (AccusedStatus, error) {
	switch s := AccusedStatus(raw); s {
	case AccusedAbsconding, AccusedArrested, AccusedBailed:
		return s, nil
	default:
		return "", fmt.Errorf("unknown accused status %q", raw)
	}
}

// Accused is one accused person on the case.
type Accused struct {
	domain.BaseEntity
	caseID      uuid.UUID
	recordedBy  uuid.UUID
	name        string
	description string
	status      AccusedStatus
}

// NewAccused records an accused person.
func NewAccused(caseID, recordedBy uuid.UUID, name, description string, status AccusedStatus) (*Accused, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if status == "" {
		status = AccusedAbsconding
	}
	return &Accused{
		BaseEntity:  domain.NewBaseEntity(),
		caseID:      caseID,
		recordedBy:  recordedBy,
		name:        name,
		description: description,
		status:      status,
	}, nil
}

// RehydrateAccused recreates an accused person from persisted state.
func RehydrateAccused(entity domain.BaseEntity, caseID, recordedBy uuid.UUID, name, description string, status AccusedStatus) *Accused {
	return &Accused{BaseEntity: entity, caseID: caseID, recordedBy: recordedBy, name: name, description: description, status: status}
}

func (a *Accused) CaseID() uuid.UUID     { return a.caseID }
func (a *Accused) RecordedBy() uuid.UUID { return a.recordedBy }
func (a *Accused) Name() string          { return a.name }
func (a *Accused) Description() string   { return a.description }
func (a *Accused) Status() AccusedStatus { return a.status }

// SetStatus updates the custody status.
func (a *Accused) SetStatus(status AccusedStatus) {
	a.status = status
	a.Touch()
}

// Repository persists the investigation record of a case.
type Repository interface {
	SaveEvent(ctx context.Context, e *Event) error
	EventsByCase(ctx context.Context, caseID uuid.UUID) ([]*Event, error)

	SaveEvidence(ctx context.Context, e *Evidence) error
	EvidenceByCase(ctx context.Context, caseID uuid.UUID) ([]*Evidence, error)

	SaveWitness(ctx context.Context, w *Witness) error
	WitnessesByCase(ctx context.Context, caseID uuid.UUID) ([]*Witness, error)

	SaveAccused(ctx context.Context, a *Accused) error
	FindAccused(ctx context.Context, id uuid.UUID) (*Accused, error)
	AccusedByCase(ctx context.Context, caseID uuid.UUID) ([]*Accused, error)
}
