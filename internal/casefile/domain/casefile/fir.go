package casefile

import (
	"errors"
	"strings"
	"time"

	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyFIRNumber       = errors.New("fir number cannot be empty")
	ErrEmptyComplainantName = errors.New("complainant name cannot be empty")
	ErrNoPoliceStation      = errors.New("fir must belong to a police station")
)

// FIR is the First Information Report: the originating incident record from
// which a case is created.
type FIR struct {
	domain.BaseEntity
	firNumber       string
	policeStationID uuid.UUID
	registeredBy    uuid.UUID
	complainantName string
	complainantTel  string
	incidentDate    time.Time
	description     string
	sectionsApplied []string
	documentURL     string
}

// NewFIR registers a new FIR.
func NewFIR(policeStationID, registeredBy uuid.UUID, firNumber, complainantName string, incidentDate time.Time) (*FIR, error) {
	firNumber = strings.TrimSpace(firNumber)
	if firNumber == "" {
		return nil, ErrEmptyFIRNumber
	}
	complainantName = strings.TrimSpace(complainantName)
	if complainantName == "" {
		return nil, ErrEmptyComplainantName
	}
	if policeStationID == uuid.Nil {
		return nil, ErrNoPoliceStation
	}

	return &FIR{
		BaseEntity:      domain.NewBaseEntity(),
		firNumber:       firNumber,
		policeStationID: policeStationID,
		registeredBy:    registeredBy,
		complainantName: complainantName,
		incidentDate:    incidentDate,
	}, nil
}

// RehydrateFIR recreates a FIR from persisted state.
func RehydrateFIR(
	entity domain.BaseEntity,
	firNumber string,
	policeStationID, registeredBy uuid.UUID,
	complainantName, complainantTel string,
	incidentDate time.Time,
	description string,
	sectionsApplied []string,
	documentURL string,
) *FIR {
	return &FIR{
		BaseEntity:      entity,
		firNumber:       firNumber,
		policeStationID: policeStationID,
		registeredBy:    registeredBy,
		complainantName: complainantName,
		complainantTel:  complainantTel,
		incidentDate:    incidentDate,
		description:     description,
		sectionsApplied: sectionsApplied,
		documentURL:     documentURL,
	}
}

func (f *FIR) FIRNumber() string          { return f.firNumber }
func (f *FIR) PoliceStationID() uuid.UUID { return f.policeStationID }
func (f *FIR) RegisteredBy() uuid.UUID    { return f.registeredBy }
func (f *FIR) ComplainantName() string    { return f.complainantName }
func (f *FIR) ComplainantTel() string     { return f.complainantTel }
func (f *FIR) IncidentDate() time.Time    { return f.incidentDate }
func (f *FIR) Description() string        { return f.description }
func (f *FIR) SectionsApplied() []string  { return f.sectionsApplied }
func (f *FIR) DocumentURL() string        { return f.documentURL }

// SetDetails fills the optional narrative fields.
func (f *FIR) SetDetails(description, complainantTel string, sectionsApplied []string, documentURL string) {
	f.description = strings.TrimSpace(description)
	f.complainantTel = strings.TrimSpace(complainantTel)
	f.sectionsApplied = sectionsApplied
	f.documentURL = documentURL
	f.Touch()
}
