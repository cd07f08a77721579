package casefile

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrNoFIR             = errors.New("case must reference a fir")
	ErrAlreadyArchived   = errors.New("case is already archived")
	ErrNotArchived       = errors.New("case is not archived")
	ErrMissingClosureURL = errors.New("closure report url cannot be empty")
	ErrEmptyCaseNumber   = errors.New("case number cannot be empty")
)

// Case is the judicial case record created atomically with its FIR. Its
// lifecycle state lives in the current-state row owned by the lifecycle
// engine; the aggregate itself carries only the archive flag and the closure
// artifact reference.
type Case struct {
	domain.BaseAggregateRoot
	firID            uuid.UUID
	caseNumber       string
	isArchived       bool
	closureReportURL string
}

// NewCase creates a case for a registered FIR.
func NewCase(firID uuid.UUID, caseNumber string) (*Case, error) {
	if firID == uuid.Nil {
		return nil, ErrNoFIR
	}
	caseNumber = strings.TrimSpace(caseNumber)
	if caseNumber == "" {
		return nil, ErrEmptyCaseNumber
	}

	c := &Case{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(),
		firID:             firID,
		caseNumber:        caseNumber,
	}

	c.AddDomainEvent(NewCaseRegistered(c.ID(), firID, caseNumber))

	return c, nil
}

// RehydrateCase recreates a case from persisted state.
func RehydrateCase(entity domain.BaseEntity, version int, firID uuid.UUID, caseNumber string, isArchived bool, closureReportURL string) *Case {
	return &Case{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(entity, version),
		firID:             firID,
		caseNumber:        caseNumber,
		isArchived:        isArchived,
		closureReportURL:  closureReportURL,
	}
}

func (c *Case) FIRID() uuid.UUID         { return c.firID }
func (c *Case) CaseNumber() string       { return c.caseNumber }
func (c *Case) IsArchived() bool         { return c.isArchived }
func (c *Case) ClosureReportURL() string { return c.closureReportURL }

// Archive marks the case archived and attaches the closure artifact.
func (c *Case) Archive(closureReportURL string) error {
	if c.isArchived {
		return ErrAlreadyArchived
	}
	if strings.TrimSpace(closureReportURL) == "" {
		return ErrMissingClosureURL
	}
	c.isArchived = true
	c.closureReportURL = closureReportURL
	c.Touch()
	return nil
}

// Unarchive clears the archive flag when a reopen request is approved.
func (c *Case) Unarchive() error {
	if !c.isArchived {
		return ErrNotArchived
	}
	c.isArchived = false
	c.Touch()
	return nil
}

// NextCaseNumber derives a case number from a FIR number and the year.
func NextCaseNumber(firNumber string, registeredAt time.Time) string {
	return fmt.Sprintf("CASE/%s/%d", firNumber, registeredAt.Year())
}
