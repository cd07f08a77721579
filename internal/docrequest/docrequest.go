// Package docrequest implements the document request workflow: police ask
// for case documents, SHO or court staff fulfill with a file URL or reject
// with a note.
package docrequest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/casetrack/casetrack/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("document request not found")
	ErrAlreadyHandled  = errors.New("document request is already handled")
	ErrEmptyDocType    = errors.New("document type cannot be empty")
	ErrEmptyFileURL    = errors.New("file url cannot be empty")
	ErrEmptyRejectNote = errors.New("a note is required to reject a document request")
)

// Status is the handling state of a document request.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusFulfilled Status = "FULFILLED"
	StatusRejected  Status = "REJECTED"
)

// DocumentRequest is one request for a case document.
type DocumentRequest struct {
	domain.BaseEntity
	caseID       uuid.UUID
	requestedBy  uuid.UUID
	documentType string
	note         string
	status       Status
	fileURL      string
	handledBy    uuid.UUID
	handledAt    *time.Time
}

// New files a document request.
func New(caseID, requestedBy uuid.UUID, documentType, note string) (*DocumentRequest, error) {
	documentType = strings.TrimSpace(documentType)
	if documentType == "" {
		return nil, ErrEmptyDocType
	}
	return &DocumentRequest{
		BaseEntity:   domain.NewBaseEntity(),
		caseID:       caseID,
		requestedBy:  requestedBy,
		documentType: documentType,
		note:         strings.TrimSpace(note),
		status:       StatusRequested,
	}, nil
}

// Rehydrate recreates a document request from persisted state.
func Rehydrate(
	entity domain.BaseEntity,
	caseID, requestedBy uuid.UUID,
	documentType, note string,
	status Status,
	fileURL string,
	handledBy uuid.UUID,
	handledAt *time.Time,
) *DocumentRequest {
	return &DocumentRequest{
		BaseEntity:   entity,
		caseID:       caseID,
		requestedBy:  requestedBy,
		documentType: documentType,
		note:         note,
		status:       status,
		fileURL:      fileURL,
		handledBy:    handledBy,
		handledAt:    handledAt,
	}
}

func (d *DocumentRequest) CaseID() uuid.UUID      { return d.caseID }
func (d *DocumentRequest) RequestedBy() uuid.UUID { return d.requestedBy }
func (d *DocumentRequest) DocumentType() string   { return d.documentType }
func (d *DocumentRequest) Note() string           { return d.note }
func (d *DocumentRequest) Status() Status         { return d.status }
func (d *DocumentRequest) FileURL() string        { return d.fileURL }
func (d *DocumentRequest) HandledBy() uuid.UUID   { return d.handledBy }
func (d *DocumentRequest) HandledAt() *time.Time  { return d.handledAt }
func (d *DocumentRequest) IsOpen() bool           { return d.status == StatusRequested }

// Fulfill attaches the file and settles the request.
func (d *DocumentRequest) Fulfill(handledBy uuid.UUID, fileURL string) error {
	if !d.IsOpen() {
		return ErrAlreadyHandled
	}
	if strings.TrimSpace(fileURL) == "" {
		return ErrEmptyFileURL
	}
	now := time.Now().UTC()
	d.status = StatusFulfilled
	d.fileURL = fileURL
	d.handledBy = handledBy
	d.handledAt = &now
	d.Touch()
	return nil
}

// Reject settles the request without a file.
func (d *DocumentRequest) Reject(handledBy uuid.UUID, note string) error {
	if !d.IsOpen() {
		return ErrAlreadyHandled
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrEmptyRejectNote
	}
	now := time.Now().UTC()
	d.status = StatusRejected
	d.note = note
	d.handledBy = handledBy
	d.handledAt = &now
	d.Touch()
	return nil
}

// Repository persists document requests.
type Repository interface {
	Save(ctx context.Context, d *DocumentRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*DocumentRequest, error)
	FindByCase(ctx context.Context, caseID uuid.UUID) ([]*DocumentRequest, error)
}
