package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/casetrack/casetrack/internal/docrequest"
	"github.com/google/uuid"
)

// DocumentRequestHandler handles document request endpoints.
type DocumentRequestHandler struct {
	service *docrequest.Service
	logger  *slog.Logger
}

// NewDocumentRequestHandler creates a new document request handler.
func NewDocumentRequestHandler(service *docrequest.Service, logger *slog.Logger) *DocumentRequestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentRequestHandler{service: service, logger: logger}
}

type documentRequestDTO struct {
	RequestID    uuid.UUID  `json:"request_id"`
	CaseID       uuid.UUID  `json:"case_id"`
	RequestedBy  uuid.UUID  `json:"requested_by"`
	DocumentType string     `json:"document_type"`
	Note         string     `json:"note,omitempty"`
	Status       string     `json:"status"`
	FileURL      string     `json:"file_url,omitempty"`
	HandledBy    *uuid.UUID `json:"handled_by,omitempty"`
	HandledAt    *time.Time `json:"handled_at,omitempty"`
}

func toDocumentRequestDTO(d *docrequest.DocumentRequest) documentRequestDTO {
	dto := documentRequestDTO{
		RequestID:    d.ID(),
		CaseID:       d.CaseID(),
		RequestedBy:  d.RequestedBy(),
		DocumentType: d.DocumentType(),
		Note:         d.Note(),
		Status:       string(d.Status()),
		FileURL:      d.FileURL(),
	}
	if d.HandledBy() != uuid.Nil {
		handledBy := d.HandledBy()
		dto.HandledBy = &handledBy
		dto.HandledAt = d.HandledAt()
	}
	return dto
}

type newDocumentRequest struct {
	DocumentType string `json:"document_type"`
	Note         string `json:"note"`
}

// Request handles POST /api/v1/cases/{caseID}/document-requests
func (h *DocumentRequestHandler) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req newDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	request, err := h.service.Request(r.Context(), caseID, actor, req.DocumentType, req.Note)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentRequestDTO(request))
}

type fulfillDocumentRequest struct {
	FileURL string `json:"file_url"`
}

// Fulfill handles POST /api/v1/document-requests/{requestID}/fulfill
func (h *DocumentRequestHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req fulfillDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Fulfill(r.Context(), requestID, actor, req.FileURL); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(docrequest.StatusFulfilled)})
}

type rejectDocumentRequest struct {
	Note string `json:"note"`
}

// Reject handles POST /api/v1/document-requests/{requestID}/reject
func (h *DocumentRequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	requestID, err := pathUUID(r, "requestID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}
	var req rejectDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Reject(r.Context(), requestID, actor, req.Note); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(docrequest.StatusRejected)})
}

// ListByCase handles GET /api/v1/cases/{caseID}/document-requests
func (h *DocumentRequestHandler) ListByCase(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	requests, err := h.service.ListByCase(r.Context(), caseID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	dtos := make([]documentRequestDTO, 0, len(requests))
	for _, d := range requests {
		dtos = append(dtos, toDocumentRequestDTO(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": dtos})
}
