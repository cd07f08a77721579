package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/casetrack/casetrack/internal/investigation/application"
	invDomain "github.com/casetrack/casetrack/internal/investigation/domain"
	"github.com/google/uuid"
)

// InvestigationHandler handles investigation record endpoints.
type InvestigationHandler struct {
	service *application.Service
	logger  *slog.Logger
}

// NewInvestigationHandler creates a new investigation handler.
func NewInvestigationHandler(service *application.Service, logger *slog.Logger) *InvestigationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvestigationHandler{service: service, logger: logger}
}

type addEventRequest struct {
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type eventDTO struct {
	EventID     uuid.UUID `json:"event_id"`
	RecordedBy  uuid.UUID `json:"recorded_by"`
	EventType   string    `json:"event_type"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func toEventDTO(e *invDomain.Event) eventDTO {
	return eventDTO{
		EventID:     e.ID(),
		RecordedBy:  e.RecordedBy(),
		EventType:   e.EventType(),
		Description: e.Description(),
		OccurredAt:  e.OccurredAt(),
	}
}

// AddEvent handles POST /api/v1/cases/{caseID}/events
func (h *InvestigationHandler) AddEvent(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req addEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.service.AddEvent(r.Context(), caseID, actor, req.EventType, req.Description, req.OccurredAt)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(event))
}

// ListEvents handles GET /api/v1/cases/{caseID}/events
func (h *InvestigationHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	events, err := h.service.Events(r.Context(), caseID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	dtos := make([]eventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, toEventDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": dtos})
}

type addEvidenceRequest struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	StorageRef  string `json:"storage_ref"`
}

type evidenceDTO struct {
	EvidenceID  uuid.UUID `json:"evidence_id"`
	RecordedBy  uuid.UUID `json:"recorded_by"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	StorageRef  string    `json:"storage_ref,omitempty"`
}

func toEvidenceDTO(e *invDomain.Evidence) evidenceDTO {
	return evidenceDTO{
		EvidenceID:  e.ID(),
		RecordedBy:  e.RecordedBy(),
		Label:       e.Label(),
		Description: e.Description(),
		StorageRef:  e.StorageRef(),
	}
}

// AddEvidence handles POST /api/v1/cases/{caseID}/evidence
func (h *InvestigationHandler) AddEvidence(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req addEvidenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	evidence, err := h.service.AddEvidence(r.Context(), caseID, actor, req.Label, req.Description, req.StorageRef)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEvidenceDTO(evidence))
}

// ListEvidence handles GET /api/v1/cases/{caseID}/evidence
func (h *InvestigationHandler) ListEvidence(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	items, err := h.service.Evidence(r.Context(), caseID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	dtos := make([]evidenceDTO, 0, len(items))
	for _, e := range items {
		dtos = append(dtos, toEvidenceDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"evidence": dtos})
}

type addWitnessRequest struct {
	Name      string `json:"name"`
	Tel       string `json:"tel"`
	Statement string `json:"statement"`
}

type witnessDTO struct {
	WitnessID  uuid.UUID `json:"witness_id"`
	RecordedBy uuid.UUID `json:"recorded_by"`
	Name       string    `json:"name"`
	Tel        string    `json:"tel,omitempty"`
	Statement  string    `json:"statement,omitempty"`
}

func toWitnessDTO(wt *invDomain.Witness) witnessDTO {
	return witnessDTO{
		WitnessID:  wt.ID(),
		RecordedBy: wt.RecordedBy(),
		Name:       wt.Name(),
		Tel:        wt.Tel(),
		Statement:  wt.Statement(),
	}
}

// AddWitness handles POST /api/v1/cases/{caseID}/witnesses
func (h *InvestigationHandler) AddWitness(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req addWitnessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	witness, err := h.service.AddWitness(r.Context(), caseID, actor, req.Name, req.Tel, req.Statement)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toWitnessDTO(witness))
}

// ListWitnesses handles GET /api/v1/cases/{caseID}/witnesses
func (h *InvestigationHandler) ListWitnesses(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	items, err := h.service.Witnesses(r.Context(), caseID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	dtos := make([]witnessDTO, 0, len(items))
	for _, wt := range items {
		dtos = append(dtos, toWitnessDTO(wt))
	}
	writeJSON(w, http.StatusOK, map[string]any{"witnesses": dtos})
}

type addAccusedRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type accusedDTO struct {
	AccusedID   uuid.UUID `json:"accused_id"`
	RecordedBy  uuid.UUID `json:"recorded_by"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
}

func toAccusedDTO(a *invDomain.Accused) accusedDTO {
	return accusedDTO{
		AccusedID:   a.ID(),
		RecordedBy:  a.RecordedBy(),
		Name:        a.Name(),
		Description: a.Description(),
		Status:      string(a.Status()),
	}
}

// AddAccused handles POST /api/v1/cases/{caseID}/accused
func (h *InvestigationHandler) AddAccused(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	var req addAccusedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var status invDomain.AccusedStatus
	if req.Status != "" {
		status, err = invDomain.ParseAccusedStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}

	accused, err := h.service.AddAccused(r.Context(), caseID, actor, req.Name, req.Description, status)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccusedDTO(accused))
}

// ListAccused handles GET /api/v1/cases/{caseID}/accused
func (h *InvestigationHandler) ListAccused(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	caseID, err := pathUUID(r, "caseID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}
	items, err := h.service.Accused(r.Context(), caseID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	dtos := make([]accusedDTO, 0, len(items))
	for _, a := range items {
		dtos = append(dtos, toAccusedDTO(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"accused": dtos})
}

type updateAccusedStatusRequest struct {
	Status string `json:"status"`
}

// UpdateAccusedStatus handles PATCH /api/v1/accused/{accusedID}/status
func (h *InvestigationHandler) UpdateAccusedStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	accusedID, err := pathUUID(r, "accusedID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid accused id")
		return
	}
	var req updateAccusedStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := invDomain.ParseAccusedStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.service.UpdateAccusedStatus(r.Context(), accusedID, actor, status); err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
