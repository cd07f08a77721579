// Package api provides the HTTP API for the case tracking service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/casetrack/casetrack/pkg/observability"
	"github.com/google/uuid"
)

// Server is the HTTP API server.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
	logger *slog.Logger
	health *observability.HealthRegistry

	auth          *AuthMiddleware
	cases         *CaseHandler
	court         *CourtHandler
	reopen        *ReopenHandler
	investigation *InvestigationHandler
	documents     *DocumentRequestHandler
	assist        *AssistHandler
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handlers bundles the route handlers for the server.
type Handlers struct {
	Auth          *AuthMiddleware
	Cases         *CaseHandler
	Court         *CourtHandler
	Reopen        *ReopenHandler
	Investigation *InvestigationHandler
	Documents     *DocumentRequestHandler
	Assist        *AssistHandler
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, handlers Handlers, health *observability.HealthRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		health:        health,
		auth:          handlers.Auth,
		cases:         handlers.Cases,
		court:         handlers.Court,
		reopen:        handlers.Reopen,
		investigation: handlers.Investigation,
		documents:     handlers.Documents,
		assist:        handlers.Assist,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	authed := func(h http.HandlerFunc) http.HandlerFunc {
		return s.auth.Wrap(h)
	}

	// FIRs and case lifecycle
	s.mux.HandleFunc("POST /api/v1/firs", authed(s.cases.RegisterFIR))
	s.mux.HandleFunc("GET /api/v1/cases", authed(s.cases.ListCases))
	s.mux.HandleFunc("GET /api/v1/cases/my", authed(s.cases.MyCases))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}", authed(s.cases.GetCase))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/history", authed(s.cases.StateHistory))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/allowed-actions", authed(s.cases.AllowedActions))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/assign", authed(s.cases.AssignCase))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/investigation/start", authed(s.cases.StartInvestigation))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/investigation/pause", authed(s.cases.PauseInvestigation))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/investigation/resume", authed(s.cases.ResumeInvestigation))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/investigation/complete", authed(s.cases.CompleteInvestigation))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/charge-sheet", authed(s.cases.PrepareChargeSheet))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/closure-report", authed(s.cases.PrepareClosureReport))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/archive", authed(s.cases.ArchiveCase))

	// Court submissions and actions
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/submissions", authed(s.court.Submit))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/submissions/resubmit", authed(s.court.Resubmit))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/submissions/intake", authed(s.court.Intake))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/submissions/return", authed(s.court.ReturnForDefects))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/submissions", authed(s.court.ListSubmissions))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/court-actions", authed(s.court.RecordAction))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/court-actions", authed(s.court.ListActions))

	// Reopen requests
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/reopen-requests", authed(s.reopen.Request))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/reopen-requests", authed(s.reopen.ListRequests))
	s.mux.HandleFunc("POST /api/v1/reopen-requests/{requestID}/approve", authed(s.reopen.Approve))
	s.mux.HandleFunc("POST /api/v1/reopen-requests/{requestID}/reject", authed(s.reopen.Reject))

	// Investigation records
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/events", authed(s.investigation.AddEvent))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/events", authed(s.investigation.ListEvents))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/evidence", authed(s.investigation.AddEvidence))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/evidence", authed(s.investigation.ListEvidence))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/witnesses", authed(s.investigation.AddWitness))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/witnesses", authed(s.investigation.ListWitnesses))
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/accused", authed(s.investigation.AddAccused))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/accused", authed(s.investigation.ListAccused))
	s.mux.HandleFunc("PATCH /api/v1/accused/{accusedID}/status", authed(s.investigation.UpdateAccusedStatus))

	// Document requests
	s.mux.HandleFunc("POST /api/v1/cases/{caseID}/document-requests", authed(s.documents.Request))
	s.mux.HandleFunc("GET /api/v1/cases/{caseID}/document-requests", authed(s.documents.ListByCase))
	s.mux.HandleFunc("POST /api/v1/document-requests/{requestID}/fulfill", authed(s.documents.Fulfill))
	s.mux.HandleFunc("POST /api/v1/document-requests/{requestID}/reject", authed(s.documents.Reject))

	// Assisted search and drafting
	if s.assist != nil {
		s.mux.HandleFunc("POST /api/v1/assist/search", authed(s.assist.Search))
		s.mux.HandleFunc("POST /api/v1/assist/draft", authed(s.assist.Draft))
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// pathUUID extracts a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}

// parseIntParam parses an integer query parameter with a default.
func parseIntParam(r *http.Request, name string, def int) int {
	if raw := r.URL.Query().Get(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return def
}
