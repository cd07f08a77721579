package queries

import (
	"context"

	"github.com/casetrack/casetrack/internal/casefile/application/services"
	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	"github.com/google/uuid"
)

// AllowedActionsQuery asks which target states the actor may request for the
// case right now.
type AllowedActionsQuery struct {
	CaseID uuid.UUID
	Actor  lifecycle.Actor
}

// AllowedActionsResult lists the permitted target states.
type AllowedActionsResult struct {
	CurrentState string   `json:"current_state"`
	Allowed      []string `json:"allowed"`
}

// AllowedActionsHandler handles the AllowedActionsQuery. It delegates to the
// engine so the answer comes from the same guard table as the write side.
type AllowedActionsHandler struct {
	engine *services.Engine
}

// NewAllowedActionsHandler creates a new AllowedActionsHandler.
func NewAllowedActionsHandler(engine *services.Engine) *AllowedActionsHandler {
	return &AllowedActionsHandler{engine: engine}
}

// Handle executes the AllowedActionsQuery.
func (h *AllowedActionsHandler) Handle(ctx context.Context, query AllowedActionsQuery) (*AllowedActionsResult, error) {
	current, allowed, err := h.engine.AllowedTransitions(ctx, query.CaseID, query.Actor)
	if err != nil {
		return nil, err
	}

	targets := make([]string, 0, len(allowed))
	for _, s := range allowed {
		targets = append(targets, s.String())
	}

	return &AllowedActionsResult{
		CurrentState: current.String(),
		Allowed:      targets,
	}, nil
}
