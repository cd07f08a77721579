package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	"github.com/casetrack/casetrack/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// TransitionConsumer notifies the assigned officer when their case moves.
type TransitionConsumer struct {
	assignmentRepo casefile.AssignmentRepository
	notifier       Notifier
	logger         *slog.Logger
}

// NewTransitionConsumer creates a transition notification consumer.
func NewTransitionConsumer(assignmentRepo casefile.AssignmentRepository, notifier Notifier, logger *slog.Logger) *TransitionConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransitionConsumer{
		assignmentRepo: assignmentRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// EventTypes returns the routing keys this consumer handles.
func (c *TransitionConsumer) EventTypes() []string {
	return []string{casefile.RoutingKeyTransitioned}
}

type transitionPayload struct {
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	ActorID   uuid.UUID `json:"actor_id"`
	Reason    string    `json:"reason"`
}

// Handle notifies the active assignee about the transition. Cases without an
// active assignment (fresh or archived) produce no notification.
func (c *TransitionConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload transitionPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decoding transition payload: %w", err)
	}

	assignment, err := c.assignmentRepo.FindActive(ctx, event.AggregateID)
	if err != nil {
		if errors.Is(err, casefile.ErrNoActiveAssignment) {
			return nil
		}
		return err
	}

	// The actor already knows what they did.
	if assignment.AssignedTo() == payload.ActorID {
		return nil
	}

	subject := "Case state changed"
	body := fmt.Sprintf("Case %s moved from %s to %s", event.AggregateID, payload.FromState, payload.ToState)
	if err := c.notifier.Notify(ctx, assignment.AssignedTo(), subject, body); err != nil {
		c.logger.Warn("transition notification failed",
			"case_id", event.AggregateID,
			"user_id", assignment.AssignedTo(),
			"error", err,
		)
	}
	return nil
}

// AssignmentConsumer notifies an officer when a case lands on their desk.
type AssignmentConsumer struct {
	notifier Notifier
	logger   *slog.Logger
}

// NewAssignmentConsumer creates an assignment notification consumer.
func NewAssignmentConsumer(notifier Notifier, logger *slog.Logger) *AssignmentConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssignmentConsumer{notifier: notifier, logger: logger}
}

// EventTypes returns the routing keys this consumer handles.
func (c *AssignmentConsumer) EventTypes() []string {
	return []string{casefile.RoutingKeyAssigned}
}

type assignmentPayload struct {
	AssignedTo uuid.UUID `json:"assigned_to"`
	AssignedBy uuid.UUID `json:"assigned_by"`
	Reason     string    `json:"reason"`
}

// Handle notifies the newly assigned officer.
func (c *AssignmentConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var payload assignmentPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("decoding assignment payload: %w", err)
	}

	body := fmt.Sprintf("Case %s has been assigned to you", event.AggregateID)
	if payload.Reason != "" {
		body += ": " + payload.Reason
	}
	if err := c.notifier.Notify(ctx, payload.AssignedTo, "Case assigned", body); err != nil {
		c.logger.Warn("assignment notification failed",
			"case_id", event.AggregateID,
			"user_id", payload.AssignedTo,
			"error", err,
		)
	}
	return nil
}
