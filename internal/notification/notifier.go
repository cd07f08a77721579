// Package notification consumes domain events on the worker side and
// notifies the affected actors. Delivery is fire-and-forget: a failed
// notification is logged, never retried against the workflow.
package notification

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Notifier delivers one notification to one user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, subject, body string) error
}

// LogNotifier writes notifications to the log. Stands in for a real delivery
// channel (mail, push) which is outside this service.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, subject, body string) error {
	n.logger.Info("notification",
		"user_id", userID,
		"subject", subject,
		"body", body,
	)
	return nil
}
