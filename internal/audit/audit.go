// Package audit appends immutable audit-log rows. Command handlers record an
// entry inside the same transaction as their writes.
package audit

import (
	"context"
	"time"

	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one audit-log row.
type Entry struct {
	UserID   uuid.UUID
	Action   string
	Entity   string
	EntityID uuid.UUID
}

// Recorder appends audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// PostgresRecorder implements Recorder using PostgreSQL. Inserts join the
// context transaction when one is present.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder creates a new PostgreSQL audit recorder.
func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

// Record appends one audit entry.
func (r *PostgresRecorder) Record(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO audit_log (id, user_id, action, entity, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		uuid.New(),
		entry.UserID,
		entry.Action,
		entry.Entity,
		entry.EntityID,
		time.Now().UTC(),
	)
	return err
}

// NoopRecorder discards entries. Used in tests.
type NoopRecorder struct{}

// Record discards the entry.
func (NoopRecorder) Record(ctx context.Context, entry Entry) error { return nil }
