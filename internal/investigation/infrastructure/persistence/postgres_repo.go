package persistence

import (
	"context"
	"errors"
	"time"

	invDomain "github.com/casetrack/casetrack/internal/investigation/domain"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements domain.Repository over the four
// investigation-record tables.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new investigation record repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveEvent persists an investigation event.
func (r *PostgresRepository) SaveEvent(ctx context.Context, e *invDomain.Event) error {
	query := `
		INSERT INTO investigation_events (id, case_id, recorded_by, event_type, description, occurred_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			event_type = EXCLUDED.event_type,
			description = EXCLUDED.description,
			occurred_at = EXCLUDED.occurred_at,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		e.ID(), e.CaseID(), e.RecordedBy(), e.EventType(), e.Description(), e.OccurredAt(), e.CreatedAt(), e.UpdatedAt(),
	)
	return err
}

// EventsByCase retrieves the events of a case in occurrence order.
func (r *PostgresRepository) EventsByCase(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Event, error) {
	query := `
		SELECT id, case_id, recorded_by, event_type, description, occurred_at, created_at, updated_at
		FROM investigation_events
		WHERE case_id = $1
		ORDER BY occurred_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*invDomain.Event
	for rows.Next() {
		var (
			id, cID, recordedBy    uuid.UUID
			eventType, description string
			occurredAt             time.Time
			createdAt, updatedAt   time.Time
		)
		if err := rows.Scan(&id, &cID, &recordedBy, &eventType, &description, &occurredAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		events = append(events, invDomain.RehydrateEvent(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
			cID, recordedBy, eventType, description, occurredAt,
		))
	}
	return events, rows.Err()
}

// SaveEvidence persists an evidence item.
func (r *PostgresRepository) SaveEvidence(ctx context.Context, e *invDomain.Evidence) error {
	query := `
		INSERT INTO evidence (id, case_id, recorded_by, label, description, storage_ref, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			label = EXCLUDED.label,
			description = EXCLUDED.description,
			storage_ref = EXCLUDED.storage_ref,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		e.ID(), e.CaseID(), e.RecordedBy(), e.Label(), e.Description(), e.StorageRef(), e.CreatedAt(), e.UpdatedAt(),
	)
	return err
}

// EvidenceByCase retrieves the evidence items of a case.
func (r *PostgresRepository) EvidenceByCase(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Evidence, error) {
	query := `
		SELECT id, case_id, recorded_by, label, description, storage_ref, created_at, updated_at
		FROM evidence
		WHERE case_id = $1
		ORDER BY created_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*invDomain.Evidence
	for rows.Next() {
		var (
			id, cID, recordedBy            uuid.UUID
			label, description, storageRef string
			createdAt, updatedAt           time.Time
		)
		if err := rows.Scan(&id, &cID, &recordedBy, &label, &description, &storageRef, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		items = append(items, invDomain.RehydrateEvidence(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
			cID, recordedBy, label, description, storageRef,
		))
	}
	return items, rows.Err()
}

// SaveWitness persists a witness.
func (r *PostgresRepository) SaveWitness(ctx context.Context, w *invDomain.Witness) error {
	query := `
		INSERT INTO witnesses (id, case_id, recorded_by, name, tel, statement, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			tel = EXCLUDED.tel,
			statement = EXCLUDED.statement,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		w.ID(), w.CaseID(), w.RecordedBy(), w.Name(), w.Tel(), w.Statement(), w.CreatedAt(), w.UpdatedAt(),
	)
	return err
}

// WitnessesByCase retrieves the witnesses of a case.
func (r *PostgresRepository) WitnessesByCase(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Witness, error) {
	query := `
		SELECT id, case_id, recorded_by, name, tel, statement, created_at, updated_at
		FROM witnesses
		WHERE case_id = $1
		ORDER BY created_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var witnesses []*invDomain.Witness
	for rows.Next() {
		var (
			id, cID, recordedBy  uuid.UUID
			name, tel, statement string
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &cID, &recordedBy, &name, &tel, &statement, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		witnesses = append(witnesses, invDomain.RehydrateWitness(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
			cID, recordedBy, name, tel, statement,
		))
	}
	return witnesses, rows.Err()
}

// SaveAccused persists an accused person.
func (r *PostgresRepository) SaveAccused(ctx context.Context, a *invDomain.Accused) error {
	query := `
		INSERT INTO accused (id, case_id, recorded_by, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		a.ID(), a.CaseID(), a.RecordedBy(), a.Name(), a.Description(), string(a.Status()), a.CreatedAt(), a.UpdatedAt(),
	)
	return err
}

// FindAccused retrieves an accused person by ID.
func (r *PostgresRepository) FindAccused(ctx context.Context, id uuid.UUID) (*invDomain.Accused, error) {
	query := `
		SELECT id, case_id, recorded_by, name, description, status, created_at, updated_at
		FROM accused
		WHERE id = $1
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	a, err := scanAccused(execer.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invDomain.ErrRecordNotFound
		}
		return nil, err
	}
	return a, nil
}

// AccusedByCase retrieves the accused persons of a case.
func (r *PostgresRepository) AccusedByCase(ctx context.Context, caseID uuid.UUID) ([]*invDomain.Accused, error) {
	query := `
		SELECT id, case_id, recorded_by, name, description, status, created_at, updated_at
		FROM accused
		WHERE case_id = $1
		ORDER BY created_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accused []*invDomain.Accused
	for rows.Next() {
		a, err := scanAccused(rows)
		if err != nil {
			return nil, err
		}
		accused = append(accused, a)
	}
	return accused, rows.Err()
}

func scanAccused(row pgx.Row) (*invDomain.Accused, error) {
	var (
		id, cID, recordedBy       uuid.UUID
		name, description, status string
		createdAt, updatedAt      time.Time
	)
	if err := row.Scan(&id, &cID, &recordedBy, &name, &description, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return invDomain.RehydrateAccused(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		cID, recordedBy, name, description, invDomain.AccusedStatus(status),
	), nil
}
