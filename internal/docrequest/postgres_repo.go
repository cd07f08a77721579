package docrequest

import (
	"context"
	"errors"
	"time"

	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new document request repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const requestSelect = `
	SELECT id, case_id, requested_by, document_type, note, status, file_url,
	       handled_by, handled_at, created_at, updated_at
	FROM document_requests
`

// Save persists a document request.
func (r *PostgresRepository) Save(ctx context.Context, d *DocumentRequest) error {
	query := `
		INSERT INTO document_requests (
			id, case_id, requested_by, document_type, note, status, file_url,
			handled_by, handled_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			note = EXCLUDED.note,
			status = EXCLUDED.status,
			file_url = EXCLUDED.file_url,
			handled_by = EXCLUDED.handled_by,
			handled_at = EXCLUDED.handled_at,
			updated_at = NOW()
	`
	var handledBy *uuid.UUID
	if d.HandledBy() != uuid.Nil {
		id := d.HandledBy()
		handledBy = &id
	}

	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		d.ID(),
		d.CaseID(),
		d.RequestedBy(),
		d.DocumentType(),
		d.Note(),
		string(d.Status()),
		d.FileURL(),
		handledBy,
		d.HandledAt(),
		d.CreatedAt(),
		d.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a document request by its ID.
func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*DocumentRequest, error) {
	query := requestSelect + ` WHERE id = $1`
	execer := sharedPersistence.Executor(ctx, r.pool)
	d, err := scanRequest(execer.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// FindByCase retrieves the document requests of a case, newest first.
func (r *PostgresRepository) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*DocumentRequest, error) {
	query := requestSelect + ` WHERE case_id = $1 ORDER BY created_at DESC`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*DocumentRequest
	for rows.Next() {
		d, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, d)
	}
	return requests, rows.Err()
}

func scanRequest(row pgx.Row) (*DocumentRequest, error) {
	var (
		id, caseID, requestedBy    uuid.UUID
		documentType, note, status string
		fileURL                    string
		handledBy                  *uuid.UUID
		handledAt                  *time.Time
		createdAt, updatedAt       time.Time
	)
	err := row.Scan(
		&id,
		&caseID,
		&requestedBy,
		&documentType,
		&note,
		&status,
		&fileURL,
		&handledBy,
		&handledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	by := uuid.Nil
	if handledBy != nil {
		by = *handledBy
	}

	return Rehydrate(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		caseID,
		requestedBy,
		documentType,
		note,
		Status(status),
		fileURL,
		by,
		handledAt,
	), nil
}
