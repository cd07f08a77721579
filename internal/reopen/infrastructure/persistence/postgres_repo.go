package persistence

import (
	"context"
	"errors"
	"time"

	reopenDomain "github.com/casetrack/casetrack/internal/reopen/domain"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresReopenRepository implements domain.Repository.
type PostgresReopenRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReopenRepository creates a new reopen request repository.
func NewPostgresReopenRepository(pool *pgxpool.Pool) *PostgresReopenRepository {
	return &PostgresReopenRepository{pool: pool}
}

const requestSelect = `
	SELECT id, case_id, requested_by, police_reason, status, judge_note,
	       decided_by, decided_at, created_at, updated_at
	FROM case_reopen_requests
`

// Save persists a reopen request.
func (r *PostgresReopenRepository) Save(ctx context.Context, req *reopenDomain.Request) error {
	query := `
		INSERT INTO case_reopen_requests (
			id, case_id, requested_by, police_reason, status, judge_note,
			decided_by, decided_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			judge_note = EXCLUDED.judge_note,
			decided_by = EXCLUDED.decided_by,
			decided_at = EXCLUDED.decided_at,
			updated_at = NOW()
	`
	var decidedBy *uuid.UUID
	if req.DecidedBy() != uuid.Nil {
		id := req.DecidedBy()
		decidedBy = &id
	}

	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		req.ID(),
		req.CaseID(),
		req.RequestedBy(),
		req.PoliceReason(),
		string(req.Status()),
		req.JudgeNote(),
		decidedBy,
		req.DecidedAt(),
		req.CreatedAt(),
		req.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a reopen request by its ID.
func (r *PostgresReopenRepository) FindByID(ctx context.Context, id uuid.UUID) (*reopenDomain.Request, error) {
	query := requestSelect + ` WHERE id = $1`
	execer := sharedPersistence.Executor(ctx, r.pool)
	req, err := scanRequest(execer.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reopenDomain.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// FindPendingByCase retrieves the case's pending reopen request.
func (r *PostgresReopenRepository) FindPendingByCase(ctx context.Context, caseID uuid.UUID) (*reopenDomain.Request, error) {
	query := requestSelect + ` WHERE case_id = $1 AND status = 'PENDING'`
	execer := sharedPersistence.Executor(ctx, r.pool)
	req, err := scanRequest(execer.QueryRow(ctx, query, caseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, reopenDomain.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// FindByCase retrieves all reopen requests for a case, newest first.
func (r *PostgresReopenRepository) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*reopenDomain.Request, error) {
	query := requestSelect + ` WHERE case_id = $1 ORDER BY created_at DESC`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*reopenDomain.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}

func scanRequest(row pgx.Row) (*reopenDomain.Request, error) {
	var (
		id, caseID, requestedBy   uuid.UUID
		policeReason, status      string
		judgeNote                 string
		decidedBy                 *uuid.UUID
		decidedAt                 *time.Time
		createdAt, updatedAt      time.Time
	)
	err := row.Scan(
		&id,
		&caseID,
		&requestedBy,
		&policeReason,
		&status,
		&judgeNote,
		&decidedBy,
		&decidedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	by := uuid.Nil
	if decidedBy != nil {
		by = *decidedBy
	}

	return reopenDomain.RehydrateRequest(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		caseID,
		requestedBy,
		policeReason,
		reopenDomain.Status(status),
		judgeNote,
		by,
		decidedAt,
	), nil
}
