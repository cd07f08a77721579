package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/casefile"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrOptimisticLocking reports a version conflict on aggregate save.
var ErrOptimisticLocking = errors.New("optimistic locking conflict")

// PostgresCaseRepository implements casefile.Repository.
type PostgresCaseRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCaseRepository creates a new case repository.
func NewPostgresCaseRepository(pool *pgxpool.Pool) *PostgresCaseRepository {
	return &PostgresCaseRepository{pool: pool}
}

// Save persists a case, bumping its version.
func (r *PostgresCaseRepository) Save(ctx context.Context, c *casefile.Case) error {
	query := `
		INSERT INTO cases (
			id, fir_id, case_number, is_archived, closure_report_url,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			is_archived = EXCLUDED.is_archived,
			closure_report_url = EXCLUDED.closure_report_url,
			version = cases.version + 1,
			updated_at = NOW()
		WHERE cases.version = $6
		RETURNING version
	`
	var newVersion int
	execer := sharedPersistence.Executor(ctx, r.pool)
	err := execer.QueryRow(ctx, query,
		c.ID(),
		c.FIRID(),
		c.CaseNumber(),
		c.IsArchived(),
		c.ClosureReportURL(),
		c.Version(),
		c.CreatedAt(),
		c.UpdatedAt(),
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOptimisticLocking
		}
		return err
	}
	return nil
}

// FindByID retrieves a case by its ID.
func (r *PostgresCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*casefile.Case, error) {
	query := `
		SELECT id, fir_id, case_number, is_archived, closure_report_url,
		       version, created_at, updated_at
		FROM cases
		WHERE id = $1
	`
	var (
		caseID, firID        uuid.UUID
		caseNumber           string
		isArchived           bool
		closureReportURL     string
		version              int
		createdAt, updatedAt time.Time
	)
	execer := sharedPersistence.Executor(ctx, r.pool)
	err := execer.QueryRow(ctx, query, id).Scan(
		&caseID,
		&firID,
		&caseNumber,
		&isArchived,
		&closureReportURL,
		&version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, casefile.ErrCaseNotFound
		}
		return nil, err
	}

	return casefile.RehydrateCase(
		sharedDomain.RehydrateBaseEntity(caseID, createdAt, updatedAt),
		version,
		firID,
		caseNumber,
		isArchived,
		closureReportURL,
	), nil
}

// Exists reports whether the case id resolves.
func (r *PostgresCaseRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM cases WHERE id = $1)`
	var exists bool
	execer := sharedPersistence.Executor(ctx, r.pool)
	if err := execer.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
