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

// PostgresAssignmentRepository implements casefile.AssignmentRepository.
type PostgresAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAssignmentRepository creates a new assignment repository.
func NewPostgresAssignmentRepository(pool *pgxpool.Pool) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{pool: pool}
}

const assignmentSelect = `
	SELECT id, case_id, assigned_to, assigned_by, assignment_reason,
	       assigned_at, unassigned_at, created_at, updated_at
	FROM case_assignments
`

// Save persists an assignment.
func (r *PostgresAssignmentRepository) Save(ctx context.Context, a *casefile.Assignment) error {
	query := `
		INSERT INTO case_assignments (
			id, case_id, assigned_to, assigned_by, assignment_reason,
			assigned_at, unassigned_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			unassigned_at = EXCLUDED.unassigned_at,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		a.ID(),
		a.CaseID(),
		a.AssignedTo(),
		a.AssignedBy(),
		a.AssignmentReason(),
		a.AssignedAt(),
		a.UnassignedAt(),
		a.CreatedAt(),
		a.UpdatedAt(),
	)
	return err
}

// FindActive retrieves the active assignment for a case.
func (r *PostgresAssignmentRepository) FindActive(ctx context.Context, caseID uuid.UUID) (*casefile.Assignment, error) {
	query := assignmentSelect + ` WHERE case_id = $1 AND unassigned_at IS NULL`
	execer := sharedPersistence.Executor(ctx, r.pool)
	a, err := scanAssignment(execer.QueryRow(ctx, query, caseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, casefile.ErrNoActiveAssignment
		}
		return nil, err
	}
	return a, nil
}

// FindByCase retrieves all assignments for a case, newest first.
func (r *PostgresAssignmentRepository) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*casefile.Assignment, error) {
	query := assignmentSelect + ` WHERE case_id = $1 ORDER BY assigned_at DESC`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []*casefile.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CloseActive closes any active assignment for the case.
func (r *PostgresAssignmentRepository) CloseActive(ctx context.Context, caseID uuid.UUID, at time.Time) (int64, error) {
	query := `
		UPDATE case_assignments
		SET unassigned_at = $2, updated_at = NOW()
		WHERE case_id = $1 AND unassigned_at IS NULL
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	tag, err := execer.Exec(ctx, query, caseID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanAssignment(row pgx.Row) (*casefile.Assignment, error) {
	var (
		id, caseID           uuid.UUID
		assignedTo           uuid.UUID
		assignedBy           uuid.UUID
		assignmentReason     string
		assignedAt           time.Time
		unassignedAt         *time.Time
		createdAt, updatedAt time.Time
	)
	err := row.Scan(
		&id,
		&caseID,
		&assignedTo,
		&assignedBy,
		&assignmentReason,
		&assignedAt,
		&unassignedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return casefile.RehydrateAssignment(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		caseID,
		assignedTo,
		assignedBy,
		assignmentReason,
		assignedAt,
		unassignedAt,
	), nil
}
