package persistence

import (
	"context"
	"time"

	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCourtActionRepository implements domain.CourtActionRepository.
type PostgresCourtActionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCourtActionRepository creates a new court action repository.
func NewPostgresCourtActionRepository(pool *pgxpool.Pool) *PostgresCourtActionRepository {
	return &PostgresCourtActionRepository{pool: pool}
}

// Save persists a court action.
func (r *PostgresCourtActionRepository) Save(ctx context.Context, a *courtDomain.CourtAction) error {
	query := `
		INSERT INTO court_actions (id, case_id, court_id, action_type, note, taken_by, taken_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		a.ID(),
		a.CaseID(),
		a.CourtID(),
		string(a.Type()),
		a.Note(),
		a.TakenBy(),
		a.TakenAt(),
		a.CreatedAt(),
		a.UpdatedAt(),
	)
	return err
}

// FindByCase retrieves the actions recorded against a case, oldest first.
func (r *PostgresCourtActionRepository) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*courtDomain.CourtAction, error) {
	query := `
		SELECT id, case_id, court_id, action_type, note, taken_by, taken_at, created_at, updated_at
		FROM court_actions
		WHERE case_id = $1
		ORDER BY taken_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*courtDomain.CourtAction
	for rows.Next() {
		var (
			id, cID, courtID, takenBy uuid.UUID
			actionType, note          string
			takenAt                   time.Time
			createdAt, updatedAt      time.Time
		)
		if err := rows.Scan(&id, &cID, &courtID, &actionType, &note, &takenBy, &takenAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, courtDomain.RehydrateCourtAction(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
			cID, courtID, takenBy,
			courtDomain.ActionType(actionType),
			note,
			takenAt,
		))
	}
	return actions, rows.Err()
}
