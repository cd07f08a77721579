package persistence

import (
	"context"
	"fmt"

	"github.com/casetrack/casetrack/internal/casefile/application/queries"
	sharedApplication "github.com/casetrack/casetrack/internal/shared/application"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCaseReader implements queries.CaseReader with one join across
// cases, FIRs, the current-state row and the active assignment.
type PostgresCaseReader struct {
	pool *pgxpool.Pool
}

// NewPostgresCaseReader creates a new case reader.
func NewPostgresCaseReader(pool *pgxpool.Pool) *PostgresCaseReader {
	return &PostgresCaseReader{pool: pool}
}

const caseSummarySelect = `
	SELECT c.id, c.case_number, f.fir_number, s.current_state, c.is_archived,
	       a.assigned_to, c.created_at
	FROM cases c
	JOIN firs f ON f.id = c.fir_id
	JOIN current_case_state s ON s.case_id = c.id
	LEFT JOIN case_assignments a ON a.case_id = c.id AND a.unassigned_at IS NULL
`

// ListByStation returns cases of a police station, optionally filtered by
// current state.
func (r *PostgresCaseReader) ListByStation(ctx context.Context, stationID uuid.UUID, state string, page sharedApplication.Page) ([]queries.CaseSummary, int, error) {
	where := ` WHERE f.police_station_id = $1`
	countQuery := `
		SELECT COUNT(*)
		FROM cases c
		JOIN firs f ON f.id = c.fir_id
		JOIN current_case_state s ON s.case_id = c.id
		WHERE f.police_station_id = $1
	`
	args := []any{stationID}

	if state != "" {
		where += ` AND s.current_state = $2`
		countQuery += ` AND s.current_state = $2`
		args = append(args, state)
	}

	execer := sharedPersistence.Executor(ctx, r.pool)
	var total int
	if err := execer.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := caseSummarySelect + where +
		` ORDER BY c.created_at DESC LIMIT ` + placeholder(len(args)+1) +
		` OFFSET ` + placeholder(len(args)+2)
	args = append(args, page.Size, page.Offset())

	summaries, err := r.querySummaries(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// ListByAssignee returns cases whose active assignment is held by the officer.
func (r *PostgresCaseReader) ListByAssignee(ctx context.Context, assigneeID uuid.UUID, page sharedApplication.Page) ([]queries.CaseSummary, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM case_assignments a
		WHERE a.assigned_to = $1 AND a.unassigned_at IS NULL
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	var total int
	if err := execer.QueryRow(ctx, countQuery, assigneeID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := caseSummarySelect + `
		WHERE a.assigned_to = $1
		ORDER BY c.created_at DESC LIMIT $2 OFFSET $3
	`
	summaries, err := r.querySummaries(ctx, query, assigneeID, page.Size, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *PostgresCaseReader) querySummaries(ctx context.Context, query string, args ...any) ([]queries.CaseSummary, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []queries.CaseSummary
	for rows.Next() {
		var s queries.CaseSummary
		err := rows.Scan(
			&s.CaseID,
			&s.CaseNumber,
			&s.FIRNumber,
			&s.CurrentState,
			&s.IsArchived,
			&s.AssignedTo,
			&s.RegisteredAt,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
