package persistence

import (
	"context"
	"errors"
	"time"

	courtDomain "github.com/casetrack/casetrack/internal/court/domain"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSubmissionRepository implements domain.SubmissionRepository.
type PostgresSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSubmissionRepository creates a new submission repository.
func NewPostgresSubmissionRepository(pool *pgxpool.Pool) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{pool: pool}
}

const submissionSelect = `
	SELECT id, case_id, court_id, submitted_by, submission_type,
	       submission_version, status, defects_note, submitted_at,
	       created_at, updated_at
	FROM court_submissions
`

// Save persists a submission.
func (r *PostgresSubmissionRepository) Save(ctx context.Context, s *courtDomain.Submission) error {
	query := `
		INSERT INTO court_submissions (
			id, case_id, court_id, submitted_by, submission_type,
			submission_version, status, defects_note, submitted_at,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			defects_note = EXCLUDED.defects_note,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		s.ID(),
		s.CaseID(),
		s.CourtID(),
		s.SubmittedBy(),
		string(s.Type()),
		s.Version(),
		string(s.Status()),
		s.DefectsNote(),
		s.SubmittedAt(),
		s.CreatedAt(),
		s.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a submission by its ID.
func (r *PostgresSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*courtDomain.Submission, error) {
	query := submissionSelect + ` WHERE id = $1`
	execer := sharedPersistence.Executor(ctx, r.pool)
	s, err := scanSubmission(execer.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, courtDomain.ErrSubmissionNotFound
		}
		return nil, err
	}
	return s, nil
}

// FindPending retrieves the case's pending submission.
func (r *PostgresSubmissionRepository) FindPending(ctx context.Context, caseID uuid.UUID) (*courtDomain.Submission, error) {
	query := submissionSelect + ` WHERE case_id = $1 AND status = 'PENDING' ORDER BY submission_version DESC LIMIT 1`
	execer := sharedPersistence.Executor(ctx, r.pool)
	s, err := scanSubmission(execer.QueryRow(ctx, query, caseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, courtDomain.ErrNoPendingSubmission
		}
		return nil, err
	}
	return s, nil
}

// FindByCase retrieves all submissions for a case, newest version first.
func (r *PostgresSubmissionRepository) FindByCase(ctx context.Context, caseID uuid.UUID) ([]*courtDomain.Submission, error) {
	query := submissionSelect + ` WHERE case_id = $1 ORDER BY submission_version DESC`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*courtDomain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// LatestVersion returns the highest submission version for the case.
func (r *PostgresSubmissionRepository) LatestVersion(ctx context.Context, caseID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(submission_version), 0) FROM court_submissions WHERE case_id = $1`
	var version int
	execer := sharedPersistence.Executor(ctx, r.pool)
	if err := execer.QueryRow(ctx, query, caseID).Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

// SaveAcknowledgement persists an acknowledgement.
func (r *PostgresSubmissionRepository) SaveAcknowledgement(ctx context.Context, a *courtDomain.Acknowledgement) error {
	query := `
		INSERT INTO acknowledgements (id, submission_id, ack_number, acknowledged_by, acknowledged_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		a.ID(),
		a.SubmissionID(),
		a.AckNumber(),
		a.AcknowledgedBy(),
		a.AcknowledgedAt(),
		a.CreatedAt(),
		a.UpdatedAt(),
	)
	return err
}

// FindAcknowledgements retrieves the acknowledgements of a submission.
func (r *PostgresSubmissionRepository) FindAcknowledgements(ctx context.Context, submissionID uuid.UUID) ([]*courtDomain.Acknowledgement, error) {
	query := `
		SELECT id, submission_id, ack_number, acknowledged_by, acknowledged_at, created_at, updated_at
		FROM acknowledgements
		WHERE submission_id = $1
		ORDER BY acknowledged_at
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acks []*courtDomain.Acknowledgement
	for rows.Next() {
		var (
			id, subID, ackBy     uuid.UUID
			ackNumber            string
			ackAt                time.Time
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &subID, &ackNumber, &ackBy, &ackAt, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		acks = append(acks, courtDomain.RehydrateAcknowledgement(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
			subID, ackBy, ackNumber, ackAt,
		))
	}
	return acks, rows.Err()
}

func scanSubmission(row pgx.Row) (*courtDomain.Submission, error) {
	var (
		id, caseID, courtID, submittedBy uuid.UUID
		submissionType, status           string
		version                          int
		defectsNote                      string
		submittedAt                      time.Time
		createdAt, updatedAt             time.Time
	)
	err := row.Scan(
		&id,
		&caseID,
		&courtID,
		&submittedBy,
		&submissionType,
		&version,
		&status,
		&defectsNote,
		&submittedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return courtDomain.RehydrateSubmission(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		caseID, courtID, submittedBy,
		courtDomain.SubmissionType(submissionType),
		version,
		courtDomain.SubmissionStatus(status),
		defectsNote,
		submittedAt,
	), nil
}
