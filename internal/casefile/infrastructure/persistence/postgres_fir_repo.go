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

// PostgresFIRRepository implements casefile.FIRRepository.
type PostgresFIRRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresFIRRepository creates a new FIR repository.
func NewPostgresFIRRepository(pool *pgxpool.Pool) *PostgresFIRRepository {
	return &PostgresFIRRepository{pool: pool}
}

const firSelect = `
	SELECT f.id, f.fir_number, f.police_station_id, f.registered_by,
	       f.complainant_name, f.complainant_tel, f.incident_date,
	       f.description, f.sections_applied, f.document_url,
	       f.created_at, f.updated_at
	FROM firs f
`

// Save persists a FIR.
func (r *PostgresFIRRepository) Save(ctx context.Context, fir *casefile.FIR) error {
	query := `
		INSERT INTO firs (
			id, fir_number, police_station_id, registered_by,
			complainant_name, complainant_tel, incident_date,
			description, sections_applied, document_url, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			complainant_name = EXCLUDED.complainant_name,
			complainant_tel = EXCLUDED.complainant_tel,
			description = EXCLUDED.description,
			sections_applied = EXCLUDED.sections_applied,
			document_url = EXCLUDED.document_url,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		fir.ID(),
		fir.FIRNumber(),
		fir.PoliceStationID(),
		fir.RegisteredBy(),
		fir.ComplainantName(),
		fir.ComplainantTel(),
		fir.IncidentDate(),
		fir.Description(),
		fir.SectionsApplied(),
		fir.DocumentURL(),
		fir.CreatedAt(),
		fir.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a FIR by its ID.
func (r *PostgresFIRRepository) FindByID(ctx context.Context, id uuid.UUID) (*casefile.FIR, error) {
	query := firSelect + ` WHERE f.id = $1`
	execer := sharedPersistence.Executor(ctx, r.pool)
	fir, err := scanFIR(execer.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, casefile.ErrFIRNotFound
		}
		return nil, err
	}
	return fir, nil
}

// FindByCaseID retrieves the FIR a case was created from.
func (r *PostgresFIRRepository) FindByCaseID(ctx context.Context, caseID uuid.UUID) (*casefile.FIR, error) {
	query := firSelect + ` JOIN cases c ON c.fir_id = f.id WHERE c.id = $1`
	execer := sharedPersistence.Executor(ctx, r.pool)
	fir, err := scanFIR(execer.QueryRow(ctx, query, caseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, casefile.ErrFIRNotFound
		}
		return nil, err
	}
	return fir, nil
}

func scanFIR(row pgx.Row) (*casefile.FIR, error) {
	var (
		id, policeStationID, registeredBy              uuid.UUID
		firNumber, complainantName, complainantTel     string
		description, documentURL                       string
		sectionsApplied                                []string
		incidentDate, createdAt, updatedAt             time.Time
	)
	err := row.Scan(
		&id,
		&firNumber,
		&policeStationID,
		&registeredBy,
		&complainantName,
		&complainantTel,
		&incidentDate,
		&description,
		&sectionsApplied,
		&documentURL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return casefile.RehydrateFIR(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		firNumber,
		policeStationID,
		registeredBy,
		complainantName,
		complainantTel,
		incidentDate,
		description,
		sectionsApplied,
		documentURL,
	), nil
}
