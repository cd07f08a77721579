package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	orgDomain "github.com/casetrack/casetrack/internal/organization/domain"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
	sharedPersistence "github.com/casetrack/casetrack/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOrganizationRepository implements domain.OrganizationRepository.
type PostgresOrganizationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrganizationRepository creates a new organization repository.
func NewPostgresOrganizationRepository(pool *pgxpool.Pool) *PostgresOrganizationRepository {
	return &PostgresOrganizationRepository{pool: pool}
}

// Save persists an organization.
func (r *PostgresOrganizationRepository) Save(ctx context.Context, org *orgDomain.Organization) error {
	query := `
		INSERT INTO organizations (id, name, kind, district, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			district = EXCLUDED.district,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		org.ID(),
		org.Name(),
		string(org.Kind()),
		org.District(),
		org.CreatedAt(),
		org.UpdatedAt(),
	)
	return err
}

// FindByID retrieves an organization by its ID.
func (r *PostgresOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*orgDomain.Organization, error) {
	query := `
		SELECT id, name, kind, district, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	org, err := scanOrganization(execer.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orgDomain.ErrOrganizationNotFound
		}
		return nil, err
	}
	return org, nil
}

// FindByKind retrieves all organizations of a kind.
func (r *PostgresOrganizationRepository) FindByKind(ctx context.Context, kind orgDomain.Kind) ([]*orgDomain.Organization, error) {
	query := `
		SELECT id, name, kind, district, created_at, updated_at
		FROM organizations
		WHERE kind = $1
		ORDER BY name
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []*orgDomain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

func scanOrganization(row pgx.Row) (*orgDomain.Organization, error) {
	var (
		id                   uuid.UUID
		name, kind, district string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &kind, &district, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	return orgDomain.RehydrateOrganization(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		name,
		orgDomain.Kind(kind),
		district,
	), nil
}

// PostgresUserRepository implements domain.UserRepository.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new user repository.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Save persists a user.
func (r *PostgresUserRepository) Save(ctx context.Context, user *orgDomain.User) error {
	query := `
		INSERT INTO users (id, name, email, role, organization_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			organization_id = EXCLUDED.organization_id,
			updated_at = NOW()
	`
	execer := sharedPersistence.Executor(ctx, r.pool)
	_, err := execer.Exec(ctx, query,
		user.ID(),
		user.Name(),
		user.Email(),
		user.Role().String(),
		user.OrganizationID(),
		user.CreatedAt(),
		user.UpdatedAt(),
	)
	return err
}

// FindByID retrieves a user by its ID.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*orgDomain.User, error) {
	query := userSelect + ` WHERE id = $1`
	execer := sharedPersistence.Executor(ctx, r.pool)
	user, err := scanUser(execer.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, orgDomain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindByOrganization retrieves all users of an organization.
func (r *PostgresUserRepository) FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*orgDomain.User, error) {
	query := userSelect + ` WHERE organization_id = $1 ORDER BY name`
	return r.queryUsers(ctx, query, organizationID)
}

// FindByRole retrieves users of an organization holding a role.
func (r *PostgresUserRepository) FindByRole(ctx context.Context, organizationID uuid.UUID, role lifecycle.Role) ([]*orgDomain.User, error) {
	query := userSelect + ` WHERE organization_id = $1 AND role = $2 ORDER BY name`
	return r.queryUsers(ctx, query, organizationID, role.String())
}

const userSelect = `
	SELECT id, name, email, role, organization_id, created_at, updated_at
	FROM users
`

func (r *PostgresUserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*orgDomain.User, error) {
	execer := sharedPersistence.Executor(ctx, r.pool)
	rows, err := execer.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*orgDomain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*orgDomain.User, error) {
	var (
		id, organizationID   uuid.UUID
		name, email, role    string
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &name, &email, &role, &organizationID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsedRole, err := lifecycle.ParseRole(role)
	if err != nil {
		return nil, err
	}
	return orgDomain.RehydrateUser(
		sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		name,
		email,
		parsedRole,
		organizationID,
	), nil
}
