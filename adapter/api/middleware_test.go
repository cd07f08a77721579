package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	orgDomain "github.com/casetrack/casetrack/internal/organization/domain"
	sharedDomain "github.com/casetrack/casetrack/internal/shared/domain"
)

// stubUserRepository resolves a fixed set of users by id.
type stubUserRepository struct {
	users map[uuid.UUID]*orgDomain.User
}

func (s *stubUserRepository) Save(ctx context.Context, user *orgDomain.User) error { return nil }

func (s *stubUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*orgDomain.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, orgDomain.ErrUserNotFound
	}
	return user, nil
}

func (s *stubUserRepository) FindByOrganization(ctx context.Context, organizationID uuid.UUID) ([]*orgDomain.User, error) {
	return nil, nil
}

func (s *stubUserRepository) FindByRole(ctx context.Context, organizationID uuid.UUID, role lifecycle.Role) ([]*orgDomain.User, error) {
	return nil, nil
}

func testUser(id uuid.UUID, role lifecycle.Role, orgID uuid.UUID) *orgDomain.User {
	entity := sharedDomain.NewBaseEntityWithID(id)
	return orgDomain.RehydrateUser(entity, "Test User", "user@example.test", role, orgID)
}

func TestAuthMiddleware_Wrap(t *testing.T) {
	userID := uuid.New()
	orgID := uuid.New()
	repo := &stubUserRepository{users: map[uuid.UUID]*orgDomain.User{
		userID: testUser(userID, lifecycle.RoleSHO, orgID),
	}}
	auth := NewAuthMiddleware("test-secret", "casetrack", repo, nil)

	handler := auth.Wrap(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		require.True(t, ok)
		assert.Equal(t, userID, actor.ID)
		assert.Equal(t, lifecycle.RoleSHO, actor.Role)
		assert.Equal(t, orgID, actor.OrganizationID)
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid token resolves the actor", func(t *testing.T) {
		token, err := auth.IssueToken(userID, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()

		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		other := NewAuthMiddleware("other-secret", "casetrack", repo, nil)
		token, err := other.IssueToken(userID, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewAuthMiddleware("test-secret", "someone-else", repo, nil)
		token, err := other.IssueToken(userID, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := auth.IssueToken(userID, -time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token for an unknown user", func(t *testing.T) {
		token, err := auth.IssueToken(uuid.New(), time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cases", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
