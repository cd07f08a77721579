package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/casetrack/casetrack/internal/casefile/domain/lifecycle"
	orgDomain "github.com/casetrack/casetrack/internal/organization/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const actorContextKey contextKey = "actor"

// AuthMiddleware authenticates requests with a bearer token and resolves the
// calling user into an actor. Role and organization come from the user record,
// not the token, so revoking a user takes effect immediately.
type AuthMiddleware struct {
	secret []byte
	issuer string
	users  orgDomain.UserRepository
	logger *slog.Logger
}

// NewAuthMiddleware creates the authentication middleware.
func NewAuthMiddleware(secret, issuer string, users orgDomain.UserRepository, logger *slog.Logger) *AuthMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		secret: []byte(secret),
		issuer: issuer,
		users:  users,
		logger: logger,
	}
}

// Wrap authenticates the request before invoking next.
func (m *AuthMiddleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims,
			func(t *jwt.Token) (any, error) { return m.secret, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(m.issuer),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token subject")
			return
		}

		user, err := m.users.FindByID(r.Context(), userID)
		if err != nil {
			m.logger.Warn("token resolved to unknown user", "user_id", userID, "error", err)
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), actorContextKey, user.Actor())
		next(w, r.WithContext(ctx))
	}
}

// IssueToken mints a token for the given user. Used by the CLI and tests.
func (m *AuthMiddleware) IssueToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// actorFrom extracts the authenticated actor from the request context.
func actorFrom(r *http.Request) (lifecycle.Actor, bool) {
	actor, ok := r.Context().Value(actorContextKey).(lifecycle.Actor)
	return actor, ok
}

// requireActor extracts the actor or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (lifecycle.Actor, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return actor, ok
}
