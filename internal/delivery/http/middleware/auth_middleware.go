package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"clinic-management/pkg/jwt"
	"clinic-management/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Identity is the authenticated staff member behind a request
type Identity struct {
	UserID  uuid.UUID
	Email   string
	RoleID  int
	TokenID string
}

type identityKey struct{}

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
}

func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
	}
}

var errBadAuthHeader = errors.New("invalid authorization header format")

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("authorization header is required")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" || strings.Contains(token, " ") {
		return "", errBadAuthHeader
	}
	return token, nil
}

// Authenticate accepts access tokens that are still on the Redis allow-list
// and stores the caller's Identity in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			response.Fail(w, http.StatusUnauthorized, capitalizeFirst(err.Error()))
			return
		}

		claims, err := m.jwtService.ValidateAs(token, jwt.AccessToken)
		if err != nil {
			if errors.Is(err, jwt.ErrWrongTokenType) {
				response.Fail(w, http.StatusUnauthorized, "Invalid token type")
				return
			}
			response.Fail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		live, err := m.redisClient.Exists(r.Context(), jwt.AllowListKey(jwt.AccessToken, claims.UserID, claims.TokenID)).Result()
		if err != nil {
			logrus.Warnf("Failed to check token allow-list: %+v", err)
			response.Fail(w, http.StatusInternalServerError, "Failed to validate token")
			return
		}
		if live == 0 {
			response.Fail(w, http.StatusUnauthorized, "Token has been revoked")
			return
		}

		ctx := withIdentity(r.Context(), Identity{
			UserID:  claims.UserID,
			Email:   claims.Email,
			RoleID:  claims.RoleID,
			TokenID: claims.TokenID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller set by Authenticate or WithUser
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// WithUser returns ctx carrying the authenticated staff identity.
// Used by background jobs and tests that call usecases directly.
func WithUser(ctx context.Context, userID uuid.UUID, roleID int) context.Context {
	return withIdentity(ctx, Identity{UserID: userID, RoleID: roleID})
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}

func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.RoleID, ok
}

// GetTokenIDFromContext is empty for identities created with WithUser
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.TokenID, ok && id.TokenID != ""
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
