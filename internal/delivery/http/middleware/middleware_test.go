package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-management/config"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/observability/metrics"
	"clinic-management/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func newAuthFixture(t *testing.T) (*AuthMiddleware, *jwt.JWTService, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
	return NewAuthMiddleware(jwtService, client), jwtService, mr
}

func TestAuthenticate(t *testing.T) {
	m, jwtService, mr := newAuthFixture(t)
	userID := uuid.New()

	access, tokenID, err := jwtService.GenerateAccessToken(userID, "desk@clinic.test", entity.RoleIDReceptionist)
	require.NoError(t, err)
	refresh, _, err := jwtService.GenerateRefreshToken(userID, "desk@clinic.test", entity.RoleIDReceptionist)
	require.NoError(t, err)

	var gotUser uuid.UUID
	var gotRole int
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserIDFromContext(r.Context())
		gotRole, _ = GetRoleIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	call := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("Token "+access))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer not-a-jwt"))
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+refresh), "refresh tokens are not accepted")

	// Not yet stored in Redis counts as revoked
	assert.Equal(t, http.StatusUnauthorized, call("Bearer "+access))

	require.NoError(t, mr.Set(fmt.Sprintf("access_token:%s:%s", userID, tokenID), "1"))
	assert.Equal(t, http.StatusOK, call("Bearer "+access))
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, entity.RoleIDReceptionist, gotRole)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		role   *int
		guard  func(http.Handler) http.Handler
		status int
	}{
		{"no identity", nil, RequireAdmin, http.StatusUnauthorized},
		{"doctor on admin route", ptr(entity.RoleIDDoctor), RequireAdmin, http.StatusForbidden},
		{"admin on admin route", ptr(entity.RoleIDAdmin), RequireAdmin, http.StatusOK},
		{"doctor on clinical route", ptr(entity.RoleIDDoctor), RequireClinician, http.StatusOK},
		{"receptionist on clinical route", ptr(entity.RoleIDReceptionist), RequireClinician, http.StatusForbidden},
		{"receptionist on billing route", ptr(entity.RoleIDReceptionist), RequireFrontDesk, http.StatusOK},
		{"doctor on billing route", ptr(entity.RoleIDDoctor), RequireFrontDesk, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != nil {
				req = req.WithContext(WithUser(req.Context(), uuid.New(), *tt.role))
			}
			rec := httptest.NewRecorder()
			tt.guard(http.HandlerFunc(okHandler)).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	t.Cleanup(limiter.Stop)
	h := limiter.Handle(http.HandlerFunc(okHandler))

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.7"))
	assert.Equal(t, http.StatusOK, call("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.7"))
	assert.Equal(t, http.StatusOK, call("198.51.100.2"), "other clients keep their own budget")

	limiter.Stop()
}

func TestMetricsMiddlewareUsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsMiddleware(metrics.NewHTTPMetrics(reg))

	router := mux.NewRouter()
	router.HandleFunc("/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	router.Use(m.Handle)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/payments/"+uuid.NewString(), nil)
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	count, err := testutil.GatherAndCount(reg, "clinic_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "ids collapse into one route label")
}

func TestCORSPreflight(t *testing.T) {
	h := NewCORSMiddleware().Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/payments", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func ptr[T any](v T) *T {
	return &v
}

func TestCORSRestrictedOrigins(t *testing.T) {
	h := NewCORSMiddleware("https://desk.clinic.test/").Handle(http.HandlerFunc(okHandler))

	call := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/patients", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := call("https://desk.clinic.test")
	assert.Equal(t, "https://desk.clinic.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	rec = call("https://evil.test")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.StatusOK, rec.Code, "the browser enforces the missing header")
}
