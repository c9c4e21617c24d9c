package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubhouse/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, roles []string, ttl time.Duration) string {
	t.Helper()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func protectedHandler(auth *Authenticator, roles ...string) (httprouter.Handle, *string) {
	var seen string
	h := auth.Require(roles...)(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen = Actor(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &seen
}

func TestAuthenticator_Require(t *testing.T) {
	auth := NewAuthenticator(testSecret, logger.Discard())

	tests := []struct {
		name       string
		header     string
		roles      []string
		wantStatus int
		wantActor  string
	}{
		{
			name:       "missing token",
			roles:      []string{"super_admin"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			header:     "Bearer not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			header:     "Bearer " + signToken(t, "other", "u1", []string{"super_admin"}, time.Hour),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			header:     "Bearer " + signToken(t, testSecret, "u1", []string{"super_admin"}, -time.Minute),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing role",
			header:     "Bearer " + signToken(t, testSecret, "coach-7", []string{"coach"}, time.Hour),
			roles:      []string{"super_admin"},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "super admin",
			header:     "Bearer " + signToken(t, testSecret, "admin-1", []string{"super_admin"}, time.Hour),
			roles:      []string{"super_admin"},
			wantStatus: http.StatusOK,
			wantActor:  "admin-1",
		},
		{
			name:       "any authenticated caller",
			header:     "Bearer " + signToken(t, testSecret, "parent-3", nil, time.Hour),
			wantStatus: http.StatusOK,
			wantActor:  "parent-3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := protectedHandler(auth, tt.roles...)
			req := httptest.NewRequest(http.MethodPut, "/api/v1/marketplace/admin/bulk-status", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h(rec, req, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, *seen)
		})
	}
}

func TestAuthenticator_DisabledPassesThrough(t *testing.T) {
	auth := NewAuthenticator("", logger.Discard())
	require.False(t, auth.Enabled())

	h, seen := protectedHandler(auth, "super_admin")
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", *seen)
}

func TestPrincipal_HasAnyRole(t *testing.T) {
	p := Principal{Subject: "x", Roles: []string{"coach", "staff"}}
	assert.True(t, p.HasAnyRole("admin", "staff"))
	assert.False(t, p.HasAnyRole("super_admin"))
	assert.False(t, p.HasAnyRole())
}
