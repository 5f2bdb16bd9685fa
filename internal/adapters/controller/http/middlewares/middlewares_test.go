package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/auth"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers map[string]entity.Role

func (f fakeUsers) Authenticate(_ context.Context, userID string) (dto.Identity, error) {
	role, ok := f[userID]
	if !ok {
		return dto.Identity{}, errorz.ErrInvalidCredentials
	}
	return dto.Identity{UserID: userID, Role: role}, nil
}

func TestAuthorized(t *testing.T) {
	jwt := auth.NewJWTManager("secret", time.Hour, "test")
	users := fakeUsers{"user-1": entity.RoleClubAdmin}
	h := New(logger.Nop(), jwt, users)

	var seen dto.Identity
	protected := h.Authorized(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFrom(r.Context())
		require.True(t, ok)
		seen = identity
		w.WriteHeader(http.StatusOK)
	}))

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec.Code
	}

	// the token says STUDENT but the stored role wins
	token, _, err := jwt.Generate("user-1", entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do("Bearer "+token))
	assert.Equal(t, entity.RoleClubAdmin, seen.Role)

	assert.Equal(t, http.StatusUnauthorized, do(""))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer garbage"))

	ghost, _, err := jwt.Generate("user-2", entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+ghost))
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(NewIPRateLimiter(1, 2))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
