package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/auth"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/render"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	"github.com/go-chi/chi/v5/middleware"
)

type tokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

type identityResolver interface {
	Authenticate(ctx context.Context, userID string) (dto.Identity, error)
}

type Handler struct {
	logger *types.Logger
	tokens tokenValidator
	users  identityResolver
}

func New(logger *types.Logger, tokens tokenValidator, users identityResolver) *Handler {
	return &Handler{
		logger: logger,
		tokens: tokens,
		users:  users,
	}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, identity dto.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the caller stored by Authorized.
func IdentityFrom(ctx context.Context) (dto.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(dto.Identity)
	return identity, ok
}

// Authorized rejects requests without a valid bearer token. The caller's role is
// read from the database on every request, so role changes apply immediately.
func (h *Handler) Authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if !ok {
			render.Error(w, h.logger, r, errorz.ErrInvalidCredentials)
			return
		}
		claims, err := h.tokens.Validate(token)
		if err != nil {
			render.Error(w, h.logger, r, err)
			return
		}
		identity, err := h.users.Authenticate(r.Context(), claims.Subject)
		if err != nil {
			render.Error(w, h.logger, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequestLogger logs every request with its status and duration.
func (h *Handler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.logger.Debugf("%s %s -> %d (%s, request_id=%s)",
			r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
	})
}
