package setup

import (
	"net/http"

	"github.com/Badsnus/cu-clubs-bot/server/cmd/server"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/handlers/club"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/handlers/event"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/handlers/user"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/middlewares"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/controller/http/render"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

// Setup builds the HTTP router of s.
func Setup(s *server.Server) http.Handler {
	// Pre-setup and global middlewares
	middle := middlewares.New(s.Logger.Named("middlewares"), s.JWT, s.Users)
	userHandler := user.New(s)
	clubHandler := club.New(s)
	eventHandler := event.New(s)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middle.RequestLogger)
	r.Use(s.Metrics.HTTPMiddleware)
	r.Use(middleware.Timeout(s.Settings.HTTP.RequestTimeout))
	if s.Settings.HTTP.RateLimit > 0 {
		limiter := middlewares.NewIPRateLimiter(rate.Limit(s.Settings.HTTP.RateLimit), s.Settings.HTTP.RateBurst)
		r.Use(middlewares.RateLimit(limiter))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := s.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			s.Logger.Errorf("health check failed: %v", err)
			render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(s.Assets.Dir()))))

	// Setup handlers
	r.Route("/api/v1", func(r chi.Router) {
		//User:
		r.Route("/auth", userHandler.AuthSetup)

		r.Group(func(r chi.Router) {
			r.Use(middle.Authorized)
			userHandler.UserSetup(r)
			clubHandler.ClubSetup(r)
			eventHandler.EventSetup(r)
		})
	})

	return r
}
