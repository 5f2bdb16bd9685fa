package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/assets"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/auth"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/config"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/database/postgres"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/database/redis"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/metrics"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/service"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/validator"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
	qr "github.com/Badsnus/cu-clubs-bot/server/pkg/qrcode"
	playground "github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Server struct {
	Settings  *config.Settings
	Logger    *types.Logger
	Metrics   *metrics.Metrics
	Validator *playground.Validate
	JWT       *auth.JWTManager
	Assets    *assets.LocalStore
	DB        *gorm.DB
	Redis     *redis.Client

	Users         *service.UserService
	Clubs         *service.ClubService
	ClubRequests  *service.ClubRequestService
	Memberships   *service.MembershipService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Announcements *service.AnnouncementService
	Notify        *service.NotifyService
}

func New(cfg *config.Config) (*Server, error) {
	settings := cfg.Settings

	serverLogger, err := logger.Named("http")
	if err != nil {
		return nil, err
	}
	serviceLogger, err := logger.Named("service")
	if err != nil {
		return nil, err
	}
	notifyLogger, err := logger.Named("notify")
	if err != nil {
		return nil, err
	}

	validate, err := validator.New(settings.EmailDomains)
	if err != nil {
		return nil, err
	}
	assetStore, err := assets.NewLocalStore(settings.Assets.Dir, settings.Assets.BaseURL, settings.Assets.MaxWidth, settings.Assets.MaxBytes)
	if err != nil {
		return nil, err
	}
	jwt := auth.NewJWTManager(settings.Auth.JWTSecret, settings.Auth.TokenTTL, settings.Auth.Issuer)

	userStorage := postgres.NewUserStorage(cfg.Database)
	clubStorage := postgres.NewClubStorage(cfg.Database)
	clubRequestStorage := postgres.NewClubRequestStorage(cfg.Database)
	membershipStorage := postgres.NewMembershipStorage(cfg.Database)
	eventStorage := postgres.NewEventStorage(cfg.Database)
	registrationStorage := postgres.NewRegistrationStorage(cfg.Database)
	announcementStorage := postgres.NewAnnouncementStorage(cfg.Database)
	notificationStorage := postgres.NewNotificationStorage(cfg.Database)

	notify := service.NewNotifyService(notifyLogger, cfg.Mailer, eventStorage, notificationStorage, settings.PublicURL)
	if settings.LogMailTo != "" {
		logger.AddLogHook(notify.LogHook(settings.LogMailTo, zapcore.Level(settings.LogMailLevel)))
	}

	return &Server{
		Settings:  settings,
		Logger:    serverLogger,
		Metrics:   cfg.Metrics,
		Validator: validate,
		JWT:       jwt,
		Assets:    assetStore,
		DB:        cfg.Database,
		Redis:     cfg.Redis,

		Users: service.NewUserService(
			serviceLogger.Named("users"), cfg.Metrics,
			userStorage, cfg.Redis.Codes, cfg.Redis.Emails, notify,
			auth.NewBcryptHasher(settings.Auth.BcryptCost), jwt, assetStore,
			service.UserConfig{
				CodeLength:      settings.Auth.CodeLength,
				CodeTTL:         settings.Auth.CodeTTL,
				MaxCodeAttempts: settings.Auth.MaxCodeAttempts,
				ResetTTL:        settings.Auth.ResetTTL,
				MailCooldown:    settings.Auth.MailCooldown,
			},
		),
		Clubs: service.NewClubService(serviceLogger.Named("clubs"), cfg.Metrics, clubStorage, userStorage, assetStore),
		ClubRequests: service.NewClubRequestService(
			serviceLogger.Named("requests"), cfg.Metrics, clubRequestStorage, userStorage, notify,
		),
		Memberships: service.NewMembershipService(serviceLogger.Named("memberships"), cfg.Metrics, membershipStorage, clubStorage),
		Events: service.NewEventService(
			serviceLogger.Named("events"), cfg.Metrics, eventStorage, clubStorage, registrationStorage, assetStore,
		),
		Registrations: service.NewRegistrationService(
			serviceLogger.Named("registrations"), cfg.Metrics,
			registrationStorage, eventStorage, clubStorage, userStorage, notify, qr.Ticket,
		),
		Announcements: service.NewAnnouncementService(
			serviceLogger.Named("announcements"), cfg.Metrics, announcementStorage, clubStorage,
		),
		Notify: notify,
	}, nil
}

// Start serves handler and runs the reminder scheduler until ctx is cancelled,
// then shuts the HTTP server down gracefully.
func (s *Server) Start(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              s.Settings.HTTP.Addr,
		Handler:           handler,
		ReadTimeout:       s.Settings.HTTP.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.Settings.HTTP.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Logger.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		s.Notify.StartNotifyScheduler(ctx)
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Settings.HTTP.ShutdownTimeout)
		defer cancel()
		s.Logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
