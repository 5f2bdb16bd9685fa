package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	postgresStorage "github.com/Badsnus/cu-clubs-bot/server/internal/adapters/database/postgres"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/database/redis"
	"github.com/Badsnus/cu-clubs-bot/server/internal/adapters/metrics"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/location"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/smtp"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Settings struct {
	Debug     bool
	Timezone  string
	LogToFile bool
	LogsDir   string
	JSONLogs  bool

	// Mail log entries at or above LogMailLevel to LogMailTo. Empty disables it.
	LogMailTo    string
	LogMailLevel int

	PublicURL    string
	EmailDomains []string

	HTTP     HTTPSettings
	Database DatabaseSettings
	Redis    RedisSettings
	SMTP     SMTPSettings
	Auth     AuthSettings
	Assets   AssetsSettings
}

type HTTPSettings struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64
	RateBurst       int
}

type DatabaseSettings struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DatabaseSettings) DSN() string {
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%d sslmode=%s TimeZone=UTC",
		d.User, d.Password, d.Name, d.Host, d.Port, d.SSLMode)
}

type RedisSettings struct {
	Host     string
	Port     string
	Password string
}

type SMTPSettings struct {
	Host     string
	Port     int
	Login    string
	Password string
	From     string
	Domain   string
}

type AuthSettings struct {
	JWTSecret       string
	Issuer          string
	TokenTTL        time.Duration
	BcryptCost      int
	CodeLength      int
	CodeTTL         time.Duration
	MaxCodeAttempts int64
	ResetTTL        time.Duration
	MailCooldown    time.Duration
}

type AssetsSettings struct {
	Dir      string
	BaseURL  string
	MaxWidth uint
	MaxBytes int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("settings.timezone", "UTC")
	v.SetDefault("settings.logs-dir", "logs")
	v.SetDefault("settings.logging.mail-level", 2)
	v.SetDefault("settings.public-url", "http://localhost:8080")

	v.SetDefault("service.http.addr", ":8080")
	v.SetDefault("service.http.read-timeout", 10*time.Second)
	v.SetDefault("service.http.write-timeout", 30*time.Second)
	v.SetDefault("service.http.request-timeout", 15*time.Second)
	v.SetDefault("service.http.shutdown-timeout", 10*time.Second)
	v.SetDefault("service.http.rate-limit", 10.0)
	v.SetDefault("service.http.rate-burst", 20)

	v.SetDefault("service.database.host", "localhost")
	v.SetDefault("service.database.port", 5432)
	v.SetDefault("service.database.sslmode", "disable")

	v.SetDefault("service.redis.host", "localhost")
	v.SetDefault("service.redis.port", "6379")

	v.SetDefault("service.smtp.port", 587)

	v.SetDefault("service.auth.issuer", "cu-clubs")
	v.SetDefault("service.auth.token-ttl", 24*time.Hour)
	v.SetDefault("service.auth.bcrypt-cost", 12)
	v.SetDefault("service.auth.code-length", 6)
	v.SetDefault("service.auth.code-ttl", 15*time.Minute)
	v.SetDefault("service.auth.max-code-attempts", 5)
	v.SetDefault("service.auth.reset-ttl", time.Hour)
	v.SetDefault("service.auth.mail-cooldown", time.Minute)

	v.SetDefault("service.assets.dir", "assets")
	v.SetDefault("service.assets.base-url", "http://localhost:8080/assets")
	v.SetDefault("service.assets.max-width", 1024)
	v.SetDefault("service.assets.max-bytes", 5<<20)
}

// Load reads config.yaml from dir (or the working directory) and applies
// CLUBS_* environment overrides, e.g. CLUBS_SERVICE_DATABASE_PASSWORD.
func Load(dir string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)
	v.SetEnvPrefix("CLUBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	s := &Settings{
		Debug:        v.GetBool("settings.debug"),
		Timezone:     v.GetString("settings.timezone"),
		LogToFile:    v.GetBool("settings.log-to-file"),
		LogsDir:      v.GetString("settings.logs-dir"),
		JSONLogs:     v.GetBool("settings.json-logs"),
		LogMailTo:    v.GetString("settings.logging.mail-to"),
		LogMailLevel: v.GetInt("settings.logging.mail-level"),
		PublicURL:    v.GetString("settings.public-url"),
		EmailDomains: v.GetStringSlice("settings.email-domains"),
		HTTP: HTTPSettings{
			Addr:            v.GetString("service.http.addr"),
			ReadTimeout:     v.GetDuration("service.http.read-timeout"),
			WriteTimeout:    v.GetDuration("service.http.write-timeout"),
			RequestTimeout:  v.GetDuration("service.http.request-timeout"),
			ShutdownTimeout: v.GetDuration("service.http.shutdown-timeout"),
			RateLimit:       v.GetFloat64("service.http.rate-limit"),
			RateBurst:       v.GetInt("service.http.rate-burst"),
		},
		Database: DatabaseSettings{
			Host:     v.GetString("service.database.host"),
			Port:     v.GetInt("service.database.port"),
			User:     v.GetString("service.database.user"),
			Password: v.GetString("service.database.password"),
			Name:     v.GetString("service.database.name"),
			SSLMode:  v.GetString("service.database.sslmode"),
		},
		Redis: RedisSettings{
			Host:     v.GetString("service.redis.host"),
			Port:     v.GetString("service.redis.port"),
			Password: v.GetString("service.redis.password"),
		},
		SMTP: SMTPSettings{
			Host:     v.GetString("service.smtp.host"),
			Port:     v.GetInt("service.smtp.port"),
			Login:    v.GetString("service.smtp.login"),
			Password: v.GetString("service.smtp.password"),
			From:     v.GetString("service.smtp.from"),
			Domain:   v.GetString("service.smtp.domain"),
		},
		Auth: AuthSettings{
			JWTSecret:       v.GetString("service.auth.jwt-secret"),
			Issuer:          v.GetString("service.auth.issuer"),
			TokenTTL:        v.GetDuration("service.auth.token-ttl"),
			BcryptCost:      v.GetInt("service.auth.bcrypt-cost"),
			CodeLength:      v.GetInt("service.auth.code-length"),
			CodeTTL:         v.GetDuration("service.auth.code-ttl"),
			MaxCodeAttempts: v.GetInt64("service.auth.max-code-attempts"),
			ResetTTL:        v.GetDuration("service.auth.reset-ttl"),
			MailCooldown:    v.GetDuration("service.auth.mail-cooldown"),
		},
		Assets: AssetsSettings{
			Dir:      v.GetString("service.assets.dir"),
			BaseURL:  v.GetString("service.assets.base-url"),
			MaxWidth: v.GetUint("service.assets.max-width"),
			MaxBytes: v.GetInt("service.assets.max-bytes"),
		},
	}
	return s, s.validate()
}

func (s *Settings) validate() error {
	switch {
	case s.Auth.JWTSecret == "":
		return fmt.Errorf("service.auth.jwt-secret is required")
	case s.Auth.CodeLength < 4:
		return fmt.Errorf("service.auth.code-length must be at least 4")
	case s.Auth.MaxCodeAttempts < 1:
		return fmt.Errorf("service.auth.max-code-attempts must be positive")
	case s.HTTP.RateLimit <= 0 || s.HTTP.RateBurst <= 0:
		return fmt.Errorf("service.http.rate-limit and rate-burst must be positive")
	}
	return nil
}

type Config struct {
	Settings *Settings
	Database *gorm.DB
	Redis    *redis.Client
	Mailer   *smtp.Client
	Metrics  *metrics.Metrics
}

// Get loads the settings, initializes the logger and connects every backing service.
func Get(ctx context.Context, dir string) (*Config, error) {
	settings, err := Load(dir)
	if err != nil {
		return nil, err
	}

	if err = location.Set(settings.Timezone); err != nil {
		return nil, err
	}

	err = logger.Init(logger.Config{
		Debug:        settings.Debug,
		TimeLocation: location.Location(),
		LogToFile:    settings.LogToFile,
		LogsDir:      settings.LogsDir,
		JSONConsole:  settings.JSONLogs,
	})
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	logger.AddLogHook(m.LogHook())

	database, err := OpenDatabase(settings)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Successfully connected to the database")

	redisClient, err := redis.New(ctx, redis.Options{
		Host:     settings.Redis.Host,
		Port:     settings.Redis.Port,
		Password: settings.Redis.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Log.Info("Successfully connected to redis")

	dialer := smtp.NewDialer(settings.SMTP.Host, settings.SMTP.Port, settings.SMTP.Login, settings.SMTP.Password)

	return &Config{
		Settings: settings,
		Database: database,
		Redis:    redisClient,
		Mailer:   smtp.NewClient(dialer, settings.SMTP.From, settings.SMTP.Domain),
		Metrics:  m,
	}, nil
}

// OpenDatabase connects to postgres and migrates the schema.
func OpenDatabase(settings *Settings) (*gorm.DB, error) {
	var gormConfig *gorm.Config
	if settings.Debug {
		newLogger := gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold: time.Second,
				LogLevel:      gormLogger.Info,
				Colorful:      true,
			},
		)
		gormConfig = &gorm.Config{
			Logger: newLogger,
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Warn),
		}
	}

	database, err := gorm.Open(postgres.Open(settings.Database.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	if err = postgresStorage.Migrate(database); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return database, nil
}

func (c *Config) Close() {
	if sqlDB, err := c.Database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = c.Redis.Close()
}
