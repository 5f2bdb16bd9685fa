package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/dto"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/entity"
	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/utils/sanitize"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/generator"
	"github.com/Badsnus/cu-clubs-bot/server/pkg/logger/types"
)

const (
	codeContextVerify = "verify"
	mailContextVerify = "verify"
	mailContextReset  = "reset"
)

type UserStorage interface {
	Create(ctx context.Context, user *entity.User) (*entity.User, error)
	Get(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	Count(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, id string, name, avatarURL *string) (*entity.User, error)
	MarkVerified(ctx context.Context, id string) error
	SetResetToken(ctx context.Context, id, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (*entity.User, error)
	Delete(ctx context.Context, id string) error
	MakeSuperAdmin(ctx context.Context, id string) (*entity.User, error)
}

type codeStorage interface {
	Get(ctx context.Context, userID string) (dto.Code, error)
	Set(ctx context.Context, userID, code, codeContext string, expiration time.Duration) error
	Attempt(ctx context.Context, userID string, expiration time.Duration) (int64, error)
	Clear(ctx context.Context, userID string) error
}

type mailThrottle interface {
	Acquire(ctx context.Context, email, emailContext string, cooldown time.Duration) (bool, error)
	Release(ctx context.Context, email, emailContext string) error
}

type userNotifier interface {
	SendVerificationCode(to, name, code string) error
	SendPasswordReset(to, name, token string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type tokenIssuer interface {
	Generate(userID string, role entity.Role) (string, time.Time, error)
}

type UserConfig struct {
	CodeLength      int
	CodeTTL         time.Duration
	MaxCodeAttempts int64
	ResetTTL        time.Duration
	MailCooldown    time.Duration
}

type UserService struct {
	logger  *types.Logger
	metrics metricsRecorder

	storage  UserStorage
	codes    codeStorage
	throttle mailThrottle
	notifier userNotifier
	hasher   passwordHasher
	tokens   tokenIssuer
	assets   assetStore

	cfg UserConfig
	now func() time.Time
}

func NewUserService(
	logger *types.Logger,
	metrics metricsRecorder,
	storage UserStorage,
	codes codeStorage,
	throttle mailThrottle,
	notifier userNotifier,
	hasher passwordHasher,
	tokens tokenIssuer,
	assets assetStore,
	cfg UserConfig,
) *UserService {
	return &UserService{
		logger:   logger,
		metrics:  metrics,
		storage:  storage,
		codes:    codes,
		throttle: throttle,
		notifier: notifier,
		hasher:   hasher,
		tokens:   tokens,
		assets:   assets,
		cfg:      cfg,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an unverified account and mails it a verification code.
// The account only exists if the mail went out.
func (s *UserService) SignUp(ctx context.Context, name, email, password string) (user *entity.User, err error) {
	defer func() { s.metrics.Record("user_sign_up", err) }()

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err = s.storage.Create(ctx, &entity.User{
		Name:         sanitize.Text(name),
		Email:        normalizeEmail(email),
		PasswordHash: &hash,
		Role:         entity.RoleStudent,
	})
	if err != nil {
		return nil, fmt.Errorf("sign up %s: %w", email, err)
	}

	if err = s.sendVerificationCode(ctx, user); err != nil {
		if errDelete := s.storage.Delete(ctx, user.ID); errDelete != nil {
			s.logger.Errorf("failed to roll back account %s after mail failure: %v", user.ID, errDelete)
		}
		return nil, err
	}

	s.logger.Infof("account created (user_id=%s)", user.ID)
	return user, nil
}

func (s *UserService) sendVerificationCode(ctx context.Context, user *entity.User) error {
	code, err := generator.Code(s.cfg.CodeLength)
	if err != nil {
		return err
	}
	if err = s.codes.Set(ctx, user.ID, code, codeContextVerify, s.cfg.CodeTTL); err != nil {
		return err
	}
	if err = s.notifier.SendVerificationCode(user.Email, user.Name, code); err != nil {
		if errClear := s.codes.Clear(ctx, user.ID); errClear != nil {
			s.logger.Warnf("failed to clear code of %s: %v", user.ID, errClear)
		}
		return fmt.Errorf("%w: %v", errorz.ErrEmailSend, err)
	}
	return nil
}

// ResendCode mails a fresh verification code, at most once per cooldown.
func (s *UserService) ResendCode(ctx context.Context, email string) (err error) {
	defer func() { s.metrics.Record("user_resend_code", err) }()

	user, err := s.storage.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if user.IsVerified {
		return errorz.ErrAlreadyVerified
	}

	ok, err := s.throttle.Acquire(ctx, user.Email, mailContextVerify, s.cfg.MailCooldown)
	if err != nil {
		return err
	}
	if !ok {
		return errorz.ErrTooManyRequests
	}

	if err = s.sendVerificationCode(ctx, user); err != nil {
		if errRelease := s.throttle.Release(ctx, user.Email, mailContextVerify); errRelease != nil {
			s.logger.Warnf("failed to release mail cooldown of %s: %v", user.ID, errRelease)
		}
		return err
	}
	return nil
}

// Verify confirms the account's email with the mailed code. After MaxCodeAttempts
// wrong guesses the code is burned and a new one has to be requested.
func (s *UserService) Verify(ctx context.Context, email, code string) (user *entity.User, err error) {
	defer func() { s.metrics.Record("user_verify", err) }()

	user, err = s.storage.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, errorz.ErrAlreadyVerified
	}

	stored, err := s.codes.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if stored.Code == "" || stored.CodeContext != codeContextVerify {
		return nil, errorz.ErrInvalidCode
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(strings.TrimSpace(code))) != 1 {
		attempts, err := s.codes.Attempt(ctx, user.ID, s.cfg.CodeTTL)
		if err != nil {
			return nil, err
		}
		if attempts >= s.cfg.MaxCodeAttempts {
			if err = s.codes.Clear(ctx, user.ID); err != nil {
				return nil, err
			}
		}
		return nil, errorz.ErrInvalidCode
	}

	if err = s.storage.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	if err = s.codes.Clear(ctx, user.ID); err != nil {
		s.logger.Warnf("failed to clear code of %s: %v", user.ID, err)
	}
	user.IsVerified = true

	s.logger.Infof("account verified (user_id=%s)", user.ID)
	return user, nil
}

// Login checks the credentials of a verified account and issues an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (token string, expiresAt time.Time, user *entity.User, err error) {
	defer func() { s.metrics.Record("user_login", err) }()

	user, err = s.storage.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return "", time.Time{}, nil, errorz.ErrInvalidCredentials
		}
		return "", time.Time{}, nil, err
	}
	if user.PasswordHash == nil || s.hasher.Compare(*user.PasswordHash, password) != nil {
		return "", time.Time{}, nil, errorz.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return "", time.Time{}, nil, errorz.ErrNotVerified
	}

	token, expiresAt, err = s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, user, nil
}

// RequestPasswordReset mails a reset link. Unknown addresses are accepted silently.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) (err error) {
	defer func() { s.metrics.Record("user_request_reset", err) }()

	user, err := s.storage.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			s.logger.Debugf("password reset requested for unknown email")
			return nil
		}
		return err
	}

	ok, err := s.throttle.Acquire(ctx, user.Email, mailContextReset, s.cfg.MailCooldown)
	if err != nil {
		return err
	}
	if !ok {
		return errorz.ErrTooManyRequests
	}

	token, err := generator.Token(32)
	if err != nil {
		return err
	}
	if err = s.storage.SetResetToken(ctx, user.ID, token, s.now().Add(s.cfg.ResetTTL)); err != nil {
		return err
	}
	if err = s.notifier.SendPasswordReset(user.Email, user.Name, token); err != nil {
		if errRelease := s.throttle.Release(ctx, user.Email, mailContextReset); errRelease != nil {
			s.logger.Warnf("failed to release mail cooldown of %s: %v", user.ID, errRelease)
		}
		return fmt.Errorf("%w: %v", errorz.ErrEmailSend, err)
	}
	return nil
}

// ResetPassword sets a new password using a mailed reset token. A token works once.
func (s *UserService) ResetPassword(ctx context.Context, token, password string) (err error) {
	defer func() { s.metrics.Record("user_reset_password", err) }()

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	user, err := s.storage.ResetPassword(ctx, token, hash, s.now())
	if err != nil {
		return err
	}
	s.logger.Infof("password reset (user_id=%s)", user.ID)
	return nil
}

// Authenticate resolves a token subject into the caller's current identity.
// The role comes from the store, not from the token, so promotions apply at once.
func (s *UserService) Authenticate(ctx context.Context, userID string) (dto.Identity, error) {
	user, err := s.storage.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, errorz.ErrNotFound) {
			return dto.Identity{}, errorz.ErrInvalidCredentials
		}
		return dto.Identity{}, err
	}
	if !user.IsVerified {
		return dto.Identity{}, errorz.ErrNotVerified
	}
	return dto.Identity{UserID: user.ID, Role: user.Role}, nil
}

func (s *UserService) Me(ctx context.Context, caller dto.Identity) (*entity.User, error) {
	return s.storage.Get(ctx, caller.UserID)
}

func (s *UserService) UpdateName(ctx context.Context, caller dto.Identity, name string) (*entity.User, error) {
	name = sanitize.Text(name)
	if name == "" {
		return nil, errorz.Invalid("name", "is empty")
	}
	return s.storage.UpdateProfile(ctx, caller.UserID, &name, nil)
}

// UploadAvatar stores the image first and only then points the profile at it.
func (s *UserService) UploadAvatar(ctx context.Context, caller dto.Identity, data []byte) (user *entity.User, err error) {
	defer func() { s.metrics.Record("user_upload_avatar", err) }()

	url, err := s.assets.Save(ctx, "avatars", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errorz.ErrAssetStore, err)
	}
	return s.storage.UpdateProfile(ctx, caller.UserID, nil, &url)
}

func (s *UserService) List(ctx context.Context, caller dto.Identity) ([]entity.User, error) {
	if err := requireManager(caller); err != nil {
		return nil, err
	}
	return s.storage.GetAll(ctx)
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.storage.Count(ctx)
}

// CreateSuperAdmin grants SUPER_ADMIN to the account with email, creating a verified
// account first when there is none.
func (s *UserService) CreateSuperAdmin(ctx context.Context, name, email, password string) (*entity.User, error) {
	user, err := s.storage.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, errorz.ErrNotFound) {
			return nil, err
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		user, err = s.storage.Create(ctx, &entity.User{
			Name:         sanitize.Text(name),
			Email:        normalizeEmail(email),
			PasswordHash: &hash,
			Role:         entity.RoleStudent,
			IsVerified:   true,
		})
		if err != nil {
			return nil, err
		}
	} else if !user.IsVerified {
		if err = s.storage.MarkVerified(ctx, user.ID); err != nil {
			return nil, err
		}
	}

	user, err = s.storage.MakeSuperAdmin(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("super admin granted (user_id=%s)", user.ID)
	return user, nil
}
