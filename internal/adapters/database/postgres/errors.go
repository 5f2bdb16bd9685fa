package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Badsnus/cu-clubs-bot/server/internal/domain/common/errorz"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"

	txMaxRetries = 4
)

// transaction runs fn in a single database transaction and retries it while the
// failure is transient (serialization failure, deadlock, lost compare-and-swap).
func transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond

	return backoff.Retry(func() error {
		err := translateError(db.WithContext(ctx).Transaction(fn))
		if err == nil {
			return nil
		}
		if errors.Is(err, errorz.ErrTransient) && ctx.Err() == nil {
			return err
		}
		return backoff.Permanent(err)
	}, backoff.WithContext(backoff.WithMaxRetries(policy, txMaxRetries), ctx))
}

// translateError maps driver failures onto the domain error kinds.
// Domain errors returned from inside a transaction pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{
		errorz.ErrNotFound,
		errorz.ErrConflict,
		errorz.ErrUnauthorized,
		errorz.ErrTransient,
		errorz.ErrInvalidInput,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %v", errorz.ErrTransient, err)
		}
	}

	if msg := err.Error(); strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return fmt.Errorf("%w: %v", errorz.ErrTransient, err)
	}

	return err
}

// isUniqueViolation reports whether err is a unique constraint violation.
// When column is not empty, the violated constraint must cover that column.
func isUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation && strings.Contains(pgErr.ConstraintName, column)
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return column == ""
	}

	// SQLite: "UNIQUE constraint failed: clubs.name"
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return column == "" || strings.Contains(msg, "."+column)
}

func notFound(err error, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return translateError(err)
}
