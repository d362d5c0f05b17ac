package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/sameerjoshi/docsimus-physicians-sub001/internal/domain/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// maxCASAttempts bounds how often an operation re-reads and re-validates
// after losing a version compare-and-set.
const maxCASAttempts = 3

// errStaleVersion tells withRetry that the application changed between the
// read and the conditional write.
var errStaleVersion = errors.New("stale application version")

// runInTx runs fn inside one transaction and commits when it returns nil.
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return apperror.Storage("failed to begin transaction", tx.Error)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return apperror.Storage("failed to commit transaction", err)
	}
	return nil
}

// withRetry runs fn in a fresh transaction until it stops reporting
// errStaleVersion, at most maxCASAttempts times.
func withRetry(ctx context.Context, db *gorm.DB, log *logrus.Logger, op string, fn func(tx *gorm.DB) error) error {
	for attempt := 1; attempt <= maxCASAttempts; attempt++ {
		err := runInTx(ctx, db, fn)
		if !errors.Is(err, errStaleVersion) {
			return err
		}
		log.Debugf("%s lost a concurrent update, attempt %d of %d", op, attempt, maxCASAttempts)
	}
	log.Warnf("Failed to %s: application kept changing concurrently", op)
	return ErrConcurrentUpdate
}

// isDuplicateKeyError checks if the error is a unique constraint violation.
// A non-empty constraintName narrows the match for PostgreSQL errors.
func isDuplicateKeyError(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		if pgErr.Code == "23505" && strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)) {
			return true
		}
	}
	// SQLite without error translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
