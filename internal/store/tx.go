package store

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/lumenshare/cardledger/internal/domain"
)

// txContextKey carries the transaction handle through a settlement
// callback so payment collaborators join the surrounding transaction.
type txContextKey struct{}

// WithTx returns a context carrying the given transaction handle
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// DBFromContext returns the transaction handle carried by ctx, or the
// fallback connection when no transaction is in flight.
func DBFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback
}

// Postgres error codes that indicate a transient write conflict:
// serialization_failure and deadlock_detected.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// isRetryableConflict reports whether err is a transient storage
// conflict that a fresh run of the whole transaction may resolve.
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// runInTx executes fn in a transaction, transparently retrying the whole
// sequence on write conflicts with exponential backoff. Business errors
// abort immediately; exhausted retries surface as domain.ErrStorageConflict.
func (s *pgStore) runInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond
	b.MaxElapsedTime = 3 * time.Second

	operation := func() error {
		err := s.db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if isRetryableConflict(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(operation, backoff.WithContext(b, ctx))
	if err != nil && isRetryableConflict(err) {
		return errors.Join(domain.ErrStorageConflict, err)
	}
	return err
}
