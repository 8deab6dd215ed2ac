// Package pgerrors translates PostgreSQL failures into domain error kinds.
package pgerrors

import (
	"errors"

	"fleet/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes of transactions that lost a race against a concurrent one.
const (
	SerializationFailure = "40001"
	DeadlockDetected     = "40P01"
	LockNotAvailable     = "55P03"
)

// Translate maps serialization failures, deadlocks and lock timeouts to
// *errs.StateConflictError. Other errors are returned unchanged.
//
// Example:
//
//	if err := tx.Commit().Error; err != nil {
//	    return pgerrors.Translate(err)
//	}
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case SerializationFailure, DeadlockDetected, LockNotAvailable:
		return errs.NewStateConflictErrorWithCause("transaction", pgErr.Code, "concurrent modification", err)
	default:
		return err
	}
}
