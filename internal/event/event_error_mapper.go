package event

import (
	"errors"

	eventerrors "hr-calendar/internal/event/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var errStaleVersion = eventerrors.ErrConcurrentUpdate

// Postgres codes raised when two transactions race on the same row.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgInvalidTextRep       = "22P02"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return eventerrors.ErrEventNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return eventerrors.ErrConcurrentUpdate
		case pgInvalidTextRep:
			return eventerrors.ErrEventNotFound
		}
	}

	return err
}
