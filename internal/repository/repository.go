package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

// isNoRows reports whether err is the pgx no-rows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsNotFound reports whether a repository error means the row does not exist.
func IsNotFound(err error) bool {
	return isNoRows(err)
}
