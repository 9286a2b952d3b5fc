package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"promptvault/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRep      = "22P02"
)

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool {
	return pgCode(err) == pgUniqueViolation
}

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool {
	return pgCode(err) == pgForeignKeyViolation
}

// IsPgInvalidInputError reports malformed input such as a non-UUID id.
func IsPgInvalidInputError(err error) bool {
	return pgCode(err) == pgInvalidTextRep
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// NotFound wraps domain.ErrNotFound for a resource.
func NotFound(resource, id string) error {
	return fmt.Errorf("%s %s: %w", resource, id, domain.ErrNotFound)
}

// MapLookupError translates errors from single-row lookups.
func MapLookupError(err error, resource, id string) error {
	if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
		return NotFound(resource, id)
	}
	return fmt.Errorf("get %s: %w", resource, err)
}
