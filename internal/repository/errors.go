package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrSuperuserExists    = errors.New("superuser already exists")
	ErrDiscountCodeTaken  = errors.New("discount code already exists")
	ErrUnknownSortField   = errors.New("unknown sort field")
	errUnexpectedConflict = errors.New("unique constraint violated")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidTextRepr     = "22P02"
)

var uniqueConstraintErrors = map[string]error{
	"users_email_key":        ErrEmailTaken,
	"users_single_superuser": ErrSuperuserExists,
	"discounts_code_key":     ErrDiscountCodeTaken,
}

// translatePgError maps driver errors onto repository sentinels. Malformed ids
// and dangling references resolve to ErrNotFound, like an absent row.
func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			if mapped, ok := uniqueConstraintErrors[pgErr.ConstraintName]; ok {
				return mapped
			}
			return errUnexpectedConflict
		case pgForeignKeyViolation, pgInvalidTextRepr:
			return ErrNotFound
		}
	}
	return err
}
