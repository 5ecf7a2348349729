package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var (
	ErrPrescriptionNotFound     = errors.New("prescription not found")
	ErrPharmacyResponseNotFound = errors.New("pharmacy response not found")
	ErrDuplicate                = errors.New("duplicate record")
	ErrReferenceMissing         = errors.New("referenced record does not exist")
)

// translateError maps driver errors onto repository sentinels. Anything
// unrecognised is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return errors.Join(ErrDuplicate, err)
		case pgForeignKeyViolation:
			return errors.Join(ErrReferenceMissing, err)
		}
	}
	return err
}
