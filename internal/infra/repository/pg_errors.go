package repository

import (
	"errors"

	repo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQLの競合系エラーをrepo.ErrConflictに変換する。
// 23505: unique_violation / 40001: serialization_failure / 40P01: deadlock_detected
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return repo.ErrConflict
		}
	}
	return err
}
