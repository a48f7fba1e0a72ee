// Пакет repository - доступ к таблицам users и patients (pgx, чистый SQL).
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound - записи нет или она принадлежит другому владельцу.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict - нарушено ограничение уникальности.
	ErrConflict = errors.New("конфликт - запись уже существует")
)

// DBTX - общее подмножество *pgxpool.Pool, pgx.Tx и pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// violates - true, если err нарушает ограничение uniqueConstraint.
// Пустое имя совпадает с любым ограничением уникальности.
func violates(err error, uniqueConstraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return uniqueConstraint == "" || pgErr.ConstraintName == uniqueConstraint
}
