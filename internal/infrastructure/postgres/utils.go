package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE usados para clasificar errores del almacén.
const (
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
)

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// foreignKeyConstraint devuelve el nombre del constraint si err es una violación de FK (23503).
func foreignKeyConstraint(err error) (string, bool) {
	code, constraint := pgErrorCode(err)
	return constraint, code == sqlStateForeignKeyViolation
}

// isCheckViolation verifica si un error es una violación de CHECK (23514), p.ej. stock >= 0.
func isCheckViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == sqlStateCheckViolation
}
