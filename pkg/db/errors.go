package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
// When constraint is set, Postgres errors must name it; SQLite errors, which
// carry no constraint name, are matched on the listed columns instead.
func IsUniqueViolation(err error, constraint string, columns ...string) bool {
	return matchesViolation(err, pgUniqueViolation, constraint, columns, "duplicate key value", "UNIQUE constraint failed")
}

// IsCheckViolation reports whether err is a CHECK constraint violation.
func IsCheckViolation(err error, constraint string) bool {
	return matchesViolation(err, pgCheckViolation, constraint, nil, "violates check constraint", "CHECK constraint failed")
}

func matchesViolation(err error, sqlState, constraint string, columns []string, markers ...string) bool {
	if err == nil {
		return false
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == sqlState && (constraint == "" || pgxErr.ConstraintName == constraint)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == sqlState && (constraint == "" || pqErr.Constraint == constraint)
	}

	msg := err.Error()
	matched := false
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if constraint != "" && strings.Contains(msg, constraint) {
		return true
	}
	if len(columns) > 0 {
		for _, col := range columns {
			if !strings.Contains(msg, col) {
				return false
			}
		}
		return true
	}
	return constraint == ""
}
