package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/8.2/errcodes-appendix.html

// IsDiskFullError checks if the error is a disk_full error
func IsDiskFullError(err error) bool {
	var pqErr *pgconn.PgError
	if errors.As(err, &pqErr) {
		return pqErr.Code == "53100"
	}
	return false
}

// IsQuotaError checks if the error is one of the insufficient resources errors
// other than disk_full (out_of_memory, too_many_connections, ...)
func IsQuotaError(err error) bool {
	var pqErr *pgconn.PgError
	if errors.As(err, &pqErr) {
		return pqErr.Code == "53200" || pqErr.Code == "54000"
	}
	return false
}
