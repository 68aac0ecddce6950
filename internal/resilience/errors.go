package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes that are safe to retry.
const (
	sqlStateConnectionClass  = "08"
	sqlStateCannotConnectNow = "57P03"
	sqlStateSerialization    = "40001"
	sqlStateDeadlock         = "40P01"
)

// IsTransient reports whether err (or any error in its chain) is a
// connection or contention failure that a retry may clear: a refused or
// reset connection, a network timeout, a Postgres connection-class or
// serialization error, or a busy SQLite database.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, sqlStateConnectionClass),
			pgErr.Code == sqlStateCannotConnectNow,
			pgErr.Code == sqlStateSerialization,
			pgErr.Code == sqlStateDeadlock:
			return true
		}
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Driver errors that only surface as text.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection refused",
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"database is locked",
		"sqlite_busy",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}
