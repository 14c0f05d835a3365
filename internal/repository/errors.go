// Package repository is the storage interface over the relational schema.
// Repos accept a *sqlx.DB; methods with a Tx suffix run inside a transaction
// owned by the caller and touch only that transaction, never the pool.
// Sentinel errors below let handlers map failures to HTTP responses with
// errors.Is.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateUser       = errors.New("username or email already exists")
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrAlreadyApplied      = errors.New("already applied for this opportunity")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidRefresh      = errors.New("refresh token invalid, expired or revoked")
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// isUniqueViolation recognises duplicate-key errors from every supported
// driver: MySQL 1062, PostgreSQL 23505 and SQLite UNIQUE/PRIMARY KEY
// constraint failures.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}
