// Package repository holds the SQL data access layer. Repositories resolve
// their executor from the context so that a service can group several calls
// into one transaction with database.WithinTx.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a lookup matches no row. Services translate
// it into the entity specific not-found error.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique key.
var ErrDuplicate = errors.New("duplicate key")

// ErrUnknownRole is returned for a role name outside model.AllRoles.
var ErrUnknownRole = errors.New("unknown role")

// isDuplicate reports whether err is MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
