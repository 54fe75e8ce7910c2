// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver errors.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the root of every "no such row" error. Handlers translate
// anything wrapping it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

var (
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrComponentNotFound = fmt.Errorf("component %w", ErrNotFound)
	ErrTicketNotFound    = fmt.Errorf("support request %w", ErrNotFound)
	ErrTokenNotFound     = fmt.Errorf("refresh token %w", ErrNotFound)
)

// ErrEmailExists is returned when an insert or update collides with the
// unique email index.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a conditional update matched the row id but
// not its expected state, e.g. a status changed between read and write.
var ErrConflict = errors.New("conflict")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
