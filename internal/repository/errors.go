// Package repository contains data access logic separated from HTTP
// handlers.  Sentinel errors defined here let the service layer tell
// expected conditions (missing rows, duplicates) from storage failures.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrEmailExists is returned when registering an email that is taken.
	ErrEmailExists = errors.New("email already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotificationTypeNotFound is returned when no active notification
	// type matches the requested key.
	ErrNotificationTypeNotFound = errors.New("notification type not found")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry
}
