package db

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Error is a persistence layer error classification
type Error string

func (e Error) Error() string {
	return string(e)
}

// Persistence error classes
const (
	// ErrNotFound the requested entry does not exist
	ErrNotFound = Error("entry not found")
	// ErrAlreadyExists the entry collides with an existing unique value
	ErrAlreadyExists = Error("entry already exists")
	// ErrUnavailable the DB could not be reached or is temporarily unable to serve
	ErrUnavailable = Error("persistence unavailable")
)

const (
	mysqlErrDuplicateEntry  = 1062
	sqlStateUniqueViolation = "23505"
)

// sqlStateError the subset of pgconn.PgError behavior relied on
type sqlStateError interface {
	SQLState() string
}

// classifyError map a driver or ORM error onto one of the persistence error classes
func classifyError(err error) (Error, bool) {
	var already Error
	if errors.As(err, &already) {
		return already, true
	}

	// gorm errors are common to all drivers
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyExists, true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrConstraint:
			if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
				return ErrAlreadyExists, true
			}
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen:
			return ErrUnavailable, true
		}
	}

	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
		return ErrAlreadyExists, true
	}

	var pgErr sqlStateError
	if errors.As(err, &pgErr) && pgErr.SQLState() == sqlStateUniqueViolation {
		return ErrAlreadyExists, true
	}

	if errors.Is(err, mysqldriver.ErrInvalidConn) || errors.Is(err, driver.ErrBadConn) {
		return ErrUnavailable, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUnavailable, true
	}

	return "", false
}

// translateError attach the persistence error class to a driver or ORM error, if one applies
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var already Error
	if errors.As(err, &already) {
		return err
	}
	if class, ok := classifyError(err); ok {
		return fmt.Errorf("%w [%w]", class, err)
	}
	return err
}
