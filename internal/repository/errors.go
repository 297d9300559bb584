package repository

// errors.go — classification of Postgres failures the workflows react to.
// The driver surfaces SQLSTATE codes in the error text; matching on the code
// keeps this independent of the exact driver error type.

import (
	"errors"
	"strings"
)

// ErrStockProcedureMissing is returned by RecordStockTransaction when neither
// call shape of record_inventory_transaction exists in the database. Callers
// fall back to a direct stock update (degraded path, no transaction log).
var ErrStockProcedureMissing = errors.New("record_inventory_transaction procedure not found")

// IsUniqueViolation reports a unique constraint failure (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	return hasSQLState(err, "23505") || containsAny(err, "duplicate key value")
}

// IsUndefinedTable reports a missing relation (SQLSTATE 42P01) — schema
// drift, e.g. the audit table's migration not yet applied.
func IsUndefinedTable(err error) bool {
	return hasSQLState(err, "42P01")
}

// IsUndefinedColumn reports a missing column (SQLSTATE 42703) — the legacy
// line-item schema without item id columns.
func IsUndefinedColumn(err error) bool {
	return hasSQLState(err, "42703")
}

// IsUndefinedFunction reports a missing function or signature mismatch
// (SQLSTATE 42883).
func IsUndefinedFunction(err error) bool {
	return hasSQLState(err, "42883")
}

func hasSQLState(err error, code string) bool {
	return err != nil && strings.Contains(err.Error(), "SQLSTATE "+code)
}

func containsAny(err error, fragments ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, f := range fragments {
		if strings.Contains(msg, f) {
			return true
		}
	}
	return false
}
