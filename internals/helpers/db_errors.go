package helper

import "strings"

// Storage error classification. The billing read paths must survive a target
// environment whose optional columns are not migrated yet, and the payment
// commit path needs to tell unique-constraint races apart from other failures.
// Matching is on SQLSTATE text so it works for both the postgres driver and
// the sqlite driver used in tests.

// IsUndefinedColumn reports the postgres undefined_column error (SQLSTATE
// 42703), i.e. an optional column that exists in code but not yet in the
// target schema.
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 42703") ||
		strings.Contains(msg, "42703") ||
		strings.Contains(msg, "no such column")
}

// IsUniqueViolation reports a unique-constraint violation (postgres SQLSTATE
// 23505; sqlite "UNIQUE constraint failed").
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
