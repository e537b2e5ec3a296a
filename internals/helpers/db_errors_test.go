package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUndefinedColumn(t *testing.T) {
	assert.True(t, IsUndefinedColumn(errors.New("no such column: student_discount_monthly_snapshot")))
	assert.True(t, IsUndefinedColumn(errors.New("ERROR: column \"x\" does not exist (SQLSTATE 42703)")))
	assert.False(t, IsUndefinedColumn(errors.New("connection refused")))
	assert.False(t, IsUndefinedColumn(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: payment_coverages.payment_coverage_student_id")))
	assert.True(t, IsUniqueViolation(errors.New("ERROR: duplicate key value violates unique constraint \"uq_payment_coverage_month\" (SQLSTATE 23505)")))
	assert.False(t, IsUniqueViolation(errors.New("deadlock detected")))
	assert.False(t, IsUniqueViolation(nil))
}
