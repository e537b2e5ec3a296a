// Package testdb opens an isolated in-memory database for service tests.
// The schema mirrors the production tables including the unique indexes the
// payment path's conflict detection depends on.
package testdb

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE students (
		student_id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL,
		student_classroom TEXT,
		student_created_at DATETIME NOT NULL,
		student_updated_at DATETIME NOT NULL,
		student_deleted_at DATETIME
	)`,
	`CREATE TABLE student_enrollments (
		student_enrollment_id TEXT PRIMARY KEY,
		student_enrollment_student_id TEXT NOT NULL,
		student_enrollment_start_date DATETIME NOT NULL,
		student_enrollment_status TEXT NOT NULL DEFAULT 'active',
		student_enrollment_created_at DATETIME NOT NULL,
		student_enrollment_updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE tariff_versions (
		tariff_version_id TEXT PRIMARY KEY,
		tariff_version_monthly_amount INTEGER NOT NULL,
		tariff_version_annual_amount INTEGER NOT NULL DEFAULT 0,
		tariff_version_chargeable_months TEXT,
		tariff_version_month_count INTEGER,
		tariff_version_academic_year_label TEXT,
		tariff_version_effective_from DATETIME NOT NULL,
		tariff_version_status TEXT NOT NULL DEFAULT 'planned',
		tariff_version_note TEXT,
		tariff_version_created_by TEXT,
		tariff_version_created_at DATETIME NOT NULL,
		tariff_version_updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX uq_tariff_version_active
		ON tariff_versions (tariff_version_status)
		WHERE tariff_version_status = 'active'`,
	`CREATE TABLE tariff_audit_logs (
		tariff_audit_log_id TEXT PRIMARY KEY,
		tariff_audit_log_version_id TEXT NOT NULL,
		tariff_audit_log_action TEXT NOT NULL,
		tariff_audit_log_old_values TEXT,
		tariff_audit_log_new_values TEXT,
		tariff_audit_log_actor_user_id TEXT,
		tariff_audit_log_created_at DATETIME NOT NULL
	)`,
	`CREATE TABLE student_discounts (
		student_discount_id TEXT PRIMARY KEY,
		student_discount_student_id TEXT NOT NULL,
		student_discount_kind TEXT NOT NULL,
		student_discount_value INTEGER NOT NULL DEFAULT 0,
		student_discount_start_month TEXT NOT NULL,
		student_discount_month_count INTEGER NOT NULL,
		student_discount_monthly_snapshot TEXT,
		student_discount_active INTEGER NOT NULL DEFAULT 1,
		student_discount_deactivated_at DATETIME,
		student_discount_deactivation_reason TEXT,
		student_discount_created_at DATETIME NOT NULL,
		student_discount_updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE payment_transactions (
		payment_transaction_id TEXT PRIMARY KEY,
		payment_transaction_student_id TEXT NOT NULL,
		payment_transaction_kind TEXT NOT NULL,
		payment_transaction_amount INTEGER NOT NULL,
		payment_transaction_status TEXT NOT NULL DEFAULT 'active',
		payment_transaction_idempotency_key TEXT,
		payment_transaction_tariff_snapshot TEXT,
		payment_transaction_note TEXT,
		payment_transaction_created_by TEXT,
		payment_transaction_created_at DATETIME NOT NULL,
		payment_transaction_reversed_at DATETIME
	)`,
	`CREATE UNIQUE INDEX uq_payment_transaction_idempotency
		ON payment_transactions (payment_transaction_idempotency_key)`,
	`CREATE TABLE payment_coverages (
		payment_coverage_id TEXT PRIMARY KEY,
		payment_coverage_transaction_id TEXT NOT NULL,
		payment_coverage_student_id TEXT NOT NULL,
		payment_coverage_year INTEGER NOT NULL,
		payment_coverage_month INTEGER NOT NULL,
		payment_coverage_month_key TEXT NOT NULL,
		payment_coverage_amount INTEGER NOT NULL,
		payment_coverage_created_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX uq_payment_coverage_month
		ON payment_coverages (payment_coverage_student_id, payment_coverage_year, payment_coverage_month)`,
	`CREATE TABLE monthly_obligations (
		monthly_obligation_id TEXT PRIMARY KEY,
		monthly_obligation_student_id TEXT NOT NULL,
		monthly_obligation_year INTEGER NOT NULL,
		monthly_obligation_month INTEGER NOT NULL,
		monthly_obligation_month_key TEXT NOT NULL,
		monthly_obligation_base_amount INTEGER NOT NULL,
		monthly_obligation_discount_amount INTEGER NOT NULL DEFAULT 0,
		monthly_obligation_net_amount INTEGER NOT NULL,
		monthly_obligation_paid_amount INTEGER NOT NULL DEFAULT 0,
		monthly_obligation_remaining_amount INTEGER NOT NULL DEFAULT 0,
		monthly_obligation_status TEXT NOT NULL DEFAULT 'set',
		monthly_obligation_source TEXT NOT NULL DEFAULT 'base',
		monthly_obligation_created_at DATETIME NOT NULL,
		monthly_obligation_updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX uq_monthly_obligation_month
		ON monthly_obligations (monthly_obligation_student_id, monthly_obligation_year, monthly_obligation_month)`,
}

func Open(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// a single in-memory sqlite database exists per connection
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}
