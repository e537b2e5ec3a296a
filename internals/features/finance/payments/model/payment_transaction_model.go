package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// =========================================================
// ENUM — payment transaction kind & status
// =========================================================

type PaymentTransactionKind string

const (
	PaymentTransactionKindMonthly PaymentTransactionKind = "monthly"
	PaymentTransactionKindAnnual  PaymentTransactionKind = "annual"
	PaymentTransactionKindAdHoc   PaymentTransactionKind = "ad_hoc"
)

type PaymentTransactionStatus string

const (
	PaymentTransactionStatusActive   PaymentTransactionStatus = "active"
	PaymentTransactionStatusReversed PaymentTransactionStatus = "reversed"
)

// =========================================================
// MODEL — payment_transactions
// Immutable once created, except the status flip to reversed.
// =========================================================

type PaymentTransaction struct {
	PaymentTransactionID uuid.UUID `gorm:"column:payment_transaction_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_transaction_id"`

	PaymentTransactionStudentID uuid.UUID              `gorm:"column:payment_transaction_student_id;type:uuid;not null;index:ix_payment_transaction_student" json:"payment_transaction_student_id"`
	PaymentTransactionKind      PaymentTransactionKind `gorm:"column:payment_transaction_kind;type:varchar(20);not null" json:"payment_transaction_kind"`

	PaymentTransactionAmount int `gorm:"column:payment_transaction_amount;not null;check:payment_transaction_amount>=0" json:"payment_transaction_amount"`

	PaymentTransactionStatus PaymentTransactionStatus `gorm:"column:payment_transaction_status;type:varchar(20);not null;default:'active';index:ix_payment_transaction_status" json:"payment_transaction_status"`

	// Client-supplied request dedup key; unique when present.
	PaymentTransactionIdempotencyKey *string `gorm:"column:payment_transaction_idempotency_key;type:varchar(80);uniqueIndex:uq_payment_transaction_idempotency" json:"payment_transaction_idempotency_key,omitempty"`

	// Frozen tariff context at commit time.
	PaymentTransactionTariffSnapshot datatypes.JSON `gorm:"column:payment_transaction_tariff_snapshot;type:jsonb" json:"payment_transaction_tariff_snapshot,omitempty"`

	PaymentTransactionNote      *string   `gorm:"column:payment_transaction_note" json:"payment_transaction_note,omitempty"`
	PaymentTransactionCreatedBy uuid.UUID `gorm:"column:payment_transaction_created_by;type:uuid" json:"payment_transaction_created_by"`

	PaymentTransactionCreatedAt  time.Time  `gorm:"column:payment_transaction_created_at;not null;default:now();index:ix_payment_transaction_created_at" json:"payment_transaction_created_at"`
	PaymentTransactionReversedAt *time.Time `gorm:"column:payment_transaction_reversed_at" json:"payment_transaction_reversed_at,omitempty"`
}

func (PaymentTransaction) TableName() string { return "payment_transactions" }

func (m *PaymentTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if m.PaymentTransactionID == uuid.Nil {
		m.PaymentTransactionID = uuid.New()
	}
	if m.PaymentTransactionCreatedAt.IsZero() {
		m.PaymentTransactionCreatedAt = time.Now()
	}
	return nil
}

// =========================================================
// MODEL — payment_coverages
// One row links a transaction to the specific month it pays off. The unique
// (student, year, month) index is the invariant preventing a month from being
// paid twice: reverted transactions hard-delete their coverage rows, so only
// active coverage occupies the slot.
// =========================================================

type PaymentCoverage struct {
	PaymentCoverageID uuid.UUID `gorm:"column:payment_coverage_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_coverage_id"`

	PaymentCoverageTransactionID uuid.UUID `gorm:"column:payment_coverage_transaction_id;type:uuid;not null;index:ix_payment_coverage_transaction" json:"payment_coverage_transaction_id"`

	PaymentCoverageStudentID uuid.UUID `gorm:"column:payment_coverage_student_id;type:uuid;not null;uniqueIndex:uq_payment_coverage_month,priority:1" json:"payment_coverage_student_id"`
	PaymentCoverageYear      int       `gorm:"column:payment_coverage_year;not null;uniqueIndex:uq_payment_coverage_month,priority:2" json:"payment_coverage_year"`
	PaymentCoverageMonth     int       `gorm:"column:payment_coverage_month;not null;uniqueIndex:uq_payment_coverage_month,priority:3" json:"payment_coverage_month"`
	PaymentCoverageMonthKey  string    `gorm:"column:payment_coverage_month_key;type:varchar(7);not null;index:ix_payment_coverage_month_key" json:"payment_coverage_month_key"`

	PaymentCoverageAmount int `gorm:"column:payment_coverage_amount;not null;check:payment_coverage_amount>0" json:"payment_coverage_amount"`

	PaymentCoverageCreatedAt time.Time `gorm:"column:payment_coverage_created_at;not null;default:now()" json:"payment_coverage_created_at"`
}

func (PaymentCoverage) TableName() string { return "payment_coverages" }

func (m *PaymentCoverage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.PaymentCoverageID == uuid.Nil {
		m.PaymentCoverageID = uuid.New()
	}
	if m.PaymentCoverageCreatedAt.IsZero() {
		m.PaymentCoverageCreatedAt = time.Now()
	}
	return nil
}
