package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// =========================================================
// ENUM — obligation status & source
// =========================================================

type MonthlyObligationStatus string

const (
	MonthlyObligationStatusSet           MonthlyObligationStatus = "set"
	MonthlyObligationStatusPartiallyPaid MonthlyObligationStatus = "partially_paid"
	MonthlyObligationStatusPaid          MonthlyObligationStatus = "paid"
)

type MonthlyObligationSource string

const (
	MonthlyObligationSourceBase     MonthlyObligationSource = "base"
	MonthlyObligationSourceDiscount MonthlyObligationSource = "discount"
)

// =========================================================
// MODEL — monthly_obligations
// One ledger row per (student, year, month): the single source of truth for
// what is owed that month. Written exclusively by the synchronizer upsert.
// =========================================================

type MonthlyObligation struct {
	MonthlyObligationID uuid.UUID `gorm:"column:monthly_obligation_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"monthly_obligation_id"`

	MonthlyObligationStudentID uuid.UUID `gorm:"column:monthly_obligation_student_id;type:uuid;not null;uniqueIndex:uq_monthly_obligation_month,priority:1" json:"monthly_obligation_student_id"`
	MonthlyObligationYear      int       `gorm:"column:monthly_obligation_year;not null;uniqueIndex:uq_monthly_obligation_month,priority:2" json:"monthly_obligation_year"`
	MonthlyObligationMonth     int       `gorm:"column:monthly_obligation_month;not null;uniqueIndex:uq_monthly_obligation_month,priority:3" json:"monthly_obligation_month"`
	MonthlyObligationMonthKey  string    `gorm:"column:monthly_obligation_month_key;type:varchar(7);not null;index:ix_monthly_obligation_month_key" json:"monthly_obligation_month_key"`

	MonthlyObligationBaseAmount      int `gorm:"column:monthly_obligation_base_amount;not null" json:"monthly_obligation_base_amount"`
	MonthlyObligationDiscountAmount  int `gorm:"column:monthly_obligation_discount_amount;not null;default:0" json:"monthly_obligation_discount_amount"`
	MonthlyObligationNetAmount       int `gorm:"column:monthly_obligation_net_amount;not null" json:"monthly_obligation_net_amount"`
	MonthlyObligationPaidAmount      int `gorm:"column:monthly_obligation_paid_amount;not null;default:0" json:"monthly_obligation_paid_amount"`
	MonthlyObligationRemainingAmount int `gorm:"column:monthly_obligation_remaining_amount;not null;default:0" json:"monthly_obligation_remaining_amount"`

	MonthlyObligationStatus MonthlyObligationStatus `gorm:"column:monthly_obligation_status;type:varchar(20);not null;default:'set';index:ix_monthly_obligation_status" json:"monthly_obligation_status"`
	MonthlyObligationSource MonthlyObligationSource `gorm:"column:monthly_obligation_source;type:varchar(20);not null;default:'base'" json:"monthly_obligation_source"`

	MonthlyObligationCreatedAt time.Time `gorm:"column:monthly_obligation_created_at;not null;default:now()" json:"monthly_obligation_created_at"`
	MonthlyObligationUpdatedAt time.Time `gorm:"column:monthly_obligation_updated_at;not null;default:now()" json:"monthly_obligation_updated_at"`
}

func (MonthlyObligation) TableName() string { return "monthly_obligations" }

func (m *MonthlyObligation) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if m.MonthlyObligationID == uuid.Nil {
		m.MonthlyObligationID = uuid.New()
	}
	if m.MonthlyObligationCreatedAt.IsZero() {
		m.MonthlyObligationCreatedAt = now
	}
	m.MonthlyObligationUpdatedAt = now
	return nil
}

func (m *MonthlyObligation) BeforeUpdate(tx *gorm.DB) (err error) {
	m.MonthlyObligationUpdatedAt = time.Now()
	return nil
}
