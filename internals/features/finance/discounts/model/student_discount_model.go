package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// =========================================================
// ENUM — discount kind
// =========================================================

type StudentDiscountKind string

const (
	StudentDiscountKindPercent     StudentDiscountKind = "percent"
	StudentDiscountKindFixedAmount StudentDiscountKind = "fixed_amount"
	StudentDiscountKindFullWaiver  StudentDiscountKind = "full_waiver"
)

// =========================================================
// MODEL — student_discounts
// The monthly snapshot freezes the computed per-month net at creation time so
// a later tariff change cannot retroactively alter already-elapsed months. On
// deactivation only entries for months strictly before the current month are
// kept.
// =========================================================

type StudentDiscount struct {
	StudentDiscountID uuid.UUID `gorm:"column:student_discount_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"student_discount_id"`

	StudentDiscountStudentID uuid.UUID `gorm:"column:student_discount_student_id;type:uuid;not null;index:ix_student_discount_student" json:"student_discount_student_id"`

	StudentDiscountKind  StudentDiscountKind `gorm:"column:student_discount_kind;type:varchar(20);not null" json:"student_discount_kind"`
	StudentDiscountValue int                 `gorm:"column:student_discount_value;not null;default:0" json:"student_discount_value"`

	StudentDiscountStartMonth string `gorm:"column:student_discount_start_month;type:varchar(7);not null" json:"student_discount_start_month"`
	StudentDiscountMonthCount int    `gorm:"column:student_discount_month_count;not null;check:student_discount_month_count>0" json:"student_discount_month_count"`

	// [{"key":"2026-01","amount":240000}, ...]
	StudentDiscountMonthlySnapshot datatypes.JSON `gorm:"column:student_discount_monthly_snapshot;type:jsonb" json:"student_discount_monthly_snapshot,omitempty"`

	StudentDiscountActive             bool       `gorm:"column:student_discount_active;not null;default:true;index:ix_student_discount_active" json:"student_discount_active"`
	StudentDiscountDeactivatedAt      *time.Time `gorm:"column:student_discount_deactivated_at" json:"student_discount_deactivated_at,omitempty"`
	StudentDiscountDeactivationReason *string    `gorm:"column:student_discount_deactivation_reason" json:"student_discount_deactivation_reason,omitempty"`

	StudentDiscountCreatedAt time.Time `gorm:"column:student_discount_created_at;not null;default:now();index:ix_student_discount_created_at" json:"student_discount_created_at"`
	StudentDiscountUpdatedAt time.Time `gorm:"column:student_discount_updated_at;not null;default:now()" json:"student_discount_updated_at"`
}

func (StudentDiscount) TableName() string { return "student_discounts" }

func (m *StudentDiscount) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if m.StudentDiscountID == uuid.Nil {
		m.StudentDiscountID = uuid.New()
	}
	if m.StudentDiscountCreatedAt.IsZero() {
		m.StudentDiscountCreatedAt = now
	}
	m.StudentDiscountUpdatedAt = now
	return nil
}

func (m *StudentDiscount) BeforeUpdate(tx *gorm.DB) (err error) {
	m.StudentDiscountUpdatedAt = time.Now()
	return nil
}
