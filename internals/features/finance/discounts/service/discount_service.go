package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/discounts/model"
	helper "schoolku_backend/internals/helpers"
)

var (
	ErrDiscountNotFound     = errors.New("discount not found")
	ErrDiscountValueTooHigh = errors.New("fixed discount value must be below the monthly tariff amount")
	ErrDiscountInactive     = errors.New("discount already deactivated")
)

type CreateDiscountInput struct {
	StudentID  uuid.UUID
	Kind       model.StudentDiscountKind
	Value      int
	StartMonth string // "YYYY-MM"
	MonthCount int
}

// CreateDiscount validates the discount against the current tariff amount and
// freezes the per-month snapshot. A full waiver is its own kind: a fixed
// amount equal to or above the tariff is rejected, not silently clamped.
func CreateDiscount(db *gorm.DB, in CreateDiscountInput, monthlyAmount int) (model.StudentDiscount, error) {
	var out model.StudentDiscount

	switch in.Kind {
	case model.StudentDiscountKindPercent:
		if in.Value < 1 || in.Value > 100 {
			return out, errors.New("percent value must be within 1..100")
		}
	case model.StudentDiscountKindFixedAmount:
		if in.Value <= 0 {
			return out, errors.New("fixed amount value must be positive")
		}
		if in.Value >= monthlyAmount {
			return out, ErrDiscountValueTooHigh
		}
	case model.StudentDiscountKindFullWaiver:
		in.Value = 0
	default:
		return out, errors.New("unknown discount kind")
	}
	if in.MonthCount < 1 || in.MonthCount > 36 {
		return out, errors.New("month count must be within 1..36")
	}

	keys, err := CoveredKeys(in.StartMonth, in.MonthCount)
	if err != nil {
		return out, err
	}
	entries := make([]SnapshotEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, SnapshotEntry{
			Key:    key,
			Amount: NetMonthAmount(in.Kind, in.Value, monthlyAmount),
		})
	}

	out = model.StudentDiscount{
		StudentDiscountStudentID:       in.StudentID,
		StudentDiscountKind:            in.Kind,
		StudentDiscountValue:           in.Value,
		StudentDiscountStartMonth:      keys[0],
		StudentDiscountMonthCount:      in.MonthCount,
		StudentDiscountMonthlySnapshot: EncodeSnapshot(entries),
		StudentDiscountActive:          true,
	}
	if err := db.Create(&out).Error; err != nil {
		return out, err
	}
	return out, nil
}

// DeactivateDiscount flips a discount off, trimming the snapshot to months
// strictly before the current month so elapsed ledger rows keep their frozen
// amounts while current and future months revert to the plain tariff.
func DeactivateDiscount(db *gorm.DB, id uuid.UUID, reason *string, now time.Time) (model.StudentDiscount, error) {
	var m model.StudentDiscount
	if err := db.First(&m, "student_discount_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return m, ErrDiscountNotFound
		}
		return m, err
	}
	if !m.StudentDiscountActive {
		return m, ErrDiscountInactive
	}

	currentKey := helper.MonthKeyOf(now)
	kept := make([]SnapshotEntry, 0)
	for _, e := range NormalizeSnapshot(m.StudentDiscountMonthlySnapshot) {
		if e.Key < currentKey {
			kept = append(kept, e)
		}
	}

	m.StudentDiscountActive = false
	m.StudentDiscountDeactivatedAt = &now
	m.StudentDiscountDeactivationReason = reason
	m.StudentDiscountMonthlySnapshot = EncodeSnapshot(kept)

	if err := db.Save(&m).Error; err != nil {
		return m, err
	}
	return m, nil
}

// LoadStudentDiscounts returns a student's discounts ordered created_at ASC,
// the order BuildDiscountMonthMap relies on for its overlap tie-break.
// Includes deactivated rows: their retained snapshots still shape the past.
func LoadStudentDiscounts(db *gorm.DB, studentID uuid.UUID) ([]model.StudentDiscount, error) {
	var list []model.StudentDiscount
	err := db.
		Where("student_discount_student_id = ?", studentID).
		Order("student_discount_created_at ASC").
		Find(&list).Error
	return list, err
}
