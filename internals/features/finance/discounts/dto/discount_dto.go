package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/discounts/model"
	"schoolku_backend/internals/features/finance/discounts/service"
)

////////////////////////////////////////////////////////////////////////////////
// STUDENT DISCOUNTS — DTO
////////////////////////////////////////////////////////////////////////////////

type StudentDiscountCreateDTO struct {
	StudentID  uuid.UUID `json:"student_id" validate:"required"`
	Kind       string    `json:"kind" validate:"required,oneof=percent fixed_amount full_waiver"`
	Value      int       `json:"value" validate:"omitempty,min=0"`
	StartMonth string    `json:"start_month" validate:"required,len=7"`
	MonthCount int       `json:"month_count" validate:"required,min=1,max=36"`
}

type StudentDiscountDeactivateDTO struct {
	Reason *string `json:"reason,omitempty"`
}

type StudentDiscountResponse struct {
	StudentDiscountID  uuid.UUID               `json:"student_discount_id"`
	StudentID          uuid.UUID               `json:"student_id"`
	Kind               string                  `json:"kind"`
	Value              int                     `json:"value"`
	StartMonth         string                  `json:"start_month"`
	MonthCount         int                     `json:"month_count"`
	MonthlySnapshot    []service.SnapshotEntry `json:"monthly_snapshot,omitempty"`
	Active             bool                    `json:"active"`
	DeactivatedAt      *time.Time              `json:"deactivated_at,omitempty"`
	DeactivationReason *string                 `json:"deactivation_reason,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

////////////////////////////////////////////////////////////////////////////////
// MAPPERS
////////////////////////////////////////////////////////////////////////////////

func ToStudentDiscountResponse(m model.StudentDiscount) StudentDiscountResponse {
	return StudentDiscountResponse{
		StudentDiscountID:  m.StudentDiscountID,
		StudentID:          m.StudentDiscountStudentID,
		Kind:               string(m.StudentDiscountKind),
		Value:              m.StudentDiscountValue,
		StartMonth:         m.StudentDiscountStartMonth,
		MonthCount:         m.StudentDiscountMonthCount,
		MonthlySnapshot:    service.NormalizeSnapshot(m.StudentDiscountMonthlySnapshot),
		Active:             m.StudentDiscountActive,
		DeactivatedAt:      m.StudentDiscountDeactivatedAt,
		DeactivationReason: m.StudentDiscountDeactivationReason,
		CreatedAt:          m.StudentDiscountCreatedAt,
	}
}

func ToStudentDiscountResponses(list []model.StudentDiscount) []StudentDiscountResponse {
	out := make([]StudentDiscountResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToStudentDiscountResponse(m))
	}
	return out
}
