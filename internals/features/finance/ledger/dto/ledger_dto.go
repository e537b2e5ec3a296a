package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/ledger/model"
	helper "schoolku_backend/internals/helpers"
)

////////////////////////////////////////////////////////////////////////////////
// MONTHLY OBLIGATIONS — DTO
////////////////////////////////////////////////////////////////////////////////

type MonthlyObligationResponse struct {
	MonthlyObligationID uuid.UUID `json:"monthly_obligation_id"`
	StudentID           uuid.UUID `json:"student_id"`
	MonthKey            string    `json:"month_key"`
	MonthLabel          string    `json:"month_label"`
	BaseAmount          int       `json:"base_amount"`
	DiscountAmount      int       `json:"discount_amount"`
	NetAmount           int       `json:"net_amount"`
	PaidAmount          int       `json:"paid_amount"`
	RemainingAmount     int       `json:"remaining_amount"`
	Status              string    `json:"status"`
	Source              string    `json:"source"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func ToMonthlyObligationResponse(m model.MonthlyObligation) MonthlyObligationResponse {
	return MonthlyObligationResponse{
		MonthlyObligationID: m.MonthlyObligationID,
		StudentID:           m.MonthlyObligationStudentID,
		MonthKey:            m.MonthlyObligationMonthKey,
		MonthLabel:          helper.MonthLabel(m.MonthlyObligationYear, m.MonthlyObligationMonth),
		BaseAmount:          m.MonthlyObligationBaseAmount,
		DiscountAmount:      m.MonthlyObligationDiscountAmount,
		NetAmount:           m.MonthlyObligationNetAmount,
		PaidAmount:          m.MonthlyObligationPaidAmount,
		RemainingAmount:     m.MonthlyObligationRemainingAmount,
		Status:              string(m.MonthlyObligationStatus),
		Source:              string(m.MonthlyObligationSource),
		UpdatedAt:           m.MonthlyObligationUpdatedAt,
	}
}

func ToMonthlyObligationResponses(list []model.MonthlyObligation) []MonthlyObligationResponse {
	out := make([]MonthlyObligationResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMonthlyObligationResponse(m))
	}
	return out
}
