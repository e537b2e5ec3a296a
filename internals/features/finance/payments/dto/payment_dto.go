package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/payments/model"
)

////////////////////////////////////////////////////////////////////////////////
// PAYMENTS — DTO
////////////////////////////////////////////////////////////////////////////////

// PaymentPlanDTO drives both preview and commit. Amount, when supplied, must
// equal the computed expected amount exactly.
type PaymentPlanDTO struct {
	StudentID      uuid.UUID `json:"student_id" validate:"required"`
	Kind           string    `json:"kind" validate:"required,oneof=monthly annual ad_hoc"`
	StartMonth     string    `json:"start_month" validate:"required,len=7"`
	MonthCount     int       `json:"month_count,omitempty" validate:"omitempty,min=1,max=36"`
	Amount         *int      `json:"amount,omitempty" validate:"omitempty,min=1"`
	IdempotencyKey *string   `json:"idempotency_key,omitempty" validate:"omitempty,max=80"`
	Note           *string   `json:"note,omitempty"`
}

type PaymentTransactionResponse struct {
	PaymentTransactionID uuid.UUID  `json:"payment_transaction_id"`
	StudentID            uuid.UUID  `json:"student_id"`
	Kind                 string     `json:"kind"`
	Amount               int        `json:"amount"`
	Status               string     `json:"status"`
	IdempotencyKey       *string    `json:"idempotency_key,omitempty"`
	TariffSnapshot       any        `json:"tariff_snapshot,omitempty"`
	Note                 *string    `json:"note,omitempty"`
	CreatedBy            uuid.UUID  `json:"created_by"`
	CreatedAt            time.Time  `json:"created_at"`
	ReversedAt           *time.Time `json:"reversed_at,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// MAPPERS
////////////////////////////////////////////////////////////////////////////////

func ToPaymentTransactionResponse(m model.PaymentTransaction) PaymentTransactionResponse {
	return PaymentTransactionResponse{
		PaymentTransactionID: m.PaymentTransactionID,
		StudentID:            m.PaymentTransactionStudentID,
		Kind:                 string(m.PaymentTransactionKind),
		Amount:               m.PaymentTransactionAmount,
		Status:               string(m.PaymentTransactionStatus),
		IdempotencyKey:       m.PaymentTransactionIdempotencyKey,
		TariffSnapshot:       rawJSON(m.PaymentTransactionTariffSnapshot),
		Note:                 m.PaymentTransactionNote,
		CreatedBy:            m.PaymentTransactionCreatedBy,
		CreatedAt:            m.PaymentTransactionCreatedAt,
		ReversedAt:           m.PaymentTransactionReversedAt,
	}
}

func ToPaymentTransactionResponses(list []model.PaymentTransaction) []PaymentTransactionResponse {
	out := make([]PaymentTransactionResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToPaymentTransactionResponse(m))
	}
	return out
}

func rawJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}
