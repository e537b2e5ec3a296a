package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/tariffs/model"
	"schoolku_backend/internals/features/finance/tariffs/service"
)

////////////////////////////////////////////////////////////////////////////////
// TARIFF VERSIONS — DTO
////////////////////////////////////////////////////////////////////////////////

type TariffVersionCreateDTO struct {
	MonthlyAmount     int        `json:"monthly_amount" validate:"required,min=1"`
	AnnualAmount      int        `json:"annual_amount,omitempty" validate:"omitempty,min=0"`
	ChargeableMonths  []int      `json:"chargeable_months,omitempty" validate:"omitempty,max=12,dive,min=1,max=12"`
	AcademicYearLabel *string    `json:"academic_year_label,omitempty" validate:"omitempty,max=20"`
	EffectiveFrom     *time.Time `json:"effective_from,omitempty"` // nil → now
	Note              *string    `json:"note,omitempty"`
}

type TariffRollbackDTO struct {
	SourceVersionID uuid.UUID `json:"source_version_id" validate:"required"`
	Note            *string   `json:"note,omitempty"`
}

type TariffVersionResponse struct {
	TariffVersionID   uuid.UUID  `json:"tariff_version_id"`
	MonthlyAmount     int        `json:"monthly_amount"`
	AnnualAmount      int        `json:"annual_amount"`
	ChargeableMonths  []int      `json:"chargeable_months"`
	AcademicYearLabel *string    `json:"academic_year_label,omitempty"`
	EffectiveFrom     time.Time  `json:"effective_from"`
	Status            string     `json:"status"`
	Note              *string    `json:"note,omitempty"`
	CreatedBy         uuid.UUID  `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
}

type TariffCurrentResponse struct {
	Current service.TariffSettings  `json:"current"`
	Planned []TariffVersionResponse `json:"planned"`
}

type TariffAuditLogResponse struct {
	TariffAuditLogID uuid.UUID `json:"tariff_audit_log_id"`
	VersionID        uuid.UUID `json:"version_id"`
	Action           string    `json:"action"`
	OldValues        any       `json:"old_values,omitempty"`
	NewValues        any       `json:"new_values,omitempty"`
	ActorUserID      uuid.UUID `json:"actor_user_id"`
	CreatedAt        time.Time `json:"created_at"`
}

////////////////////////////////////////////////////////////////////////////////
// MAPPERS
////////////////////////////////////////////////////////////////////////////////

func ToTariffVersionResponse(m model.TariffVersion) TariffVersionResponse {
	monthCount := 0
	if m.TariffVersionMonthCount != nil {
		monthCount = *m.TariffVersionMonthCount
	}
	return TariffVersionResponse{
		TariffVersionID: m.TariffVersionID,
		MonthlyAmount:   m.TariffVersionMonthlyAmount,
		AnnualAmount:    m.TariffVersionAnnualAmount,
		ChargeableMonths: service.ResolveChargeableMonths(
			m.ChargeableMonths(), monthCount,
			m.TariffVersionMonthlyAmount, m.TariffVersionAnnualAmount),
		AcademicYearLabel: m.TariffVersionAcademicYearLabel,
		EffectiveFrom:     m.TariffVersionEffectiveFrom,
		Status:            string(m.TariffVersionStatus),
		Note:              m.TariffVersionNote,
		CreatedBy:         m.TariffVersionCreatedBy,
		CreatedAt:         m.TariffVersionCreatedAt,
	}
}

func ToTariffVersionResponses(list []model.TariffVersion) []TariffVersionResponse {
	out := make([]TariffVersionResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToTariffVersionResponse(m))
	}
	return out
}

func ToTariffAuditLogResponse(m model.TariffAuditLog) TariffAuditLogResponse {
	return TariffAuditLogResponse{
		TariffAuditLogID: m.TariffAuditLogID,
		VersionID:        m.TariffAuditLogVersionID,
		Action:           string(m.TariffAuditLogAction),
		OldValues:        rawJSON(m.TariffAuditLogOldValues),
		NewValues:        rawJSON(m.TariffAuditLogNewValues),
		ActorUserID:      m.TariffAuditLogActorUserID,
		CreatedAt:        m.TariffAuditLogCreatedAt,
	}
}

func rawJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}
