package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// =========================================================
// ENUM — tariff version status
// =========================================================

type TariffVersionStatus string

const (
	TariffVersionStatusPlanned  TariffVersionStatus = "planned"
	TariffVersionStatusActive   TariffVersionStatus = "active"
	TariffVersionStatusArchived TariffVersionStatus = "archived"
)

// =========================================================
// MODEL — tariff_versions
// Versions are immutable: a price change is always a new planned row.
// Activation is lazy (see service.ResolveCurrent). Rows are never deleted.
// =========================================================

type TariffVersion struct {
	TariffVersionID uuid.UUID `gorm:"column:tariff_version_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"tariff_version_id"`

	// Amounts in the smallest currency unit.
	TariffVersionMonthlyAmount int `gorm:"column:tariff_version_monthly_amount;not null;check:tariff_version_monthly_amount>0" json:"tariff_version_monthly_amount"`
	TariffVersionAnnualAmount  int `gorm:"column:tariff_version_annual_amount;not null;default:0" json:"tariff_version_annual_amount"`

	// Explicit billed months (1..12) as a JSONB int array. Nullable: rows
	// written by older schema versions only carried the month count.
	TariffVersionChargeableMonths datatypes.JSON `gorm:"column:tariff_version_chargeable_months;type:jsonb" json:"tariff_version_chargeable_months,omitempty"`
	TariffVersionMonthCount       *int           `gorm:"column:tariff_version_month_count" json:"tariff_version_month_count,omitempty"` // legacy

	TariffVersionAcademicYearLabel *string `gorm:"column:tariff_version_academic_year_label;type:varchar(20)" json:"tariff_version_academic_year_label,omitempty"`

	TariffVersionEffectiveFrom time.Time           `gorm:"column:tariff_version_effective_from;not null;index:ix_tariff_version_effective_from" json:"tariff_version_effective_from"`
	TariffVersionStatus        TariffVersionStatus `gorm:"column:tariff_version_status;type:varchar(20);not null;default:'planned';index:ix_tariff_version_status" json:"tariff_version_status"`

	TariffVersionNote      *string   `gorm:"column:tariff_version_note" json:"tariff_version_note,omitempty"`
	TariffVersionCreatedBy uuid.UUID `gorm:"column:tariff_version_created_by;type:uuid" json:"tariff_version_created_by"`

	TariffVersionCreatedAt time.Time `gorm:"column:tariff_version_created_at;not null;default:now()" json:"tariff_version_created_at"`
	TariffVersionUpdatedAt time.Time `gorm:"column:tariff_version_updated_at;not null;default:now()" json:"tariff_version_updated_at"`
}

func (TariffVersion) TableName() string { return "tariff_versions" }

func (m *TariffVersion) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	if m.TariffVersionID == uuid.Nil {
		m.TariffVersionID = uuid.New()
	}
	if m.TariffVersionCreatedAt.IsZero() {
		m.TariffVersionCreatedAt = now
	}
	m.TariffVersionUpdatedAt = now
	return nil
}

func (m *TariffVersion) BeforeUpdate(tx *gorm.DB) (err error) {
	m.TariffVersionUpdatedAt = time.Now()
	return nil
}

// ChargeableMonths decodes the JSONB month array; nil when absent.
func (m *TariffVersion) ChargeableMonths() []int {
	if len(m.TariffVersionChargeableMonths) == 0 {
		return nil
	}
	var months []int
	if err := json.Unmarshal(m.TariffVersionChargeableMonths, &months); err != nil {
		return nil
	}
	return months
}

// EncodeMonths builds the JSONB payload for the month array column.
func EncodeMonths(months []int) datatypes.JSON {
	if len(months) == 0 {
		return nil
	}
	raw, err := json.Marshal(months)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
