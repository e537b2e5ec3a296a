package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// =========================================================
// MODEL — tariff_audit_logs (append-only)
// =========================================================

type TariffAuditAction string

const (
	TariffAuditActionCreated    TariffAuditAction = "created"
	TariffAuditActionActivated  TariffAuditAction = "activated"
	TariffAuditActionArchived   TariffAuditAction = "archived"
	TariffAuditActionRolledBack TariffAuditAction = "rolled_back"
)

type TariffAuditLog struct {
	TariffAuditLogID uuid.UUID `gorm:"column:tariff_audit_log_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"tariff_audit_log_id"`

	TariffAuditLogVersionID uuid.UUID         `gorm:"column:tariff_audit_log_version_id;type:uuid;not null;index:ix_tariff_audit_log_version" json:"tariff_audit_log_version_id"`
	TariffAuditLogAction    TariffAuditAction `gorm:"column:tariff_audit_log_action;type:varchar(20);not null" json:"tariff_audit_log_action"`

	TariffAuditLogOldValues datatypes.JSON `gorm:"column:tariff_audit_log_old_values;type:jsonb" json:"tariff_audit_log_old_values,omitempty"`
	TariffAuditLogNewValues datatypes.JSON `gorm:"column:tariff_audit_log_new_values;type:jsonb" json:"tariff_audit_log_new_values,omitempty"`

	TariffAuditLogActorUserID uuid.UUID `gorm:"column:tariff_audit_log_actor_user_id;type:uuid" json:"tariff_audit_log_actor_user_id"`
	TariffAuditLogCreatedAt   time.Time `gorm:"column:tariff_audit_log_created_at;not null;default:now()" json:"tariff_audit_log_created_at"`
}

func (TariffAuditLog) TableName() string { return "tariff_audit_logs" }

func (m *TariffAuditLog) BeforeCreate(tx *gorm.DB) (err error) {
	if m.TariffAuditLogID == uuid.Nil {
		m.TariffAuditLogID = uuid.New()
	}
	if m.TariffAuditLogCreatedAt.IsZero() {
		m.TariffAuditLogCreatedAt = time.Now()
	}
	return nil
}
