package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/tariffs/model"
)

var (
	ErrTariffNotConfigured   = errors.New("no tariff version configured")
	ErrTariffVersionNotFound = errors.New("tariff version not found")
)

// TariffSettings is the resolved "current price + calendar" view every other
// finance component consumes.
type TariffSettings struct {
	VersionID         uuid.UUID `json:"version_id"`
	MonthlyAmount     int       `json:"monthly_amount"`
	AnnualAmount      int       `json:"annual_amount"`
	ChargeableMonths  []int     `json:"chargeable_months"`
	AcademicYearLabel *string   `json:"academic_year_label,omitempty"`
	EffectiveFrom     time.Time `json:"effective_from"`
}

type CreateVersionInput struct {
	MonthlyAmount     int
	AnnualAmount      int
	ChargeableMonths  []int
	AcademicYearLabel *string
	EffectiveFrom     time.Time
	Note              *string
}

// CreatePlannedVersion always writes a NEW planned row plus an audit entry
// capturing old vs new values. Active versions are never mutated in place.
func CreatePlannedVersion(db *gorm.DB, in CreateVersionInput, actor uuid.UUID) (model.TariffVersion, error) {
	return createPlanned(db, in, actor, model.TariffAuditActionCreated, nil)
}

// createPlanned writes the planned row and its single audit entry in one
// transaction. oldV overrides the audit's old-values side when the new
// version derives from a specific past version (rollback); otherwise the
// currently active version is recorded.
func createPlanned(db *gorm.DB, in CreateVersionInput, actor uuid.UUID, action model.TariffAuditAction, oldV *model.TariffVersion) (model.TariffVersion, error) {
	var out model.TariffVersion

	if in.MonthlyAmount <= 0 {
		return out, fmt.Errorf("monthly amount must be positive")
	}
	for _, m := range in.ChargeableMonths {
		if m < 1 || m > 12 {
			return out, fmt.Errorf("chargeable month %d out of range 1..12", m)
		}
	}
	if in.EffectiveFrom.IsZero() {
		in.EffectiveFrom = time.Now()
	}
	if in.AnnualAmount <= 0 {
		in.AnnualAmount = in.MonthlyAmount * len(ResolveChargeableMonths(in.ChargeableMonths, 0, in.MonthlyAmount, 0))
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		current := oldV
		if current == nil {
			var cur model.TariffVersion
			if err := tx.Where("tariff_version_status = ?", model.TariffVersionStatusActive).
				First(&cur).Error; err == nil {
				current = &cur
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		out = model.TariffVersion{
			TariffVersionMonthlyAmount:     in.MonthlyAmount,
			TariffVersionAnnualAmount:      in.AnnualAmount,
			TariffVersionChargeableMonths:  model.EncodeMonths(in.ChargeableMonths),
			TariffVersionAcademicYearLabel: in.AcademicYearLabel,
			TariffVersionEffectiveFrom:     in.EffectiveFrom,
			TariffVersionStatus:            model.TariffVersionStatusPlanned,
			TariffVersionNote:              in.Note,
			TariffVersionCreatedBy:         actor,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		return writeAudit(tx, out.TariffVersionID, action, current, &out, actor)
	})
	return out, err
}

// ResolveCurrent is called on every settings read. Activation is pull-based:
// any planned version whose effective_from has passed is activated here, the
// previously active version and stale planned ones are archived, and an audit
// entry is written. Happens in one transaction.
func ResolveCurrent(db *gorm.DB) (TariffSettings, error) {
	var settings TariffSettings
	now := time.Now()

	err := db.Transaction(func(tx *gorm.DB) error {
		var due model.TariffVersion
		err := tx.Where("tariff_version_status = ? AND tariff_version_effective_from <= ?",
			model.TariffVersionStatusPlanned, now).
			Order("tariff_version_effective_from DESC, tariff_version_created_at DESC").
			First(&due).Error
		switch {
		case err == nil:
			if aerr := activate(tx, &due, now); aerr != nil {
				return aerr
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		var active model.TariffVersion
		if err := tx.Where("tariff_version_status = ?", model.TariffVersionStatusActive).
			First(&active).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTariffNotConfigured
			}
			return err
		}

		settings = toSettings(active)
		return nil
	})
	return settings, err
}

// activate flips the due planned version to active, archiving the previously
// active version and any other planned version that is now stale.
func activate(tx *gorm.DB, due *model.TariffVersion, now time.Time) error {
	var prev *model.TariffVersion
	var prevRow model.TariffVersion
	if err := tx.Where("tariff_version_status = ?", model.TariffVersionStatusActive).
		First(&prevRow).Error; err == nil {
		prev = &prevRow
		prevRow.TariffVersionStatus = model.TariffVersionStatusArchived
		if err := tx.Save(&prevRow).Error; err != nil {
			return err
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	// other planned versions that were superseded before ever activating
	if err := tx.Model(&model.TariffVersion{}).
		Where("tariff_version_status = ? AND tariff_version_effective_from <= ? AND tariff_version_id <> ?",
			model.TariffVersionStatusPlanned, now, due.TariffVersionID).
		Update("tariff_version_status", model.TariffVersionStatusArchived).Error; err != nil {
		return err
	}

	due.TariffVersionStatus = model.TariffVersionStatusActive
	if err := tx.Save(due).Error; err != nil {
		return err
	}
	return writeAudit(tx, due.TariffVersionID, model.TariffAuditActionActivated, prev, due, uuid.Nil)
}

// Rollback is sugar over createPlanned: a new planned version built from a
// past version's values, effective immediately. The rolled_back audit entry
// (old = the source version) commits atomically with the new row.
func Rollback(db *gorm.DB, sourceVersionID uuid.UUID, note *string, actor uuid.UUID) (model.TariffVersion, error) {
	var out model.TariffVersion

	var src model.TariffVersion
	if err := db.First(&src, "tariff_version_id = ?", sourceVersionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, ErrTariffVersionNotFound
		}
		return out, err
	}

	return createPlanned(db, CreateVersionInput{
		MonthlyAmount:     src.TariffVersionMonthlyAmount,
		AnnualAmount:      src.TariffVersionAnnualAmount,
		ChargeableMonths:  src.ChargeableMonths(),
		AcademicYearLabel: src.TariffVersionAcademicYearLabel,
		EffectiveFrom:     time.Now(),
		Note:              note,
	}, actor, model.TariffAuditActionRolledBack, &src)
}

func toSettings(v model.TariffVersion) TariffSettings {
	monthCount := 0
	if v.TariffVersionMonthCount != nil {
		monthCount = *v.TariffVersionMonthCount
	}
	return TariffSettings{
		VersionID:     v.TariffVersionID,
		MonthlyAmount: v.TariffVersionMonthlyAmount,
		AnnualAmount:  v.TariffVersionAnnualAmount,
		ChargeableMonths: ResolveChargeableMonths(
			v.ChargeableMonths(), monthCount,
			v.TariffVersionMonthlyAmount, v.TariffVersionAnnualAmount),
		AcademicYearLabel: v.TariffVersionAcademicYearLabel,
		EffectiveFrom:     v.TariffVersionEffectiveFrom,
	}
}

func writeAudit(tx *gorm.DB, versionID uuid.UUID, action model.TariffAuditAction, oldV, newV *model.TariffVersion, actor uuid.UUID) error {
	log := model.TariffAuditLog{
		TariffAuditLogVersionID:   versionID,
		TariffAuditLogAction:      action,
		TariffAuditLogOldValues:   auditValues(oldV),
		TariffAuditLogNewValues:   auditValues(newV),
		TariffAuditLogActorUserID: actor,
	}
	return tx.Create(&log).Error
}

func auditValues(v *model.TariffVersion) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(map[string]any{
		"version_id":        v.TariffVersionID,
		"monthly_amount":    v.TariffVersionMonthlyAmount,
		"annual_amount":     v.TariffVersionAnnualAmount,
		"chargeable_months": v.ChargeableMonths(),
		"effective_from":    v.TariffVersionEffectiveFrom,
		"status":            v.TariffVersionStatus,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
