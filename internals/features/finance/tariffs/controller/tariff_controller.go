package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/tariffs/dto"
	"schoolku_backend/internals/features/finance/tariffs/model"
	"schoolku_backend/internals/features/finance/tariffs/service"
	helper "schoolku_backend/internals/helpers"
)

type TariffHandler struct {
	DB *gorm.DB
}

// -----------------------------------------
// Current settings (GET /tariffs/current)
// Resolves (and lazily activates) the current version, plus a preview of
// still-planned versions.
// -----------------------------------------
func (h *TariffHandler) GetCurrent(c *fiber.Ctx) error {
	settings, err := service.ResolveCurrent(h.DB)
	if err != nil {
		if errors.Is(err, service.ErrTariffNotConfigured) {
			return helper.JsonError(c, fiber.StatusNotFound, "tariff not configured yet")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var planned []model.TariffVersion
	if err := h.DB.
		Where("tariff_version_status = ?", model.TariffVersionStatusPlanned).
		Order("tariff_version_effective_from ASC").
		Find(&planned).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "", dto.TariffCurrentResponse{
		Current: settings,
		Planned: dto.ToTariffVersionResponses(planned),
	})
}

// -----------------------------------------
// Create version (POST /tariffs/versions)
// -----------------------------------------
func (h *TariffHandler) CreateVersion(c *fiber.Ctx) error {
	var in dto.TariffVersionCreateDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if ferrs := helper.ValidateStruct(in); ferrs != nil {
		return helper.JsonValidationError(c, ferrs)
	}

	actor, err := helper.GetAdminID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	effective := time.Now()
	if in.EffectiveFrom != nil {
		effective = *in.EffectiveFrom
	}

	v, err := service.CreatePlannedVersion(h.DB, service.CreateVersionInput{
		MonthlyAmount:     in.MonthlyAmount,
		AnnualAmount:      in.AnnualAmount,
		ChargeableMonths:  in.ChargeableMonths,
		AcademicYearLabel: in.AcademicYearLabel,
		EffectiveFrom:     effective,
		Note:              in.Note,
	}, actor)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return helper.JsonCreated(c, "tariff version planned", dto.ToTariffVersionResponse(v))
}

// -----------------------------------------
// Rollback (POST /tariffs/rollback)
// -----------------------------------------
func (h *TariffHandler) Rollback(c *fiber.Ctx) error {
	var in dto.TariffRollbackDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if in.SourceVersionID == uuid.Nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "source_version_id is required")
	}

	actor, err := helper.GetAdminID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	v, err := service.Rollback(h.DB, in.SourceVersionID, in.Note, actor)
	if err != nil {
		if errors.Is(err, service.ErrTariffVersionNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "tariff version not found")
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return helper.JsonCreated(c, "rollback planned", dto.ToTariffVersionResponse(v))
}

// -----------------------------------------
// Audit log (GET /tariffs/audit-logs)
// -----------------------------------------
func (h *TariffHandler) ListAuditLogs(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)

	q := h.DB.Model(&model.TariffAuditLog{})
	if v := c.Query("version_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			q = q.Where("tariff_audit_log_version_id = ?", id)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var list []model.TariffAuditLog
	if err := q.
		Order("tariff_audit_log_created_at DESC").
		Limit(p.Limit()).
		Offset(p.Offset()).
		Find(&list).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.TariffAuditLogResponse, 0, len(list))
	for _, m := range list {
		resp = append(resp, dto.ToTariffAuditLogResponse(m))
	}
	return helper.JsonList(c, "", resp, helper.BuildMeta(total, p))
}
