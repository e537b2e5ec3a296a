package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/discounts/dto"
	"schoolku_backend/internals/features/finance/discounts/model"
	"schoolku_backend/internals/features/finance/discounts/service"
	tariffsvc "schoolku_backend/internals/features/finance/tariffs/service"
	helper "schoolku_backend/internals/helpers"
)

type DiscountHandler struct {
	DB *gorm.DB
}

// -----------------------------------------
// Create (POST /discounts)
// Validated against the current tariff: a fixed amount >= the monthly tariff
// is a conflict (use full_waiver for 100%).
// -----------------------------------------
func (h *DiscountHandler) Create(c *fiber.Ctx) error {
	var in dto.StudentDiscountCreateDTO
	if err := c.BodyParser(&in); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if ferrs := helper.ValidateStruct(in); ferrs != nil {
		return helper.JsonValidationError(c, ferrs)
	}

	settings, err := tariffsvc.ResolveCurrent(h.DB)
	if err != nil {
		if errors.Is(err, tariffsvc.ErrTariffNotConfigured) {
			return helper.JsonError(c, fiber.StatusNotFound, "tariff not configured yet")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	m, err := service.CreateDiscount(h.DB, service.CreateDiscountInput{
		StudentID:  in.StudentID,
		Kind:       model.StudentDiscountKind(in.Kind),
		Value:      in.Value,
		StartMonth: in.StartMonth,
		MonthCount: in.MonthCount,
	}, settings.MonthlyAmount)
	if err != nil {
		if errors.Is(err, service.ErrDiscountValueTooHigh) {
			return helper.JsonErrorCode(c, fiber.StatusConflict, "DISCOUNT_VALUE_TOO_HIGH", err.Error())
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return helper.JsonCreated(c, "discount created", dto.ToStudentDiscountResponse(m))
}

// -----------------------------------------
// Deactivate (POST /discounts/:id/deactivate)
// -----------------------------------------
func (h *DiscountHandler) Deactivate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}
	var in dto.StudentDiscountDeactivateDTO
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}

	m, err := service.DeactivateDiscount(h.DB, id, in.Reason, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDiscountNotFound):
			return helper.JsonError(c, fiber.StatusNotFound, "discount not found")
		case errors.Is(err, service.ErrDiscountInactive):
			return helper.JsonError(c, fiber.StatusConflict, err.Error())
		default:
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	return helper.JsonUpdated(c, "discount deactivated", dto.ToStudentDiscountResponse(m))
}

// -----------------------------------------
// List per student (GET /discounts/student/:id)
// -----------------------------------------
func (h *DiscountHandler) ListByStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}
	list, err := service.LoadStudentDiscounts(h.DB, studentID)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonOK(c, "", dto.ToStudentDiscountResponses(list))
}
