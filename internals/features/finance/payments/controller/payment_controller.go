package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	tariffsvc "schoolku_backend/internals/features/finance/tariffs/service"
	"schoolku_backend/internals/features/finance/payments/dto"
	"schoolku_backend/internals/features/finance/payments/model"
	"schoolku_backend/internals/features/finance/payments/service"
	studentsvc "schoolku_backend/internals/features/school/students/service"
	helper "schoolku_backend/internals/helpers"
)

type PaymentHandler struct {
	DB *gorm.DB
}

// -----------------------------------------
// Preview (POST /payments/preview)
// Computes the allocation plan, writes nothing.
// -----------------------------------------
func (h *PaymentHandler) Preview(c *fiber.Ctx) error {
	in, ferr := h.parsePlanDTO(c)
	if ferr != nil {
		return ferr
	}

	plan, err := service.PlanPayment(h.DB, planInputFromDTO(in))
	if err != nil {
		return h.planErrorResponse(c, err)
	}
	return helper.JsonOK(c, "payment plan computed", plan)
}

// -----------------------------------------
// Commit (POST /payments)
// Plan + atomic commit + ledger re-sync.
// -----------------------------------------
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	in, ferr := h.parsePlanDTO(c)
	if ferr != nil {
		return ferr
	}

	actor, err := helper.GetAdminID(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	}

	plan, err := service.PlanPayment(h.DB, planInputFromDTO(in))
	if err != nil {
		return h.planErrorResponse(c, err)
	}

	txn, err := service.CommitPayment(h.DB, service.CommitInput{
		Plan:           plan,
		IdempotencyKey: in.IdempotencyKey,
		Note:           in.Note,
		Actor:          actor,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateRequest):
			return helper.JsonErrorCode(c, fiber.StatusConflict, "DUPLICATE_REQUEST", err.Error())
		case errors.Is(err, service.ErrCoverageConflict):
			return helper.JsonErrorCode(c, fiber.StatusConflict, "COVERAGE_CONFLICT", err.Error())
		case errors.Is(err, service.ErrNothingToPay):
			return helper.JsonErrorCode(c, fiber.StatusConflict, "MONTH_ALREADY_COVERED", err.Error())
		default:
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	return helper.JsonCreated(c, "payment committed", fiber.Map{
		"transaction": dto.ToPaymentTransactionResponse(txn),
		"plan":        plan,
	})
}

// -----------------------------------------
// Revert (POST /payments/:id/revert)
// -----------------------------------------
func (h *PaymentHandler) Revert(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	txn, err := service.RevertTransaction(h.DB, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			return helper.JsonError(c, fiber.StatusNotFound, "payment transaction not found")
		case errors.Is(err, service.ErrTransactionReversed):
			return helper.JsonError(c, fiber.StatusConflict, err.Error())
		default:
			return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	return helper.JsonUpdated(c, "payment reverted", dto.ToPaymentTransactionResponse(txn))
}

// -----------------------------------------
// List per student (GET /payments/student/:id)
// -----------------------------------------
func (h *PaymentHandler) ListByStudent(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid student id")
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)

	q := h.DB.Model(&model.PaymentTransaction{}).
		Where("payment_transaction_student_id = ?", studentID)
	if v := c.Query("status"); v != "" {
		q = q.Where("payment_transaction_status = ?", v)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var list []model.PaymentTransaction
	if err := q.
		Order("payment_transaction_created_at DESC").
		Limit(p.Limit()).
		Offset(p.Offset()).
		Find(&list).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	return helper.JsonList(c, "", dto.ToPaymentTransactionResponses(list), helper.BuildMeta(total, p))
}

// -----------------------------------------
// shared plumbing
// -----------------------------------------

func (h *PaymentHandler) parsePlanDTO(c *fiber.Ctx) (dto.PaymentPlanDTO, error) {
	var in dto.PaymentPlanDTO
	if err := c.BodyParser(&in); err != nil {
		return in, helper.JsonError(c, fiber.StatusBadRequest, "invalid json")
	}
	if ferrs := helper.ValidateStruct(in); ferrs != nil {
		return in, helper.JsonValidationError(c, ferrs)
	}
	return in, nil
}

func planInputFromDTO(in dto.PaymentPlanDTO) service.PlanInput {
	return service.PlanInput{
		StudentID:       in.StudentID,
		Kind:            model.PaymentTransactionKind(in.Kind),
		StartMonth:      in.StartMonth,
		MonthCount:      in.MonthCount,
		RequestedAmount: in.Amount,
	}
}

func (h *PaymentHandler) planErrorResponse(c *fiber.Ctx, err error) error {
	var mismatch *service.AmountMismatchError
	var outOfRange *service.MonthsOutOfRangeError
	switch {
	case errors.As(err, &mismatch):
		return helper.JsonErrorCode(c, fiber.StatusBadRequest, "AMOUNT_MISMATCH", mismatch.Error())
	case errors.As(err, &outOfRange):
		return helper.JsonValidationError(c, map[string][]string{"months": outOfRange.Keys})
	case errors.Is(err, service.ErrNothingToPay):
		return helper.JsonErrorCode(c, fiber.StatusConflict, "MONTH_ALREADY_COVERED", err.Error())
	case errors.Is(err, tariffsvc.ErrTariffNotConfigured):
		return helper.JsonError(c, fiber.StatusNotFound, "tariff not configured yet")
	case errors.Is(err, studentsvc.ErrStudentNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "student not found")
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
}
