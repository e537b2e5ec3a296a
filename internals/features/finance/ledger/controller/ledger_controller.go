package api

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	discountdto "schoolku_backend/internals/features/finance/discounts/dto"
	discountsvc "schoolku_backend/internals/features/finance/discounts/service"
	"schoolku_backend/internals/features/finance/ledger/dto"
	"schoolku_backend/internals/features/finance/ledger/model"
	"schoolku_backend/internals/features/finance/ledger/service"
	paydto "schoolku_backend/internals/features/finance/payments/dto"
	paymodel "schoolku_backend/internals/features/finance/payments/model"
	tariffsvc "schoolku_backend/internals/features/finance/tariffs/service"
	studentmodel "schoolku_backend/internals/features/school/students/model"
	helper "schoolku_backend/internals/helpers"
)

type LedgerHandler struct {
	DB *gorm.DB
}

// -----------------------------------------
// ListDebts (GET /students/debts)
// Query: classroom, search, status (debtor|no_debt), month (YYYY-MM),
//        page, per_page, sort_by (name|created_at)
//
// Debt status is computed, not stored, so the whole filtered cohort is
// synced and projected before the status filter and pagination apply: the
// summary and the total count hold regardless of the requested page.
// -----------------------------------------
func (h *LedgerHandler) ListDebts(c *fiber.Ctx) error {
	settings, err := tariffsvc.ResolveCurrent(h.DB)
	if err != nil {
		if errors.Is(err, tariffsvc.ErrTariffNotConfigured) {
			return helper.JsonErrorCode(c, fiber.StatusConflict, "TARIFF_NOT_CONFIGURED", err.Error())
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	targetKey := strings.TrimSpace(c.Query("month"))
	if targetKey != "" {
		if _, _, err := helper.ParseMonthKey(targetKey); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid month, expected YYYY-MM")
		}
	}
	statusFilter := strings.TrimSpace(c.Query("status"))
	if statusFilter != "" && statusFilter != service.DebtStatusDebtor && statusFilter != service.DebtStatusNoDebt {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid status, expected debtor or no_debt")
	}

	p := helper.ParseFiber(c, "name", "asc", helper.AdminOpts)

	q := h.DB.Model(&studentmodel.Student{})
	if v := strings.TrimSpace(c.Query("classroom")); v != "" {
		q = q.Where("student_classroom = ?", v)
	}
	if v := strings.TrimSpace(c.Query("search")); v != "" {
		q = q.Where("LOWER(student_name) LIKE ?", "%"+strings.ToLower(v)+"%")
	}

	allowed := map[string]string{
		"name":       "student_name",
		"created_at": "student_created_at",
	}
	order, err := p.SafeOrderClause(allowed, "name")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid sort")
	}

	var students []studentmodel.Student
	if err := q.
		Order(strings.TrimPrefix(order, "ORDER BY ")).
		Find(&students).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	now := time.Now()
	views, degraded, err := h.buildViews(students, settings, now)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	if statusFilter != "" {
		filtered := views[:0]
		for _, v := range views {
			if v.Status == statusFilter {
				filtered = append(filtered, v)
			}
		}
		views = filtered
	}

	ids := make([]uuid.UUID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.StudentID)
	}
	collected, err := h.collectedAmount(ids, targetKey, now)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	summary := service.BuildCohortSummary(views, collected, targetKey, now)

	// page slice over the filtered cohort
	total := int64(len(views))
	start := p.Offset()
	if start > len(views) {
		start = len(views)
	}
	end := start + p.Limit()
	if end > len(views) {
		end = len(views)
	}

	meta := helper.BuildMeta(total, p)
	return helper.JsonListEx(c, "", views[start:end], meta, fiber.Map{
		"summary":  summary,
		"tariff":   settings,
		"degraded": degraded,
	})
}

// -----------------------------------------
// StudentLedger (GET /students/:id/ledger)
// Full per-student ledger: every materialized month plus the discounts and
// transactions behind the numbers.
// -----------------------------------------
func (h *LedgerHandler) StudentLedger(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid id")
	}

	var st studentmodel.Student
	if err := h.DB.First(&st, "student_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "student not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	settings, err := tariffsvc.ResolveCurrent(h.DB)
	if err != nil {
		if errors.Is(err, tariffsvc.ErrTariffNotConfigured) {
			return helper.JsonErrorCode(c, fiber.StatusConflict, "TARIFF_NOT_CONFIGURED", err.Error())
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	now := time.Now()
	views, degraded, err := h.buildViews([]studentmodel.Student{st}, settings, now)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	view := views[0]

	var obligations []model.MonthlyObligation
	if err := h.DB.
		Where("monthly_obligation_student_id = ?", id).
		Order("monthly_obligation_month_key ASC").
		Find(&obligations).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	discounts, err := discountsvc.LoadStudentDiscounts(h.DB, id)
	if err != nil && !helper.IsUndefinedColumn(err) {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var txns []paymodel.PaymentTransaction
	if err := h.DB.
		Where("payment_transaction_student_id = ?", id).
		Order("payment_transaction_created_at DESC").
		Find(&txns).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return helper.JsonOK(c, "", fiber.Map{
		"debt_view":    view,
		"obligations":  dto.ToMonthlyObligationResponses(obligations),
		"discounts":    discountdto.ToStudentDiscountResponses(discounts),
		"transactions": paydto.ToPaymentTransactionResponses(txns),
		"tariff":       settings,
		"degraded":     degraded,
	})
}

// buildViews syncs the given students' ledger rows, then projects each into
// its arrears detail view.
func (h *LedgerHandler) buildViews(students []studentmodel.Student, settings tariffsvc.TariffSettings, now time.Time) ([]service.StudentDebtView, bool, error) {
	ids := studentIDs(students)

	res, err := service.SyncObligations(h.DB, service.SyncInput{
		StudentIDs:          ids,
		MonthlyAmount:       settings.MonthlyAmount,
		FutureMonthsHorizon: 3,
		ChargeableMonths:    settings.ChargeableMonths,
		Now:                 now,
	})
	if err != nil {
		return nil, false, err
	}

	var obligations []model.MonthlyObligation
	if len(ids) > 0 {
		if err := h.DB.
			Where("monthly_obligation_student_id IN ?", ids).
			Order("monthly_obligation_month_key ASC").
			Find(&obligations).Error; err != nil {
			return nil, false, err
		}
	}
	byStudent := map[uuid.UUID][]model.MonthlyObligation{}
	for _, ob := range obligations {
		byStudent[ob.MonthlyObligationStudentID] = append(byStudent[ob.MonthlyObligationStudentID], ob)
	}

	degraded := res.Degraded
	views := make([]service.StudentDebtView, 0, len(students))
	for _, st := range students {
		discounts, err := discountsvc.LoadStudentDiscounts(h.DB, st.StudentID)
		if err != nil {
			if !helper.IsUndefinedColumn(err) {
				return nil, false, err
			}
			degraded = true
			discounts = nil
		}
		discountMap := discountsvc.BuildDiscountMonthMap(discounts, settings.MonthlyAmount, now)

		views = append(views, service.BuildStudentDebtView(
			st.StudentID,
			st.StudentName,
			st.StudentClassroom,
			byStudent[st.StudentID],
			settings.MonthlyAmount,
			settings.ChargeableMonths,
			discountMap,
			now,
		))
	}
	return views, degraded, nil
}

// collectedAmount sums ACTIVE transactions dated within targetKey's month for
// the given students, whatever months the money was allocated to — a payment
// made this month against old arrears still counts as this month's cash in.
// Empty targetKey defaults to the current month.
func (h *LedgerHandler) collectedAmount(ids []uuid.UUID, targetKey string, now time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if targetKey == "" {
		targetKey = helper.MonthKeyOf(now)
	}
	y, m, err := helper.ParseMonthKey(targetKey)
	if err != nil {
		return 0, err
	}
	start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)

	var total int64
	err = h.DB.Model(&paymodel.PaymentTransaction{}).
		Select("COALESCE(SUM(payment_transaction_amount), 0)").
		Where("payment_transaction_student_id IN ? AND payment_transaction_status = ? AND payment_transaction_created_at >= ? AND payment_transaction_created_at < ?",
			ids, paymodel.PaymentTransactionStatusActive, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func studentIDs(students []studentmodel.Student) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(students))
	for _, st := range students {
		ids = append(ids, st.StudentID)
	}
	return ids
}
