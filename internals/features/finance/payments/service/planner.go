package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	discountsvc "schoolku_backend/internals/features/finance/discounts/service"
	"schoolku_backend/internals/features/finance/payments/model"
	tariffsvc "schoolku_backend/internals/features/finance/tariffs/service"
	studentsvc "schoolku_backend/internals/features/school/students/service"
	helper "schoolku_backend/internals/helpers"
)

// Payment planner: DRAFT PLAN → MONTH RANGE VALIDATED → ALLOCATION COMPUTED.
// The preview endpoint stops there; commit (see commit.go) turns the computed
// plan into transaction + coverage rows atomically.

const (
	maxFutureMonths = 3  // how far ahead a month may be paid
	maxPlanMonths   = 36 // hard cap on explicit month counts
)

// Month skip reasons in a computed plan.
const (
	SkipReasonNotChargeable   = "not_chargeable"
	SkipReasonFullyDiscounted = "fully_discounted"
	SkipReasonAlreadyCovered  = "already_covered"
)

type PlanInput struct {
	StudentID       uuid.UUID
	Kind            model.PaymentTransactionKind
	StartMonth      string // "YYYY-MM"
	MonthCount      int    // 0 → implied by kind (annual=12, otherwise 1)
	RequestedAmount *int   // nil → use computed expected amount
}

type PlannedMonth struct {
	Key             string `json:"key"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	NetAmount       int    `json:"net_amount"`
	AlreadyPaid     int    `json:"already_paid"`
	RemainingAmount int    `json:"remaining_amount"`
	AllocatedAmount int    `json:"allocated_amount"`
	Skipped         bool   `json:"skipped"`
	SkipReason      string `json:"skip_reason,omitempty"`
}

type PaymentPlan struct {
	StudentID      uuid.UUID                    `json:"student_id"`
	Kind           model.PaymentTransactionKind `json:"kind"`
	Months         []PlannedMonth               `json:"months"`
	ExpectedAmount int                          `json:"expected_amount"`
	Tariff         tariffsvc.TariffSettings     `json:"tariff"`
}

// PlanPayment loads ledger context and computes the allocation plan. It
// writes nothing.
func PlanPayment(db *gorm.DB, in PlanInput) (PaymentPlan, error) {
	var plan PaymentPlan

	settings, err := tariffsvc.ResolveCurrent(db)
	if err != nil {
		return plan, err
	}

	enrolledAt, err := studentsvc.ActiveEnrollmentStartDate(db, in.StudentID)
	if err != nil {
		return plan, err
	}

	discounts, err := discountsvc.LoadStudentDiscounts(db, in.StudentID)
	if err != nil {
		return plan, err
	}
	now := time.Now()
	discountMap := discountsvc.BuildDiscountMonthMap(discounts, settings.MonthlyAmount, now)

	covered, err := loadCoverageByMonth(db, in.StudentID)
	if err != nil {
		return plan, err
	}

	plan, err = buildPlan(in, settings, discountMap, covered, enrolledAt, now)
	if err != nil {
		return plan, err
	}
	return plan, nil
}

// buildPlan is the pure core of the planner.
func buildPlan(
	in PlanInput,
	settings tariffsvc.TariffSettings,
	discountMap map[string]int,
	covered map[string]int,
	enrolledAt time.Time,
	now time.Time,
) (PaymentPlan, error) {
	plan := PaymentPlan{
		StudentID: in.StudentID,
		Kind:      in.Kind,
		Tariff:    settings,
	}

	// 1. resolve month count
	count := in.MonthCount
	switch in.Kind {
	case model.PaymentTransactionKindAnnual:
		count = 12
	case model.PaymentTransactionKindMonthly, model.PaymentTransactionKindAdHoc:
		if count == 0 {
			count = 1
		}
	default:
		return plan, fmt.Errorf("unknown payment kind %q", in.Kind)
	}
	if count < 1 || count > maxPlanMonths {
		return plan, fmt.Errorf("month count must be within 1..%d", maxPlanMonths)
	}

	startYear, startMonth, err := helper.ParseMonthKey(in.StartMonth)
	if err != nil {
		return plan, err
	}

	// 2. range validation: collect ALL violations
	enrollIdx := helper.MonthIndex(enrolledAt.Year(), int(enrolledAt.Month()))
	maxIdx := helper.MonthIndex(now.Year(), int(now.Month())) + maxFutureMonths
	startIdx := helper.MonthIndex(startYear, startMonth)

	var outOfRange []string
	for i := 0; i < count; i++ {
		idx := startIdx + i
		if idx < enrollIdx || idx > maxIdx {
			outOfRange = append(outOfRange, helper.MonthKeyFromIndex(idx))
		}
	}
	if len(outOfRange) > 0 {
		return plan, &MonthsOutOfRangeError{Keys: outOfRange}
	}

	// 3. allocation preview
	chargeable := tariffsvc.MonthSet(settings.ChargeableMonths)
	for i := 0; i < count; i++ {
		year, month := helper.MonthFromIndex(startIdx + i)
		key := helper.FormatMonthKey(year, month)
		pm := PlannedMonth{Key: key, Year: year, Month: month}

		if !chargeable[month] {
			pm.Skipped = true
			pm.SkipReason = SkipReasonNotChargeable
			plan.Months = append(plan.Months, pm)
			continue
		}

		net := settings.MonthlyAmount
		if v, ok := discountMap[key]; ok {
			net = v
		}
		pm.NetAmount = net
		pm.AlreadyPaid = covered[key]
		pm.RemainingAmount = net - pm.AlreadyPaid
		if pm.RemainingAmount <= 0 {
			pm.RemainingAmount = 0
			pm.Skipped = true
			if net <= 0 {
				pm.SkipReason = SkipReasonFullyDiscounted
			} else {
				pm.SkipReason = SkipReasonAlreadyCovered
			}
		}
		plan.ExpectedAmount += pm.RemainingAmount
		plan.Months = append(plan.Months, pm)
	}

	if plan.ExpectedAmount <= 0 {
		return plan, ErrNothingToPay
	}
	if in.RequestedAmount != nil && *in.RequestedAmount != plan.ExpectedAmount {
		return plan, &AmountMismatchError{Expected: plan.ExpectedAmount, Requested: *in.RequestedAmount}
	}

	// 4. greedy earliest-month-first allocation
	left := plan.ExpectedAmount
	for i := range plan.Months {
		if plan.Months[i].Skipped || left <= 0 {
			continue
		}
		alloc := plan.Months[i].RemainingAmount
		if alloc > left {
			alloc = left
		}
		plan.Months[i].AllocatedAmount = alloc
		left -= alloc
	}
	return plan, nil
}

// loadCoverageByMonth sums active coverage per month for one student.
func loadCoverageByMonth(db *gorm.DB, studentID uuid.UUID) (map[string]int, error) {
	type row struct {
		MonthKey string
		Total    int
	}
	var sums []row
	err := db.Model(&model.PaymentCoverage{}).
		Select("payment_coverage_month_key AS month_key, SUM(payment_coverage_amount) AS total").
		Joins("JOIN payment_transactions ON payment_transaction_id = payment_coverage_transaction_id").
		Where("payment_coverage_student_id = ? AND payment_transaction_status = ?",
			studentID, model.PaymentTransactionStatusActive).
		Group("payment_coverage_month_key").
		Scan(&sums).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(sums))
	for _, r := range sums {
		out[r.MonthKey] = r.Total
	}
	return out, nil
}
