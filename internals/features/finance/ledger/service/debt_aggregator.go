package service

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/ledger/model"
	helper "schoolku_backend/internals/helpers"
)

// Debt aggregator: pure read-path projections over ledger rows. Future months
// never count as debt even when unpaid.

const (
	DebtStatusDebtor = "debtor"
	DebtStatusNoDebt = "no_debt"
)

type DebtMonth struct {
	Key    string `json:"key"`    // "YYYY-MM"
	Label  string `json:"label"`  // "Oktober 2025"
	Amount int    `json:"amount"` // remaining for that month
}

type StudentDebtView struct {
	StudentID       uuid.UUID   `json:"student_id"`
	StudentName     string      `json:"student_name"`
	Classroom       *string     `json:"classroom,omitempty"`
	Status          string      `json:"status"` // debtor|no_debt
	DebtMonths      []DebtMonth `json:"debt_months"`
	DebtMonthCount  int         `json:"debt_month_count"`
	TotalDebtAmount int         `json:"total_debt_amount"`
	PaidMonthCount  int         `json:"paid_month_count"`
	PlanMonthAmount int         `json:"plan_month_amount"` // current month net, 0 when not billable
	PlanYearAmount  int         `json:"plan_year_amount"`  // academic year net total

	// per-month projections kept for the cohort summary, not serialized
	monthNet       map[string]int
	monthRemaining map[string]int
}

// BuildStudentDebtView maps a student's ledger rows into the arrears detail
// view. Only rows with status != paid and month_key <= the current month
// count as debt; arrears months come back chronologically ascending.
func BuildStudentDebtView(
	studentID uuid.UUID,
	studentName string,
	classroom *string,
	obligations []model.MonthlyObligation,
	monthlyAmount int,
	chargeableMonths []int,
	discountMap map[string]int,
	now time.Time,
) StudentDebtView {
	currentKey := helper.MonthKeyOf(now)

	view := StudentDebtView{
		StudentID:      studentID,
		StudentName:    studentName,
		Classroom:      classroom,
		Status:         DebtStatusNoDebt,
		DebtMonths:     []DebtMonth{},
		monthNet:       map[string]int{},
		monthRemaining: map[string]int{},
	}

	for _, ob := range obligations {
		key := ob.MonthlyObligationMonthKey
		view.monthNet[key] = ob.MonthlyObligationNetAmount
		view.monthRemaining[key] = ob.MonthlyObligationRemainingAmount

		if ob.MonthlyObligationStatus == model.MonthlyObligationStatusPaid {
			if ob.MonthlyObligationNetAmount > 0 {
				view.PaidMonthCount++
			}
			continue
		}
		if key > currentKey {
			continue // future months are never arrears
		}
		y, m, err := helper.ParseMonthKey(key)
		if err != nil {
			continue
		}
		view.DebtMonths = append(view.DebtMonths, DebtMonth{
			Key:    key,
			Label:  helper.MonthLabel(y, m),
			Amount: ob.MonthlyObligationRemainingAmount,
		})
		view.TotalDebtAmount += ob.MonthlyObligationRemainingAmount
	}

	sort.Slice(view.DebtMonths, func(i, j int) bool {
		return view.DebtMonths[i].Key < view.DebtMonths[j].Key
	})
	view.DebtMonthCount = len(view.DebtMonths)
	if view.DebtMonthCount > 0 {
		view.Status = DebtStatusDebtor
	}

	// expected plan amounts, discount-aware and calendar-aware
	chargeable := map[int]bool{}
	for _, m := range chargeableMonths {
		chargeable[m] = true
	}
	if chargeable[int(now.Month())] {
		view.PlanMonthAmount = netFor(currentKey, monthlyAmount, discountMap)
	}
	for _, key := range academicYearKeys(now) {
		_, m, err := helper.ParseMonthKey(key)
		if err != nil || !chargeable[m] {
			continue
		}
		view.PlanYearAmount += netFor(key, monthlyAmount, discountMap)
	}

	return view
}

func netFor(key string, base int, discountMap map[string]int) int {
	if v, ok := discountMap[key]; ok {
		return v
	}
	return base
}

// academicYearKeys lists the 12 month keys of the academic year (Sep..Aug)
// containing now.
func academicYearKeys(now time.Time) []string {
	startYear := now.Year()
	if int(now.Month()) < 9 {
		startYear--
	}
	start := helper.MonthIndex(startYear, 9)
	keys := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		keys = append(keys, helper.MonthKeyFromIndex(start+i))
	}
	return keys
}

// =========================================================
// Cohort summary
// =========================================================

type CashflowView struct {
	MonthKey        string `json:"month_key"`
	PlannedAmount   int    `json:"planned_amount"`
	CollectedAmount int    `json:"collected_amount"`
	DebtAmount      int    `json:"debt_amount"`
	DiffAmount      int    `json:"diff_amount"` // collected - planned
}

type CohortSummary struct {
	TotalStudents   int `json:"total_students"`
	TotalDebtors    int `json:"total_debtors"`
	TotalDebtAmount int `json:"total_debt_amount"`

	ThisMonthDebtors    int `json:"this_month_debtors"`
	ThisMonthDebtAmount int `json:"this_month_debt_amount"`
	PrevMonthDebtors    int `json:"prev_month_debtors"`
	PrevMonthDebtAmount int `json:"prev_month_debt_amount"`

	SelectedMonthKey        string `json:"selected_month_key,omitempty"`
	SelectedMonthDebtors    int    `json:"selected_month_debtors,omitempty"`
	SelectedMonthDebtAmount int    `json:"selected_month_debt_amount,omitempty"`

	ExpectedMonthlyPlanAmount int `json:"expected_monthly_plan_amount"`
	ExpectedYearlyPlanAmount  int `json:"expected_yearly_plan_amount"`

	Cashflow CashflowView `json:"cashflow"`
}

// BuildCohortSummary folds a filtered set of detail views into totals.
// collectedAmount is the sum of ACTIVE transactions dated within targetKey's
// month, queried by the caller.
func BuildCohortSummary(views []StudentDebtView, collectedAmount int, targetKey string, now time.Time) CohortSummary {
	currentKey := helper.MonthKeyOf(now)
	y, m := now.Year(), int(now.Month())
	py, pm := helper.AddMonths(y, m, -1)
	prevKey := helper.FormatMonthKey(py, pm)
	if targetKey == "" {
		targetKey = currentKey
	}

	sum := CohortSummary{
		TotalStudents:    len(views),
		SelectedMonthKey: targetKey,
	}
	plannedTarget := 0
	debtTarget := 0

	for _, v := range views {
		if v.Status == DebtStatusDebtor {
			sum.TotalDebtors++
			sum.TotalDebtAmount += v.TotalDebtAmount
		}
		for _, dm := range v.DebtMonths {
			switch dm.Key {
			case currentKey:
				sum.ThisMonthDebtors++
				sum.ThisMonthDebtAmount += dm.Amount
			case prevKey:
				sum.PrevMonthDebtors++
				sum.PrevMonthDebtAmount += dm.Amount
			}
			if dm.Key == targetKey {
				sum.SelectedMonthDebtors++
				sum.SelectedMonthDebtAmount += dm.Amount
			}
		}
		sum.ExpectedMonthlyPlanAmount += v.PlanMonthAmount
		sum.ExpectedYearlyPlanAmount += v.PlanYearAmount

		plannedTarget += v.monthNet[targetKey]
		if targetKey <= currentKey {
			debtTarget += v.monthRemaining[targetKey]
		}
	}

	sum.Cashflow = CashflowView{
		MonthKey:        targetKey,
		PlannedAmount:   plannedTarget,
		CollectedAmount: collectedAmount,
		DebtAmount:      debtTarget,
		DiffAmount:      collectedAmount - plannedTarget,
	}
	return sum
}
