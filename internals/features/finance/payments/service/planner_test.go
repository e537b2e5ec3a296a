package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/payments/model"
	tariffsvc "schoolku_backend/internals/features/finance/tariffs/service"
)

func planSettings() tariffsvc.TariffSettings {
	return tariffsvc.TariffSettings{
		VersionID:        uuid.New(),
		MonthlyAmount:    300000,
		AnnualAmount:     3000000,
		ChargeableMonths: []int{9, 10, 11, 12, 1, 2, 3, 4, 5, 6},
	}
}

var (
	planNow      = time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	planEnrolled = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
)

func TestBuildPlanSingleMonth(t *testing.T) {
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindMonthly,
		StartMonth: "2026-03",
	}
	plan, err := buildPlan(in, planSettings(), nil, nil, planEnrolled, planNow)
	require.NoError(t, err)

	require.Len(t, plan.Months, 1)
	assert.Equal(t, 300000, plan.ExpectedAmount)
	assert.Equal(t, 300000, plan.Months[0].AllocatedAmount)
	assert.False(t, plan.Months[0].Skipped)
}

func TestBuildPlanAmountMismatch(t *testing.T) {
	wrong := 250000
	in := PlanInput{
		StudentID:       uuid.New(),
		Kind:            model.PaymentTransactionKindMonthly,
		StartMonth:      "2026-03",
		RequestedAmount: &wrong,
	}
	_, err := buildPlan(in, planSettings(), nil, nil, planEnrolled, planNow)

	var mismatch *AmountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 300000, mismatch.Expected)
	assert.Equal(t, 250000, mismatch.Requested)
}

func TestBuildPlanOutOfRangeListsEveryViolation(t *testing.T) {
	// enrolled January, now March: 2025-11 and 2025-12 precede enrollment,
	// 2026-07 onwards exceed now+3
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindMonthly,
		StartMonth: "2025-11",
		MonthCount: 10,
	}
	_, err := buildPlan(in, planSettings(), nil, nil, planEnrolled, planNow)

	var oor *MonthsOutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-07", "2026-08"}, oor.Keys)
}

func TestBuildPlanSkipsNonChargeableMonths(t *testing.T) {
	// July and August are not billed under a 10-month calendar
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindMonthly,
		StartMonth: "2026-04",
		MonthCount: 3,
	}
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	plan, err := buildPlan(in, planSettings(), nil, nil, planEnrolled, now)
	require.NoError(t, err)

	require.Len(t, plan.Months, 3)
	assert.False(t, plan.Months[0].Skipped) // April
	assert.False(t, plan.Months[1].Skipped) // May
	assert.False(t, plan.Months[2].Skipped) // June
	assert.Equal(t, 900000, plan.ExpectedAmount)

	in.StartMonth = "2026-06"
	in.MonthCount = 3 // June, July, August
	now = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	plan, err = buildPlan(in, planSettings(), nil, nil, planEnrolled, now)
	require.NoError(t, err)
	assert.False(t, plan.Months[0].Skipped)
	assert.True(t, plan.Months[1].Skipped)
	assert.Equal(t, SkipReasonNotChargeable, plan.Months[1].SkipReason)
	assert.True(t, plan.Months[2].Skipped)
	assert.Equal(t, 300000, plan.ExpectedAmount)
}

func TestBuildPlanSkipsCoveredAndDiscountedMonths(t *testing.T) {
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindMonthly,
		StartMonth: "2026-01",
		MonthCount: 3,
	}
	discountMap := map[string]int{"2026-02": 0} // full waiver that month
	covered := map[string]int{"2026-01": 300000}

	plan, err := buildPlan(in, planSettings(), discountMap, covered, planEnrolled, planNow)
	require.NoError(t, err)

	require.Len(t, plan.Months, 3)
	assert.True(t, plan.Months[0].Skipped)
	assert.Equal(t, SkipReasonAlreadyCovered, plan.Months[0].SkipReason)
	assert.True(t, plan.Months[1].Skipped)
	assert.Equal(t, SkipReasonFullyDiscounted, plan.Months[1].SkipReason)
	assert.False(t, plan.Months[2].Skipped)
	assert.Equal(t, 300000, plan.ExpectedAmount)
}

func TestBuildPlanPartialCoverageReducesExpected(t *testing.T) {
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindMonthly,
		StartMonth: "2026-03",
	}
	covered := map[string]int{"2026-03": 100000}

	plan, err := buildPlan(in, planSettings(), nil, covered, planEnrolled, planNow)
	require.NoError(t, err)
	assert.Equal(t, 200000, plan.ExpectedAmount)
	assert.Equal(t, 100000, plan.Months[0].AlreadyPaid)
	assert.Equal(t, 200000, plan.Months[0].AllocatedAmount)
}

func TestBuildPlanNothingToPay(t *testing.T) {
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindMonthly,
		StartMonth: "2026-03",
	}
	covered := map[string]int{"2026-03": 300000}

	_, err := buildPlan(in, planSettings(), nil, covered, planEnrolled, planNow)
	assert.ErrorIs(t, err, ErrNothingToPay)
}

func TestBuildPlanAnnualSpansTwelveMonths(t *testing.T) {
	enrolled := time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindAnnual,
		StartMonth: "2025-09",
	}
	plan, err := buildPlan(in, planSettings(), nil, nil, enrolled, now)
	require.NoError(t, err)

	require.Len(t, plan.Months, 12)
	// 10 billable months at 300_000; July and August are skipped
	assert.Equal(t, 3000000, plan.ExpectedAmount)

	// conservation: allocations sum to the expected amount
	total := 0
	for _, pm := range plan.Months {
		total += pm.AllocatedAmount
	}
	assert.Equal(t, plan.ExpectedAmount, total)
}

func TestBuildPlanAllocatesEarliestFirst(t *testing.T) {
	in := PlanInput{
		StudentID:  uuid.New(),
		Kind:       model.PaymentTransactionKindMonthly,
		StartMonth: "2026-01",
		MonthCount: 3,
	}
	plan, err := buildPlan(in, planSettings(), nil, nil, planEnrolled, planNow)
	require.NoError(t, err)

	require.Len(t, plan.Months, 3)
	assert.Equal(t, "2026-01", plan.Months[0].Key)
	assert.Equal(t, 300000, plan.Months[0].AllocatedAmount)
	assert.Equal(t, 300000, plan.Months[1].AllocatedAmount)
	assert.Equal(t, 300000, plan.Months[2].AllocatedAmount)
}

func TestBuildPlanRejectsBadInput(t *testing.T) {
	settings := planSettings()

	_, err := buildPlan(PlanInput{Kind: "bogus", StartMonth: "2026-03"}, settings, nil, nil, planEnrolled, planNow)
	assert.Error(t, err)

	_, err = buildPlan(PlanInput{Kind: model.PaymentTransactionKindMonthly, StartMonth: "2026-03", MonthCount: 37}, settings, nil, nil, planEnrolled, planNow)
	assert.Error(t, err)

	_, err = buildPlan(PlanInput{Kind: model.PaymentTransactionKindMonthly, StartMonth: "2026-13"}, settings, nil, nil, planEnrolled, planNow)
	assert.Error(t, err)
}
