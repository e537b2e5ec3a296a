package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveChargeableMonthsExplicit(t *testing.T) {
	// explicit list wins, sorted academically (September first)
	got := ResolveChargeableMonths([]int{1, 9, 10}, 5, 0, 0)
	assert.Equal(t, []int{9, 10, 1}, got)
}

func TestResolveChargeableMonthsExplicitDedupesAndFilters(t *testing.T) {
	got := ResolveChargeableMonths([]int{10, 10, 0, 13, 9}, 0, 0, 0)
	assert.Equal(t, []int{9, 10}, got)
}

func TestResolveChargeableMonthsExplicitAllInvalidFallsBack(t *testing.T) {
	got := ResolveChargeableMonths([]int{0, 13}, 10, 0, 0)
	assert.Len(t, got, 10)
	assert.Equal(t, 9, got[0])
	assert.Equal(t, 6, got[9]) // Sep..Jun
}

func TestResolveChargeableMonthsFromCount(t *testing.T) {
	got := ResolveChargeableMonths(nil, 12, 0, 0)
	assert.Equal(t, []int{9, 10, 11, 12, 1, 2, 3, 4, 5, 6, 7, 8}, got)

	got = ResolveChargeableMonths(nil, 1, 0, 0)
	assert.Equal(t, []int{9}, got)
}

func TestResolveChargeableMonthsDerivedFromAmounts(t *testing.T) {
	// 3_000_000 / 300_000 = 10 months
	got := ResolveChargeableMonths(nil, 0, 300000, 3000000)
	assert.Len(t, got, 10)

	// rounds: 3_500_000 / 300_000 = 11.67 → 12
	got = ResolveChargeableMonths(nil, 0, 300000, 3500000)
	assert.Len(t, got, 12)

	// derived value above 12 clamps to 12
	got = ResolveChargeableMonths(nil, 0, 100000, 9900000)
	assert.Len(t, got, 12)
}

func TestResolveChargeableMonthsUnusableAmountsDefaultTo10(t *testing.T) {
	got := ResolveChargeableMonths(nil, 0, 0, 0)
	assert.Len(t, got, 10)
}

func TestMonthSet(t *testing.T) {
	set := MonthSet([]int{9, 10})
	assert.True(t, set[9])
	assert.True(t, set[10])
	assert.False(t, set[7])
}
