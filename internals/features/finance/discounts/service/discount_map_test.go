package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"schoolku_backend/internals/features/finance/discounts/model"
)

func TestNetMonthAmount(t *testing.T) {
	// 20% off 300_000 → 240_000
	assert.Equal(t, 240000, NetMonthAmount(model.StudentDiscountKindPercent, 20, 300000))
	assert.Equal(t, 0, NetMonthAmount(model.StudentDiscountKindPercent, 100, 300000))
	// rounding: 33% off 100_000 → 67_000
	assert.Equal(t, 67000, NetMonthAmount(model.StudentDiscountKindPercent, 33, 100000))

	assert.Equal(t, 250000, NetMonthAmount(model.StudentDiscountKindFixedAmount, 50000, 300000))
	assert.Equal(t, 0, NetMonthAmount(model.StudentDiscountKindFixedAmount, 300000, 300000))
	assert.Equal(t, 0, NetMonthAmount(model.StudentDiscountKindFixedAmount, 999999, 300000))

	assert.Equal(t, 0, NetMonthAmount(model.StudentDiscountKindFullWaiver, 0, 300000))
}

func TestCoveredKeys(t *testing.T) {
	keys, err := CoveredKeys("2025-11", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, keys)

	_, err = CoveredKeys("2025-13", 1)
	assert.Error(t, err)
}

func TestNormalizeSnapshotCurrentShape(t *testing.T) {
	raw := datatypes.JSON(`[{"key":"2026-02","amount":240000},{"key":"2026-01","amount":240000}]`)
	entries := NormalizeSnapshot(raw)
	require.Len(t, entries, 2)
	// sorted by key
	assert.Equal(t, "2026-01", entries[0].Key)
	assert.Equal(t, 240000, entries[0].Amount)
}

func TestNormalizeSnapshotLegacyShape(t *testing.T) {
	raw := datatypes.JSON(`[{"month":"2026-01","value":240000},{"month":"2026-02","value":0}]`)
	entries := NormalizeSnapshot(raw)
	require.Len(t, entries, 2)
	assert.Equal(t, SnapshotEntry{Key: "2026-01", Amount: 240000}, entries[0])
	assert.Equal(t, SnapshotEntry{Key: "2026-02", Amount: 0}, entries[1])
}

func TestNormalizeSnapshotEmpty(t *testing.T) {
	assert.Nil(t, NormalizeSnapshot(nil))
	assert.Nil(t, NormalizeSnapshot(datatypes.JSON(`not json`)))
}

func TestBuildDiscountMonthMapRecomputesCurrentAndFuture(t *testing.T) {
	now := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	// snapshot frozen at 240_000 per month, but the tariff has since changed
	d := model.StudentDiscount{
		StudentDiscountKind:       model.StudentDiscountKindPercent,
		StudentDiscountValue:      20,
		StudentDiscountStartMonth: "2026-02",
		StudentDiscountMonthCount: 3,
		StudentDiscountActive:     true,
		StudentDiscountMonthlySnapshot: EncodeSnapshot([]SnapshotEntry{
			{Key: "2026-02", Amount: 240000},
			{Key: "2026-03", Amount: 240000},
			{Key: "2026-04", Amount: 240000},
		}),
	}

	m := BuildDiscountMonthMap([]model.StudentDiscount{d}, 400000, now)
	assert.Equal(t, 240000, m["2026-02"]) // past month keeps the frozen amount
	assert.Equal(t, 320000, m["2026-03"]) // current month uses the new tariff
	assert.Equal(t, 320000, m["2026-04"]) // future month too
}

func TestBuildDiscountMonthMapDeactivatedKeepsOnlySnapshot(t *testing.T) {
	now := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	d := model.StudentDiscount{
		StudentDiscountKind:       model.StudentDiscountKindPercent,
		StudentDiscountValue:      20,
		StudentDiscountStartMonth: "2026-01",
		StudentDiscountMonthCount: 6,
		StudentDiscountActive:     false,
		StudentDiscountMonthlySnapshot: EncodeSnapshot([]SnapshotEntry{
			{Key: "2026-01", Amount: 240000},
			{Key: "2026-02", Amount: 240000},
		}),
	}

	m := BuildDiscountMonthMap([]model.StudentDiscount{d}, 300000, now)
	assert.Equal(t, 240000, m["2026-01"])
	assert.Equal(t, 240000, m["2026-02"])
	_, ok := m["2026-03"]
	assert.False(t, ok, "months after deactivation revert to the plain tariff")
}

func TestBuildDiscountMonthMapOverlapMostRecentWins(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	older := model.StudentDiscount{
		StudentDiscountKind:       model.StudentDiscountKindPercent,
		StudentDiscountValue:      10,
		StudentDiscountStartMonth: "2026-01",
		StudentDiscountMonthCount: 3,
		StudentDiscountActive:     true,
	}
	newer := model.StudentDiscount{
		StudentDiscountKind:       model.StudentDiscountKindFullWaiver,
		StudentDiscountStartMonth: "2026-02",
		StudentDiscountMonthCount: 1,
		StudentDiscountActive:     true,
	}

	// rows arrive ordered created_at ASC: the later row overwrites the overlap
	m := BuildDiscountMonthMap([]model.StudentDiscount{older, newer}, 300000, now)
	assert.Equal(t, 270000, m["2026-01"])
	assert.Equal(t, 0, m["2026-02"])
	assert.Equal(t, 270000, m["2026-03"])
}
