package service

import (
	"encoding/json"
	"sort"
	"time"

	"gorm.io/datatypes"

	"schoolku_backend/internals/features/finance/discounts/model"
	helper "schoolku_backend/internals/helpers"
)

// SnapshotEntry is one frozen per-month net amount.
type SnapshotEntry struct {
	Key    string `json:"key"`    // "YYYY-MM"
	Amount int    `json:"amount"` // net amount for that month
}

// legacySnapshotEntry is the shape older rows carry: {"month": "...", "value": n}.
type legacySnapshotEntry struct {
	Month string `json:"month"`
	Value *int   `json:"value"`
}

// NormalizeSnapshot decodes a snapshot blob, migrating the legacy
// {month,value} shape to {key,amount} at read time. Callers never see the
// legacy shape.
func NormalizeSnapshot(raw datatypes.JSON) []SnapshotEntry {
	if len(raw) == 0 {
		return nil
	}
	var entries []SnapshotEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	var legacy []legacySnapshotEntry
	_ = json.Unmarshal(raw, &legacy)

	out := make([]SnapshotEntry, 0, len(entries))
	for i, e := range entries {
		if e.Key == "" && i < len(legacy) && legacy[i].Month != "" {
			e.Key = legacy[i].Month
			if legacy[i].Value != nil {
				e.Amount = *legacy[i].Value
			}
		}
		if e.Key == "" {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// EncodeSnapshot builds the JSONB payload for the snapshot column.
func EncodeSnapshot(entries []SnapshotEntry) datatypes.JSON {
	if len(entries) == 0 {
		return nil
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// NetMonthAmount computes the per-month net obligation under one discount.
func NetMonthAmount(kind model.StudentDiscountKind, value, base int) int {
	switch kind {
	case model.StudentDiscountKindPercent:
		net := (base*(100-value) + 50) / 100 // rounded
		if net < 0 {
			return 0
		}
		return net
	case model.StudentDiscountKindFixedAmount:
		if value >= base {
			return 0
		}
		return base - value
	case model.StudentDiscountKindFullWaiver:
		return 0
	default:
		return base
	}
}

// CoveredKeys expands a discount's [startMonth, startMonth+monthCount) range.
func CoveredKeys(startMonth string, monthCount int) ([]string, error) {
	y, m, err := helper.ParseMonthKey(startMonth)
	if err != nil {
		return nil, err
	}
	start := helper.MonthIndex(y, m)
	keys := make([]string, 0, monthCount)
	for i := 0; i < monthCount; i++ {
		keys = append(keys, helper.MonthKeyFromIndex(start+i))
	}
	return keys, nil
}

// BuildDiscountMonthMap expands a student's discounts into per-month net
// amounts. Months absent from the map fall back to the plain tariff amount
// downstream.
//
// Rules:
//   - months strictly before the current month use the frozen snapshot amount
//     (tariff changes never alter elapsed months)
//   - current and future months of an active discount are recomputed from the
//     current tariff amount
//   - deactivated discounts contribute only their retained snapshot entries
//   - when two discounts cover the same month the most recently created one
//     wins: callers pass rows ordered created_at ASC and later writes
//     overwrite earlier ones
func BuildDiscountMonthMap(discounts []model.StudentDiscount, monthlyAmount int, now time.Time) map[string]int {
	currentKey := helper.MonthKeyOf(now)
	out := make(map[string]int)

	for _, d := range discounts {
		snapshot := map[string]int{}
		for _, e := range NormalizeSnapshot(d.StudentDiscountMonthlySnapshot) {
			snapshot[e.Key] = e.Amount
		}

		if !d.StudentDiscountActive {
			// only the frozen past survives a deactivation
			for key, amount := range snapshot {
				out[key] = amount
			}
			continue
		}

		keys, err := CoveredKeys(d.StudentDiscountStartMonth, d.StudentDiscountMonthCount)
		if err != nil {
			continue
		}
		for _, key := range keys {
			if key < currentKey {
				if amount, ok := snapshot[key]; ok {
					out[key] = amount
					continue
				}
			}
			out[key] = NetMonthAmount(d.StudentDiscountKind, d.StudentDiscountValue, monthlyAmount)
		}
	}
	return out
}
