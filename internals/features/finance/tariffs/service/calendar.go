package service

// Billing calendar resolver. Pure: turns a tariff version's stored calendar
// (explicit month list or legacy month count) into the concrete billed month
// set, normalized and sorted in academic order. Called on every settings read
// so rows written by older schema versions self-heal.

// Academic month sequence: September first, August last.
var academicMonthOrder = [12]int{9, 10, 11, 12, 1, 2, 3, 4, 5, 6, 7, 8}

const defaultChargeableMonthCount = 10

// ResolveChargeableMonths normalizes the billed month set.
//
//   - explicit months win: dedupe, drop out-of-range values, sort academically
//   - otherwise take the first monthCount months of the academic sequence
//   - monthCount <= 0 derives round(annual/monthly) clamped to [1,12],
//     falling back to 10
func ResolveChargeableMonths(explicit []int, monthCount, monthlyAmount, annualAmount int) []int {
	if len(explicit) > 0 {
		seen := [13]bool{}
		for _, m := range explicit {
			if m >= 1 && m <= 12 {
				seen[m] = true
			}
		}
		out := make([]int, 0, 12)
		for _, m := range academicMonthOrder {
			if seen[m] {
				out = append(out, m)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	n := monthCount
	if n <= 0 {
		n = deriveMonthCount(monthlyAmount, annualAmount)
	}
	if n < 1 {
		n = 1
	}
	if n > 12 {
		n = 12
	}
	out := make([]int, n)
	copy(out, academicMonthOrder[:n])
	return out
}

func deriveMonthCount(monthlyAmount, annualAmount int) int {
	if monthlyAmount <= 0 || annualAmount <= 0 {
		return defaultChargeableMonthCount
	}
	n := (annualAmount + monthlyAmount/2) / monthlyAmount // round
	if n < 1 {
		n = 1
	}
	if n > 12 {
		n = 12
	}
	return n
}

// MonthSet turns a resolved month list into a lookup set.
func MonthSet(months []int) map[int]bool {
	set := make(map[int]bool, len(months))
	for _, m := range months {
		set[m] = true
	}
	return set
}
