package helper

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month keys are the literal wire form "YYYY-MM" (e.g. "2026-03").
// Zero-padded keys compare chronologically as plain strings.

var indoMonthNames = [12]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

func FormatMonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func MonthKeyOf(t time.Time) string {
	return FormatMonthKey(t.Year(), int(t.Month()))
}

// ParseMonthKey validates and splits a "YYYY-MM" key.
func ParseMonthKey(key string) (year, month int, err error) {
	parts := strings.SplitN(strings.TrimSpace(key), "-", 2)
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return 0, 0, fmt.Errorf("invalid month key %q (want YYYY-MM)", key)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key %q (want YYYY-MM)", key)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month key %q (month out of range)", key)
	}
	if year < 2000 || year > 2100 {
		return 0, 0, fmt.Errorf("invalid month key %q (year out of range)", key)
	}
	return year, month, nil
}

// MonthIndex maps (year, month) onto a linear scale so ranges can be iterated
// and compared with plain ints.
func MonthIndex(year, month int) int {
	return year*12 + (month - 1)
}

func MonthFromIndex(idx int) (year, month int) {
	return idx / 12, idx%12 + 1
}

func MonthKeyFromIndex(idx int) string {
	y, m := MonthFromIndex(idx)
	return FormatMonthKey(y, m)
}

// AddMonths shifts a (year, month) pair by delta calendar months.
func AddMonths(year, month, delta int) (int, int) {
	return MonthFromIndex(MonthIndex(year, month) + delta)
}

// MonthLabel renders the human label used on bills, e.g. "Oktober 2025".
func MonthLabel(year, month int) string {
	if month < 1 || month > 12 {
		return FormatMonthKey(year, month)
	}
	return fmt.Sprintf("%s %d", indoMonthNames[month-1], year)
}

func MonthLabelFromKey(key string) string {
	y, m, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	return MonthLabel(y, m)
}
