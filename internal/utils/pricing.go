package utils

import (
	"fmt"
	"time"
)

// NormalizeDate truncates a timestamp to midnight UTC. All rental date
// arithmetic happens on normalized dates so that wall-clock time and zone
// never leak into duration math.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RentalDays returns the inclusive duration between two dates in days,
// never less than 1. Booking a single day (start == end) is one day.
func RentalDays(start, end time.Time) int32 {
	days := int32(NormalizeDate(end).Sub(NormalizeDate(start)).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// RangesOverlap reports whether two inclusive-day ranges intersect:
// a.start <= b.end AND a.end >= b.start.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !NormalizeDate(aStart).After(NormalizeDate(bEnd)) &&
		!NormalizeDate(aEnd).Before(NormalizeDate(bStart))
}

// ItemDepositCents is the deposit charged for one individually-booked unit:
// a percentage of its type's replacement cost.
func ItemDepositCents(replacementCostCents int64, percent int) int64 {
	return replacementCostCents * int64(percent) / 100
}

// TotalCostCents multiplies a per-day amount by a duration.
func TotalCostCents(perDayCents int64, days int32) int64 {
	return perDayCents * int64(days)
}

// FormatCents renders integer cents as a decimal amount, e.g. 15500 ->
// "155.00" and -2500 -> "-25.00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
