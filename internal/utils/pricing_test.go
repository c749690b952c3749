package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRentalDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int32
	}{
		{"same day is one day", date(2026, 6, 1), date(2026, 6, 1), 1},
		{"inclusive of both endpoints", date(2026, 6, 1), date(2026, 6, 3), 3},
		{"week long", date(2026, 6, 1), date(2026, 6, 7), 7},
		{"ignores wall clock time", time.Date(2026, 6, 1, 23, 59, 0, 0, time.UTC), time.Date(2026, 6, 3, 0, 1, 0, 0, time.UTC), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RentalDays(tt.start, tt.end))
		})
	}
}

func TestRangesOverlap(t *testing.T) {
	tests := []struct {
		name   string
		aStart time.Time
		aEnd   time.Time
		bStart time.Time
		bEnd   time.Time
		want   bool
	}{
		{"partial overlap", date(2026, 6, 1), date(2026, 6, 5), date(2026, 6, 4), date(2026, 6, 10), true},
		{"disjoint after", date(2026, 6, 1), date(2026, 6, 5), date(2026, 6, 6), date(2026, 6, 10), false},
		{"shared single endpoint", date(2026, 6, 1), date(2026, 6, 5), date(2026, 6, 5), date(2026, 6, 8), true},
		{"contained", date(2026, 6, 1), date(2026, 6, 10), date(2026, 6, 3), date(2026, 6, 4), true},
		{"disjoint before", date(2026, 6, 6), date(2026, 6, 10), date(2026, 6, 1), date(2026, 6, 5), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RangesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	zone := time.FixedZone("UTC+7", 7*3600)
	normalized := NormalizeDate(time.Date(2026, 6, 2, 3, 30, 0, 0, zone))
	assert.Equal(t, date(2026, 6, 1), normalized, "3:30 AM UTC+7 is still June 1 in UTC")
}

func TestItemDepositCents(t *testing.T) {
	assert.Equal(t, int64(5000), ItemDepositCents(50000, 10))
	assert.Equal(t, int64(0), ItemDepositCents(0, 10))
	assert.Equal(t, int64(1250), ItemDepositCents(25000, 5))
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "155.00", FormatCents(15500))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-25.00", FormatCents(-2500))
	assert.Equal(t, "0.00", FormatCents(0))
}
