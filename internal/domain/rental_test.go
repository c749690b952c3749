package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRentalDays(t *testing.T) {
	rt := &RentalTransaction{StartDate: day(2026, 6, 1), EndDate: day(2026, 6, 3)}
	assert.Equal(t, int32(3), rt.RentalDays())

	sameDay := &RentalTransaction{StartDate: day(2026, 6, 1), EndDate: day(2026, 6, 1)}
	assert.Equal(t, int32(1), sameDay.RentalDays())
}

func TestTotalRentalCostCents(t *testing.T) {
	setDetailID := int64(7)
	rt := &RentalTransaction{
		StartDate: day(2026, 6, 1),
		EndDate:   day(2026, 6, 3),
		SetDetails: []RentalSetDetail{
			{Quantity: 2, RentedPricePerDayCents: 10000},
		},
		ItemDetails: []RentalItemDetail{
			{Quantity: 1, RentedPricePerDayCents: 1500},
			// Units fulfilling a set are priced through the set line.
			{Quantity: 1, RentedPricePerDayCents: 0, SetDetailID: &setDetailID},
		},
	}
	// (2×100.00 + 15.00) × 3 days
	assert.Equal(t, int64(64500), rt.TotalRentalCostCents())
}

func TestTotalRentalCostExcludesSetComponents(t *testing.T) {
	setDetailID := int64(3)
	rt := &RentalTransaction{
		StartDate: day(2026, 6, 1),
		EndDate:   day(2026, 6, 1),
		ItemDetails: []RentalItemDetail{
			{Quantity: 1, RentedPricePerDayCents: 9999, SetDetailID: &setDetailID},
		},
	}
	assert.Zero(t, rt.TotalRentalCostCents(), "component units carry no standalone price")
}

func TestBalanceDueCents(t *testing.T) {
	rt := &RentalTransaction{
		StartDate:       day(2026, 6, 1),
		EndDate:         day(2026, 6, 3),
		TotalFinesCents: 2500,
		SetDetails: []RentalSetDetail{
			{Quantity: 1, RentedPricePerDayCents: 5000},
		},
	}
	// 3 × 50.00 + 25.00 fines − 20.00 deposit held
	assert.Equal(t, int64(15500), rt.BalanceDueCents(2000))

	// Overpaid: refund owed
	assert.Equal(t, int64(-2500), rt.BalanceDueCents(20000))
}

func TestPaymentStatusBlocksInventory(t *testing.T) {
	assert.True(t, PaymentStatusPending.BlocksInventory())
	assert.True(t, PaymentStatusPartial.BlocksInventory())
	assert.True(t, PaymentStatusPaid.BlocksInventory())
	assert.False(t, PaymentStatusCancelled.BlocksInventory())
	assert.False(t, PaymentStatusCompleted.BlocksInventory())
	assert.False(t, PaymentStatusRefunded.BlocksInventory())
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.True(t, PaymentStatusCancelled.Terminal())
	assert.True(t, PaymentStatusCompleted.Terminal())
	assert.False(t, PaymentStatusPending.Terminal())
	assert.False(t, PaymentStatusPaid.Terminal())
}

func TestSelectionIDsSorted(t *testing.T) {
	sel := NewSelection()
	sel.Items[9] = 1
	sel.Items[2] = 1
	sel.Items[5] = 1
	assert.Equal(t, []int64{2, 5, 9}, sel.ItemIDs())
}

func TestSelectionCloneIsIndependent(t *testing.T) {
	sel := NewSelection()
	sel.Sets[1] = 2
	clone := sel.Clone()
	clone.Sets[1] = 9
	assert.Equal(t, int32(2), sel.Sets[1])
}
