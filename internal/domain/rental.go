package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCompleted PaymentStatus = "completed"
)

// BlocksInventory reports whether a transaction in this status holds its
// allocated items against overlapping date ranges.
func (s PaymentStatus) BlocksInventory() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusCancelled || s == PaymentStatusCompleted
}

// RentalTransaction is the reservation root. It owns its set and item detail
// rows and is referenced by payments. Dates are inclusive calendar days.
type RentalTransaction struct {
	ID                int64              `json:"id"`
	CustomerID        int64              `json:"customer_id"`
	StartDate         time.Time          `json:"start_date"`
	EndDate           time.Time          `json:"end_date"`
	TotalDepositCents int64              `json:"total_deposit_cents"`
	TotalFinesCents   int64              `json:"total_fines_cents"`
	PaymentStatus     PaymentStatus      `json:"payment_status"`
	SetDetails        []RentalSetDetail  `json:"set_details,omitempty"`
	ItemDetails       []RentalItemDetail `json:"item_details,omitempty"`
	CreatedOn         time.Time          `json:"created_on"`
	UpdatedOn         time.Time          `json:"updated_on"`
}

// RentalDays returns the inclusive duration in days, never less than 1.
func (t *RentalTransaction) RentalDays() int32 {
	days := int32(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// TotalRentalCostCents computes duration × per-day cost from the loaded
// detail rows. Item details that fulfill a set are excluded; the set detail
// already carries the bundle price.
func (t *RentalTransaction) TotalRentalCostCents() int64 {
	var perDay int64
	for i := range t.ItemDetails {
		if t.ItemDetails[i].SetDetailID != nil {
			continue
		}
		perDay += t.ItemDetails[i].RentedPricePerDayCents * int64(t.ItemDetails[i].Quantity)
	}
	for i := range t.SetDetails {
		perDay += t.SetDetails[i].RentedPricePerDayCents * int64(t.SetDetails[i].Quantity)
	}
	return perDay * int64(t.RentalDays())
}

// BalanceDueCents is the outstanding amount given the total paid so far.
// Negative means a refund is owed to the customer.
func (t *RentalTransaction) BalanceDueCents(amountPaidCents int64) int64 {
	return t.TotalRentalCostCents() + t.TotalFinesCents - amountPaidCents
}

// RentalSetDetail records one set line of a transaction with the per-day
// price frozen at booking time. Unique per (rental, set).
type RentalSetDetail struct {
	ID                     int64     `json:"id"`
	RentalID               int64     `json:"rental_id"`
	ItemSetID              int64     `json:"item_set_id"`
	ItemSet                *ItemSet  `json:"item_set,omitempty"`
	Quantity               int32     `json:"quantity"`
	RentedPricePerDayCents int64     `json:"rented_price_per_day_cents"`
	CreatedOn              time.Time `json:"created_on"`
}

// RentalItemDetail binds one concrete unit to a transaction. SetDetailID is
// nil for individually-booked units. Unique per (rental, item): a concrete
// unit never appears twice in the same transaction.
type RentalItemDetail struct {
	ID                     int64       `json:"id"`
	RentalID               int64       `json:"rental_id"`
	ItemID                 int64       `json:"item_id"`
	Item                   *RentalItem `json:"item,omitempty"`
	Quantity               int32       `json:"quantity"`
	RentedPricePerDayCents int64       `json:"rented_price_per_day_cents"`
	SetDetailID            *int64      `json:"set_detail_id,omitempty"`
	CreatedOn              time.Time   `json:"created_on"`
}
