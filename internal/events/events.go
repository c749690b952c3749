// Package events publishes domain lifecycle notifications for downstream
// consumers (receipts, reminders, reporting). Publishing is best effort: a
// broker outage never rolls back the business change that triggered it.
package events

import "time"

const (
	QueueBookingCreated = "booking.created"
	QueueRentalApproved = "rental.approved"
	QueueRentalRejected = "rental.rejected"
	QueueRentalSettled  = "rental.settled"
	QueueRentalOverdue  = "rental.overdue"
)

// BookingCreated is emitted after a booking finalizes with its deposit
// recorded and items allocated.
type BookingCreated struct {
	TransactionID     int64     `json:"transaction_id"`
	CustomerID        int64     `json:"customer_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	TotalDepositCents int64     `json:"total_deposit_cents"`
	CreatedAt         time.Time `json:"created_at"`
}

// RentalDecision is emitted when a pending booking is approved or rejected.
type RentalDecision struct {
	TransactionID int64     `json:"transaction_id"`
	CustomerID    int64     `json:"customer_id"`
	Approved      bool      `json:"approved"`
	DecidedAt     time.Time `json:"decided_at"`
}

// RentalSettled is emitted when a return settles and the transaction closes.
type RentalSettled struct {
	TransactionID    int64     `json:"transaction_id"`
	CustomerID       int64     `json:"customer_id"`
	OutstandingCents int64     `json:"outstanding_cents"`
	TotalFinesCents  int64     `json:"total_fines_cents"`
	DamagedItemIDs   []int64   `json:"damaged_item_ids,omitempty"`
	SettledAt        time.Time `json:"settled_at"`
}

// RentalOverdue is emitted by the overdue sweep for each transaction past its
// end date without settlement.
type RentalOverdue struct {
	TransactionID int64     `json:"transaction_id"`
	CustomerID    int64     `json:"customer_id"`
	EndDate       time.Time `json:"end_date"`
	DaysOverdue   int32     `json:"days_overdue"`
	FlaggedAt     time.Time `json:"flagged_at"`
}
