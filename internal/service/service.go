package service

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

// AvailabilityService answers date-range availability questions without
// reserving anything. Answers are advisory; finalization re-checks under
// locks. The Current* variants count units in available status right now,
// ignoring date ranges.
type AvailabilityService interface {
	IsItemFree(ctx context.Context, itemID int64, start, end time.Time) (bool, error)
	AvailableCount(ctx context.Context, itemTypeID int64, start, end time.Time) (int, error)
	AvailableSetCount(ctx context.Context, itemSetID int64, start, end time.Time) (int, error)
	CurrentTypeStock(ctx context.Context, itemTypeID int64) (int, error)
	CurrentSetStock(ctx context.Context, itemSetID int64) (int, error)
}

// BookingInput carries everything FinalizeBooking needs. The selection is
// read from the session's cart, not passed in.
type BookingInput struct {
	SessionID     string
	CustomerID    int64
	StartDate     time.Time
	EndDate       time.Time
	PaymentMethod domain.PaymentMethod
	SlipReference string
}

// BookingService turns a session's selection into a persisted pending
// transaction and handles the staff approval decision.
type BookingService interface {
	FinalizeBooking(ctx context.Context, in BookingInput) (*domain.RentalTransaction, error)
	ApproveRental(ctx context.Context, transactionID int64) (*domain.RentalTransaction, error)
	RejectRental(ctx context.Context, transactionID int64) (*domain.RentalTransaction, error)
}

// SettlementInput describes a physical return being settled at the counter.
type SettlementInput struct {
	TransactionID       int64
	AdditionalFineCents int64
	FineDescription     string
	DamagedItemIDs      []int64
	PaymentMethod       domain.PaymentMethod
	SlipReference       string
	Notes               string
	StaffID             *int64
}

// SettlementResult reports the closed transaction, the balance that was due
// (negative means the customer was refunded), and the closing payment record
// if one was written.
type SettlementResult struct {
	Transaction      *domain.RentalTransaction
	OutstandingCents int64
	ClosingPayment   *domain.Payment
}

// RentalStatement is the read-only financial picture of a transaction:
// detail lines, every payment, damage reports and the balance still open.
type RentalStatement struct {
	Transaction     *domain.RentalTransaction
	Payments        []domain.Payment
	DamageReports   []domain.DamageReport
	AmountPaidCents int64
	BalanceCents    int64
}

// SettlementService closes out returned rentals: fines, final balance,
// closing payment, inventory release. It also serves the statement view
// staff consult before and after settling.
type SettlementService interface {
	SettleReturn(ctx context.Context, in SettlementInput) (*SettlementResult, error)
	RentalStatement(ctx context.Context, transactionID int64) (*RentalStatement, error)
}

// CatalogService manages the rentable inventory records themselves.
type CatalogService interface {
	CreateItemType(ctx context.Context, it *domain.ItemType) error
	UpdateItemType(ctx context.Context, it *domain.ItemType) error
	RegisterItem(ctx context.Context, itemTypeID int64, purchaseDate *time.Time, conditionNotes string) (*domain.RentalItem, error)
	SetItemStatus(ctx context.Context, itemID int64, status domain.ItemStatus) (*domain.RentalItem, error)
	CreateSet(ctx context.Context, set *domain.ItemSet) error
	GetSet(ctx context.Context, id int64) (*domain.ItemSet, error)
	GetItem(ctx context.Context, id int64) (*domain.RentalItem, error)
}
