package repository

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

type CatalogRepository interface {
	CreateItemType(ctx context.Context, it *domain.ItemType) error
	GetItemType(ctx context.Context, id int64) (*domain.ItemType, error)
	UpdateItemType(ctx context.Context, it *domain.ItemType) error

	CreateItem(ctx context.Context, item *domain.RentalItem) error
	GetItem(ctx context.Context, id int64) (*domain.RentalItem, error)
	// GetItemForUpdate loads an item with a row lock held until the
	// surrounding transaction finishes. Only valid inside WithinTx.
	GetItemForUpdate(ctx context.Context, id int64) (*domain.RentalItem, error)
	UpdateItemStatus(ctx context.Context, id int64, status domain.ItemStatus) error
	UpdateItemStatuses(ctx context.Context, ids []int64, status domain.ItemStatus) error

	CreateSet(ctx context.Context, set *domain.ItemSet) error
	GetSet(ctx context.Context, id int64) (*domain.ItemSet, error)

	AvailableCountByType(ctx context.Context, itemTypeID int64) (int, error)
	AvailableCounts(ctx context.Context, itemTypeIDs []int64) (map[int64]int, error)
	// CountFreeItems counts available units of the type with no overlapping
	// active booking in [start, end]. Read-only; takes no locks.
	CountFreeItems(ctx context.Context, itemTypeID int64, start, end time.Time) (int, error)
	// LockAvailableItems selects up to limit available units of the type
	// that have no overlapping active booking in [start, end], ordered by
	// ascending id, locking the rows. Only valid inside WithinTx.
	LockAvailableItems(ctx context.Context, itemTypeID int64, start, end time.Time, limit int) ([]domain.RentalItem, error)
}

type RentalRepository interface {
	CreateTransaction(ctx context.Context, rt *domain.RentalTransaction) error
	GetTransaction(ctx context.Context, id int64) (*domain.RentalTransaction, error)
	GetTransactionForUpdate(ctx context.Context, id int64) (*domain.RentalTransaction, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	UpdateTotalFines(ctx context.Context, id int64, totalFinesCents int64) error

	CreateSetDetail(ctx context.Context, d *domain.RentalSetDetail) error
	CreateItemDetail(ctx context.Context, d *domain.RentalItemDetail) error
	ListSetDetails(ctx context.Context, rentalID int64) ([]domain.RentalSetDetail, error)
	ListItemDetails(ctx context.Context, rentalID int64) ([]domain.RentalItemDetail, error)

	// HasOverlap reports whether the item is held by any transaction whose
	// inclusive date range intersects [start, end] and whose payment status
	// still blocks inventory (pending, partial, paid).
	HasOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error)

	ListStalePending(ctx context.Context, startedBefore time.Time) ([]domain.RentalTransaction, error)
	ListOverdue(ctx context.Context, endedBefore time.Time) ([]domain.RentalTransaction, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	AmountPaidCents(ctx context.Context, rentalID int64) (int64, error)
	ListByTransaction(ctx context.Context, rentalID int64) ([]domain.Payment, error)
}

type MaintenanceRepository interface {
	CreateDamageReport(ctx context.Context, r *domain.DamageReport) error
	ListDamageReportsByRental(ctx context.Context, rentalID int64) ([]domain.DamageReport, error)
	CreateMaintenanceRecord(ctx context.Context, mr *domain.MaintenanceRecord) error
}

// Store bundles the repositories behind one handle and owns the unit-of-work
// boundary. WithinTx runs fn against a Store whose repositories share a
// single database transaction; fn returning an error rolls everything back,
// otherwise the transaction commits. Nested WithinTx calls join the
// enclosing transaction.
type Store interface {
	Catalog() CatalogRepository
	Rentals() RentalRepository
	Payments() PaymentRepository
	Maintenance() MaintenanceRepository
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
