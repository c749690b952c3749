package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/utils"
)

const serialRetries = 5

type catalogService struct {
	store repository.Store
}

func NewCatalogService(store repository.Store) CatalogService {
	return &catalogService{store: store}
}

func (s *catalogService) CreateItemType(ctx context.Context, it *domain.ItemType) error {
	if it.RentalPricePerDayCents < 0 || it.ReplacementCostCents < 0 {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if it.Category == "" {
		it.Category = domain.ItemCategoryOther
	}
	return s.store.Catalog().CreateItemType(ctx, it)
}

// UpdateItemType changes a type's description or pricing. Existing bookings
// keep their snapshots; only new bookings see the new prices.
func (s *catalogService) UpdateItemType(ctx context.Context, it *domain.ItemType) error {
	if it.RentalPricePerDayCents < 0 || it.ReplacementCostCents < 0 {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if _, err := s.store.Catalog().GetItemType(ctx, it.ID); err != nil {
		return fmt.Errorf("item type %d: %w", it.ID, err)
	}
	return s.store.Catalog().UpdateItemType(ctx, it)
}

// SetItemStatus moves a unit between available, under_maintenance and
// retired. A unit held by an active rental today cannot change status; it has
// to come back through settlement first.
func (s *catalogService) SetItemStatus(ctx context.Context, itemID int64, status domain.ItemStatus) (*domain.RentalItem, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: "unknown status"}
	}

	var item *domain.RentalItem
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		item, err = tx.Catalog().GetItemForUpdate(ctx, itemID)
		if err != nil {
			return fmt.Errorf("load item %d: %w", itemID, err)
		}
		if item.Status == status {
			return nil
		}

		today := utils.NormalizeDate(time.Now())
		held, err := tx.Rentals().HasOverlap(ctx, itemID, today, today)
		if err != nil {
			return fmt.Errorf("check allocation for item %d: %w", itemID, err)
		}
		if held {
			return &domain.ConflictError{ItemID: item.ID, SerialNumber: item.SerialNumber, Reason: "allocated to an active rental"}
		}

		if err := tx.Catalog().UpdateItemStatus(ctx, itemID, status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		item.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "item status changed", "item_id", itemID, "status", item.Status)
	return item, nil
}

// RegisterItem adds a physical unit to the inventory with a generated serial
// number. Serial collisions within a day are resolved by retrying with a
// fresh suffix.
func (s *catalogService) RegisterItem(ctx context.Context, itemTypeID int64, purchaseDate *time.Time, conditionNotes string) (*domain.RentalItem, error) {
	if _, err := s.store.Catalog().GetItemType(ctx, itemTypeID); err != nil {
		return nil, fmt.Errorf("item type %d: %w", itemTypeID, err)
	}

	var lastErr error
	for attempt := 0; attempt < serialRetries; attempt++ {
		item := &domain.RentalItem{
			ItemTypeID:     itemTypeID,
			SerialNumber:   newSerialNumber(),
			Status:         domain.ItemStatusAvailable,
			PurchaseDate:   purchaseDate,
			ConditionNotes: conditionNotes,
		}
		err := s.store.Catalog().CreateItem(ctx, item)
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, err
		}
		logger.WarnContext(ctx, "serial collision, retrying", "serial", item.SerialNumber, "attempt", attempt+1)
		lastErr = err
	}
	return nil, fmt.Errorf("generate unique serial: %w", lastErr)
}

// newSerialNumber produces RI-YYYYMMDD-NNN with a random three-digit suffix.
func newSerialNumber() string {
	return fmt.Sprintf("RI-%s-%03d", time.Now().UTC().Format("20060102"), uuid.New().ID()%1000)
}

func (s *catalogService) CreateSet(ctx context.Context, set *domain.ItemSet) error {
	if set.Name == "" {
		return &domain.ValidationError{Field: "name", Reason: "required"}
	}
	if set.BasePriceCents < 0 || set.ReplacementDepositCents < 0 {
		return &domain.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	seen := make(map[int64]bool, len(set.Components))
	for _, c := range set.Components {
		if c.Quantity < 1 {
			return &domain.ValidationError{Field: "components", Reason: "quantity must be at least 1"}
		}
		if seen[c.ItemTypeID] {
			return &domain.ValidationError{Field: "components", Reason: fmt.Sprintf("item type %d listed twice", c.ItemTypeID)}
		}
		seen[c.ItemTypeID] = true
	}
	return s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		return tx.Catalog().CreateSet(ctx, set)
	})
}

func (s *catalogService) GetSet(ctx context.Context, id int64) (*domain.ItemSet, error) {
	return s.store.Catalog().GetSet(ctx, id)
}

func (s *catalogService) GetItem(ctx context.Context, id int64) (*domain.RentalItem, error) {
	return s.store.Catalog().GetItem(ctx, id)
}
