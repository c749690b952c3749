package service

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/utils"
)

type availabilityService struct {
	store repository.Store
}

func NewAvailabilityService(store repository.Store) AvailabilityService {
	return &availabilityService{store: store}
}

// IsItemFree reports whether a concrete unit can be booked for the inclusive
// range: it must be in available status and held by no overlapping active
// transaction.
func (s *availabilityService) IsItemFree(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	start, end = utils.NormalizeDate(start), utils.NormalizeDate(end)
	if end.Before(start) {
		return false, &domain.ValidationError{Field: "end_date", Reason: "before start date"}
	}

	item, err := s.store.Catalog().GetItem(ctx, itemID)
	if err != nil {
		return false, fmt.Errorf("load item %d: %w", itemID, err)
	}
	if item.Status != domain.ItemStatusAvailable {
		return false, nil
	}

	busy, err := s.store.Rentals().HasOverlap(ctx, itemID, start, end)
	if err != nil {
		return false, fmt.Errorf("check overlaps for item %d: %w", itemID, err)
	}
	return !busy, nil
}

// AvailableCount counts the units of a type free over the whole range.
func (s *availabilityService) AvailableCount(ctx context.Context, itemTypeID int64, start, end time.Time) (int, error) {
	start, end = utils.NormalizeDate(start), utils.NormalizeDate(end)
	if end.Before(start) {
		return 0, &domain.ValidationError{Field: "end_date", Reason: "before start date"}
	}
	return s.countFreeOfType(ctx, itemTypeID, start, end)
}

// AvailableSetCount is the number of complete set instances assemblable over
// the range: the minimum over components of floor(free / required). A set
// with no components yields zero.
func (s *availabilityService) AvailableSetCount(ctx context.Context, itemSetID int64, start, end time.Time) (int, error) {
	start, end = utils.NormalizeDate(start), utils.NormalizeDate(end)
	if end.Before(start) {
		return 0, &domain.ValidationError{Field: "end_date", Reason: "before start date"}
	}

	set, err := s.store.Catalog().GetSet(ctx, itemSetID)
	if err != nil {
		return 0, fmt.Errorf("load set %d: %w", itemSetID, err)
	}
	if len(set.Components) == 0 {
		return 0, nil
	}

	min := -1
	for _, c := range set.Components {
		free, err := s.countFreeOfType(ctx, c.ItemTypeID, start, end)
		if err != nil {
			return 0, err
		}
		instances := free / int(c.Quantity)
		if min < 0 || instances < min {
			min = instances
		}
		if min == 0 {
			break
		}
	}
	return min, nil
}

// CurrentTypeStock counts a type's units in available status right now,
// ignoring date ranges. This is the storefront stock figure; date-aware
// callers use AvailableCount instead.
func (s *availabilityService) CurrentTypeStock(ctx context.Context, itemTypeID int64) (int, error) {
	count, err := s.store.Catalog().AvailableCountByType(ctx, itemTypeID)
	if err != nil {
		return 0, fmt.Errorf("count stock of type %d: %w", itemTypeID, err)
	}
	return count, nil
}

// CurrentSetStock is the number of complete set instances assemblable from
// units in available status right now, computed from one bulk count across
// all component types.
func (s *availabilityService) CurrentSetStock(ctx context.Context, itemSetID int64) (int, error) {
	set, err := s.store.Catalog().GetSet(ctx, itemSetID)
	if err != nil {
		return 0, fmt.Errorf("load set %d: %w", itemSetID, err)
	}
	if len(set.Components) == 0 {
		return 0, nil
	}

	typeIDs := make([]int64, 0, len(set.Components))
	for _, c := range set.Components {
		typeIDs = append(typeIDs, c.ItemTypeID)
	}
	counts, err := s.store.Catalog().AvailableCounts(ctx, typeIDs)
	if err != nil {
		return 0, fmt.Errorf("count stock for set %d: %w", itemSetID, err)
	}

	min := -1
	for _, c := range set.Components {
		instances := counts[c.ItemTypeID] / int(c.Quantity)
		if min < 0 || instances < min {
			min = instances
		}
	}
	return min, nil
}

// countFreeOfType counts available-status units of a type with no overlapping
// active booking, using the same overlap predicate the allocation lock uses.
func (s *availabilityService) countFreeOfType(ctx context.Context, itemTypeID int64, start, end time.Time) (int, error) {
	free, err := s.store.Catalog().CountFreeItems(ctx, itemTypeID, start, end)
	if err != nil {
		return 0, fmt.Errorf("count free units of type %d: %w", itemTypeID, err)
	}
	return free, nil
}
