package service

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/config"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/selection"
	"equiprent-backend/internal/utils"
)

type bookingService struct {
	store      repository.Store
	selections selection.Store
	publisher  events.Publisher
	cfg        config.BookingConfig
}

func NewBookingService(store repository.Store, selections selection.Store, publisher events.Publisher, cfg config.BookingConfig) BookingService {
	return &bookingService{
		store:      store,
		selections: selections,
		publisher:  publisher,
		cfg:        cfg,
	}
}

// FinalizeBooking converts the session's cart into a pending transaction:
// deposit calculation, initial payment, concrete allocation of every line
// under row locks, all inside one unit of work. On success the cart is
// cleared and a booking.created event is emitted; neither is allowed to fail
// the booking.
func (s *bookingService) FinalizeBooking(ctx context.Context, in BookingInput) (*domain.RentalTransaction, error) {
	sel, err := s.selections.View(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("read selection: %w", err)
	}
	if sel.Empty() {
		return nil, domain.ErrEmptySelection
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}
	start := utils.NormalizeDate(in.StartDate)
	end := utils.NormalizeDate(in.EndDate)

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.FinalizeTimeout())
	defer cancel()

	var rt *domain.RentalTransaction
	err = s.store.WithinTx(txCtx, func(ctx context.Context, tx repository.Store) error {
		var err error
		rt, err = s.finalizeInTx(ctx, tx, in, sel, start, end)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "booking finalized",
		"transaction_id", rt.ID,
		"customer_id", rt.CustomerID,
		"deposit", utils.FormatCents(rt.TotalDepositCents))

	// Post-commit side effects run on the caller's context, not the expired
	// transactional one, and never unwind the committed booking.
	if err := s.selections.Clear(ctx, in.SessionID); err != nil {
		logger.WarnContext(ctx, "failed to clear selection after booking", "session_id", in.SessionID, "error", err)
	}
	_ = s.publisher.Publish(ctx, events.QueueBookingCreated, events.BookingCreated{
		TransactionID:     rt.ID,
		CustomerID:        rt.CustomerID,
		StartDate:         rt.StartDate,
		EndDate:           rt.EndDate,
		TotalDepositCents: rt.TotalDepositCents,
		CreatedAt:         time.Now(),
	})

	return rt, nil
}

func (s *bookingService) validateInput(in BookingInput) error {
	if in.CustomerID <= 0 {
		return &domain.ValidationError{Field: "customer_id", Reason: "required"}
	}
	start := utils.NormalizeDate(in.StartDate)
	end := utils.NormalizeDate(in.EndDate)
	if start.Before(utils.NormalizeDate(time.Now())) {
		return &domain.ValidationError{Field: "start_date", Reason: "must not be in the past"}
	}
	if end.Before(start) {
		return &domain.ValidationError{Field: "end_date", Reason: "before start date"}
	}
	if int(utils.RentalDays(start, end)) > s.cfg.MaxRentalDays {
		return &domain.ValidationError{Field: "end_date", Reason: fmt.Sprintf("rental exceeds %d days", s.cfg.MaxRentalDays)}
	}
	if !in.PaymentMethod.Valid() {
		return &domain.ValidationError{Field: "payment_method", Reason: "unknown method"}
	}
	if in.PaymentMethod == domain.PaymentMethodBankTransfer && in.SlipReference == "" {
		return &domain.ValidationError{Field: "slip_reference", Reason: "required for bank transfer"}
	}
	return nil
}

func (s *bookingService) finalizeInTx(ctx context.Context, tx repository.Store, in BookingInput, sel domain.Selection, start, end time.Time) (*domain.RentalTransaction, error) {
	// Load priced records for every selected line before writing anything.
	// A vanished record means the cart is stale.
	items := make(map[int64]*domain.RentalItem, len(sel.Items))
	for _, id := range sel.ItemIDs() {
		item, err := tx.Catalog().GetItemForUpdate(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("selected item %d: %w", id, err)
		}
		items[id] = item
	}
	sets := make(map[int64]*domain.ItemSet, len(sel.Sets))
	for _, id := range sel.SetIDs() {
		set, err := tx.Catalog().GetSet(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("selected set %d: %w", id, err)
		}
		sets[id] = set
	}

	// Deposit: a share of replacement cost per individual unit, the full
	// replacement deposit per set instance, floored at the house minimum.
	var deposit int64
	for _, id := range sel.ItemIDs() {
		deposit += utils.ItemDepositCents(items[id].ItemType.ReplacementCostCents, s.cfg.ItemDepositPercent)
	}
	for _, id := range sel.SetIDs() {
		deposit += sets[id].ReplacementDepositCents * int64(sel.Sets[id])
	}
	if deposit < s.cfg.MinimumDepositCents {
		deposit = s.cfg.MinimumDepositCents
	}

	rt := &domain.RentalTransaction{
		CustomerID:        in.CustomerID,
		StartDate:         start,
		EndDate:           end,
		TotalDepositCents: deposit,
		PaymentStatus:     domain.PaymentStatusPending,
	}
	if err := tx.Rentals().CreateTransaction(ctx, rt); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	if err := tx.Payments().Create(ctx, &domain.Payment{
		RentalID:      rt.ID,
		AmountCents:   deposit,
		Method:        in.PaymentMethod,
		Type:          domain.PaymentTypeDeposit,
		SlipReference: in.SlipReference,
	}); err != nil {
		return nil, fmt.Errorf("record deposit: %w", err)
	}

	// Allocate concrete item lines first, then expand each set instance into
	// its component units. Selection ids ascend, so two finalizations
	// touching the same records lock them in the same order.
	for _, id := range sel.ItemIDs() {
		item := items[id]
		if item.Status != domain.ItemStatusAvailable {
			return nil, &domain.ConflictError{ItemID: item.ID, SerialNumber: item.SerialNumber, Reason: "not in available status"}
		}
		busy, err := tx.Rentals().HasOverlap(ctx, item.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("re-check item %d: %w", item.ID, err)
		}
		if busy {
			return nil, &domain.ConflictError{ItemID: item.ID, SerialNumber: item.SerialNumber, Reason: "already booked for these dates"}
		}
		if err := tx.Rentals().CreateItemDetail(ctx, &domain.RentalItemDetail{
			RentalID:               rt.ID,
			ItemID:                 item.ID,
			Quantity:               1,
			RentedPricePerDayCents: item.ItemType.RentalPricePerDayCents,
		}); err != nil {
			return nil, fmt.Errorf("attach item %d: %w", item.ID, err)
		}
	}

	// taken tracks units already claimed by this booking so overlapping set
	// components never grab the same physical unit twice.
	taken := make(map[int64]bool, len(items))
	for id := range items {
		taken[id] = true
	}

	for _, setID := range sel.SetIDs() {
		set := sets[setID]
		quantity := sel.Sets[setID]
		if len(set.Components) == 0 {
			return nil, &domain.InsufficientInventoryError{SetName: set.Name, Required: 1, Available: 0}
		}
		// One detail row per set line; quantity carries the instance count.
		detail := &domain.RentalSetDetail{
			RentalID:               rt.ID,
			ItemSetID:              set.ID,
			Quantity:               quantity,
			RentedPricePerDayCents: set.BasePriceCents,
		}
		if err := tx.Rentals().CreateSetDetail(ctx, detail); err != nil {
			return nil, fmt.Errorf("attach set %d: %w", set.ID, err)
		}
		if err := s.allocateSetComponents(ctx, tx, rt, set, quantity, detail.ID, start, end, taken); err != nil {
			return nil, err
		}
	}

	return rt, nil
}

// allocateSetComponents claims required×quantity free units per component
// type under row locks and attaches them to the set detail. A shortfall
// aborts the whole transaction.
func (s *bookingService) allocateSetComponents(ctx context.Context, tx repository.Store, rt *domain.RentalTransaction, set *domain.ItemSet, quantity int32, setDetailID int64, start, end time.Time, taken map[int64]bool) error {
	for _, c := range set.Components {
		needed := int(c.Quantity) * int(quantity)
		// Snapshot the component type's current per-day price on each unit.
		// Cost math still charges through the set line only; the snapshot is
		// the audit record of what the unit was worth at booking time.
		perDay := int64(0)
		if c.ItemType != nil {
			perDay = c.ItemType.RentalPricePerDayCents
		}
		// Over-fetch by the number of units this booking already claimed, so
		// filtering them out cannot cause a false shortfall.
		candidates, err := tx.Catalog().LockAvailableItems(ctx, c.ItemTypeID, start, end, needed+len(taken))
		if err != nil {
			return fmt.Errorf("lock units of type %d: %w", c.ItemTypeID, err)
		}

		var claimed []domain.RentalItem
		for _, cand := range candidates {
			if taken[cand.ID] {
				continue
			}
			claimed = append(claimed, cand)
			if len(claimed) == needed {
				break
			}
		}
		if len(claimed) < needed {
			category := domain.ItemCategoryOther
			if c.ItemType != nil {
				category = c.ItemType.Category
			}
			return &domain.InsufficientInventoryError{
				SetName:   set.Name,
				Category:  category,
				Required:  needed,
				Available: len(claimed),
			}
		}

		for _, unit := range claimed {
			taken[unit.ID] = true
			detailID := setDetailID
			if err := tx.Rentals().CreateItemDetail(ctx, &domain.RentalItemDetail{
				RentalID:               rt.ID,
				ItemID:                 unit.ID,
				Quantity:               1,
				RentedPricePerDayCents: perDay,
				SetDetailID:            &detailID,
			}); err != nil {
				return fmt.Errorf("attach set component %d: %w", unit.ID, err)
			}
		}
	}
	return nil
}

// ApproveRental moves a pending transaction to paid. Deciding an already
// decided transaction logs a warning and returns it unchanged.
func (s *bookingService) ApproveRental(ctx context.Context, transactionID int64) (*domain.RentalTransaction, error) {
	return s.decide(ctx, transactionID, domain.PaymentStatusPaid, events.QueueRentalApproved, true)
}

// RejectRental moves a pending transaction to cancelled, releasing its items
// for the date range.
func (s *bookingService) RejectRental(ctx context.Context, transactionID int64) (*domain.RentalTransaction, error) {
	return s.decide(ctx, transactionID, domain.PaymentStatusCancelled, events.QueueRentalRejected, false)
}

func (s *bookingService) decide(ctx context.Context, transactionID int64, target domain.PaymentStatus, queue string, approved bool) (*domain.RentalTransaction, error) {
	var rt *domain.RentalTransaction
	var decided bool
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
		var err error
		rt, err = tx.Rentals().GetTransactionForUpdate(ctx, transactionID)
		if err != nil {
			return fmt.Errorf("load transaction %d: %w", transactionID, err)
		}
		if rt.PaymentStatus != domain.PaymentStatusPending {
			logger.WarnContext(ctx, "decision on non-pending transaction ignored",
				"transaction_id", transactionID, "payment_status", rt.PaymentStatus)
			return nil
		}
		if err := tx.Rentals().UpdatePaymentStatus(ctx, transactionID, target); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		rt.PaymentStatus = target
		decided = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if decided {
		logger.InfoContext(ctx, "rental decision recorded", "transaction_id", transactionID, "approved", approved)
		_ = s.publisher.Publish(ctx, queue, events.RentalDecision{
			TransactionID: rt.ID,
			CustomerID:    rt.CustomerID,
			Approved:      approved,
			DecidedAt:     time.Now(),
		})
	}
	return rt, nil
}
