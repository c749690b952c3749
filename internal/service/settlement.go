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
	"equiprent-backend/internal/utils"
)

type settlementService struct {
	store     repository.Store
	publisher events.Publisher
	cfg       config.BookingConfig
}

func NewSettlementService(store repository.Store, publisher events.Publisher, cfg config.BookingConfig) SettlementService {
	return &settlementService{store: store, publisher: publisher, cfg: cfg}
}

// SettleReturn closes out a returned rental in one unit of work: apply any
// new fine, compute the final balance against everything paid so far, record
// the closing payment or refund, mark the transaction completed and release
// its items. Settling an already completed transaction returns the current
// figures without writing anything.
func (s *settlementService) SettleReturn(ctx context.Context, in SettlementInput) (*SettlementResult, error) {
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.FinalizeTimeout())
	defer cancel()

	var result *SettlementResult
	var settled bool
	err := s.store.WithinTx(txCtx, func(ctx context.Context, tx repository.Store) error {
		var err error
		result, settled, err = s.settleInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	if settled {
		logger.InfoContext(ctx, "rental settled",
			"transaction_id", in.TransactionID,
			"outstanding", utils.FormatCents(result.OutstandingCents),
			"fines", utils.FormatCents(result.Transaction.TotalFinesCents))
		_ = s.publisher.Publish(ctx, events.QueueRentalSettled, events.RentalSettled{
			TransactionID:    result.Transaction.ID,
			CustomerID:       result.Transaction.CustomerID,
			OutstandingCents: result.OutstandingCents,
			TotalFinesCents:  result.Transaction.TotalFinesCents,
			DamagedItemIDs:   in.DamagedItemIDs,
			SettledAt:        time.Now(),
		})
	}
	return result, nil
}

func (s *settlementService) validateInput(in SettlementInput) error {
	if in.AdditionalFineCents < 0 {
		return &domain.ValidationError{Field: "additional_fine", Reason: "must not be negative"}
	}
	if in.AdditionalFineCents > 0 && in.FineDescription == "" {
		return &domain.ValidationError{Field: "fine_description", Reason: "required when charging a fine"}
	}
	if !in.PaymentMethod.Valid() {
		return &domain.ValidationError{Field: "payment_method", Reason: "unknown method"}
	}
	if in.PaymentMethod == domain.PaymentMethodBankTransfer && in.SlipReference == "" {
		return &domain.ValidationError{Field: "slip_reference", Reason: "required for bank transfer"}
	}
	return nil
}

func (s *settlementService) settleInTx(ctx context.Context, tx repository.Store, in SettlementInput) (*SettlementResult, bool, error) {
	rt, err := tx.Rentals().GetTransactionForUpdate(ctx, in.TransactionID)
	if err != nil {
		return nil, false, fmt.Errorf("load transaction %d: %w", in.TransactionID, err)
	}

	if rt.PaymentStatus == domain.PaymentStatusCompleted {
		// Idempotent re-settle: report the final figures, change nothing.
		paid, err := tx.Payments().AmountPaidCents(ctx, rt.ID)
		if err != nil {
			return nil, false, fmt.Errorf("sum payments: %w", err)
		}
		if err := s.loadDetails(ctx, tx, rt); err != nil {
			return nil, false, err
		}
		logger.WarnContext(ctx, "settle on completed transaction ignored", "transaction_id", rt.ID)
		return &SettlementResult{Transaction: rt, OutstandingCents: rt.BalanceDueCents(paid)}, false, nil
	}
	if rt.PaymentStatus != domain.PaymentStatusPaid && rt.PaymentStatus != domain.PaymentStatusPartial {
		return nil, false, fmt.Errorf("transaction %d in status %q cannot settle: %w", rt.ID, rt.PaymentStatus, domain.ErrInvalidState)
	}

	if err := s.loadDetails(ctx, tx, rt); err != nil {
		return nil, false, err
	}

	// Fines only accumulate. The running total on the transaction is the
	// audit trail; each increment also leaves a damage report when tied to
	// damaged units.
	damagedDetails, err := s.matchDamagedUnits(rt, in.DamagedItemIDs)
	if err != nil {
		return nil, false, err
	}
	if in.AdditionalFineCents > 0 {
		rt.TotalFinesCents += in.AdditionalFineCents
		if err := tx.Rentals().UpdateTotalFines(ctx, rt.ID, rt.TotalFinesCents); err != nil {
			return nil, false, fmt.Errorf("update fines: %w", err)
		}
		// One report per damaged unit; a lone fine with no named units gets
		// a single unattributed report.
		fineCarrier := in.AdditionalFineCents
		if len(damagedDetails) == 0 {
			if err := tx.Maintenance().CreateDamageReport(ctx, &domain.DamageReport{
				ReportedByID:    in.StaffID,
				Description:     in.FineDescription,
				Status:          domain.DamageStatusReported,
				FineAmountCents: fineCarrier,
			}); err != nil {
				return nil, false, fmt.Errorf("create damage report: %w", err)
			}
		}
		for i := range damagedDetails {
			detailID := damagedDetails[i].ID
			amount := int64(0)
			if i == 0 {
				amount = fineCarrier
			}
			if err := tx.Maintenance().CreateDamageReport(ctx, &domain.DamageReport{
				RentalDetailID:  &detailID,
				ReportedByID:    in.StaffID,
				Description:     in.FineDescription,
				Status:          domain.DamageStatusReported,
				FineAmountCents: amount,
			}); err != nil {
				return nil, false, fmt.Errorf("create damage report: %w", err)
			}
		}
	}

	paid, err := tx.Payments().AmountPaidCents(ctx, rt.ID)
	if err != nil {
		return nil, false, fmt.Errorf("sum payments: %w", err)
	}
	outstanding := rt.BalanceDueCents(paid)

	var closing *domain.Payment
	if outstanding != 0 {
		closing = &domain.Payment{
			RentalID:      rt.ID,
			AmountCents:   outstanding,
			Method:        in.PaymentMethod,
			Type:          domain.PaymentTypeRentalFee,
			SlipReference: in.SlipReference,
			Notes:         in.Notes,
		}
		if outstanding < 0 {
			closing.Type = domain.PaymentTypeRefund
		}
		if err := tx.Payments().Create(ctx, closing); err != nil {
			return nil, false, fmt.Errorf("record closing payment: %w", err)
		}
	}

	if err := tx.Rentals().UpdatePaymentStatus(ctx, rt.ID, domain.PaymentStatusCompleted); err != nil {
		return nil, false, fmt.Errorf("complete transaction: %w", err)
	}
	rt.PaymentStatus = domain.PaymentStatusCompleted

	if err := s.releaseItems(ctx, tx, rt, in); err != nil {
		return nil, false, err
	}

	return &SettlementResult{Transaction: rt, OutstandingCents: outstanding, ClosingPayment: closing}, true, nil
}

func (s *settlementService) loadDetails(ctx context.Context, tx repository.Store, rt *domain.RentalTransaction) error {
	var err error
	rt.SetDetails, err = tx.Rentals().ListSetDetails(ctx, rt.ID)
	if err != nil {
		return fmt.Errorf("load set details: %w", err)
	}
	rt.ItemDetails, err = tx.Rentals().ListItemDetails(ctx, rt.ID)
	if err != nil {
		return fmt.Errorf("load item details: %w", err)
	}
	return nil
}

// matchDamagedUnits resolves reported damaged item ids to this transaction's
// detail rows. Naming a unit the transaction never held is an input error.
func (s *settlementService) matchDamagedUnits(rt *domain.RentalTransaction, damagedItemIDs []int64) ([]domain.RentalItemDetail, error) {
	if len(damagedItemIDs) == 0 {
		return nil, nil
	}
	byItem := make(map[int64]domain.RentalItemDetail, len(rt.ItemDetails))
	for _, d := range rt.ItemDetails {
		byItem[d.ItemID] = d
	}
	details := make([]domain.RentalItemDetail, 0, len(damagedItemIDs))
	for _, id := range damagedItemIDs {
		d, ok := byItem[id]
		if !ok {
			return nil, &domain.ValidationError{Field: "damaged_item_ids", Reason: fmt.Sprintf("item %d is not part of this rental", id)}
		}
		details = append(details, d)
	}
	return details, nil
}

// releaseItems returns the transaction's units to the pool. Damaged units go
// to under_maintenance instead of available and get a repair ticket so the
// maintenance workflow picks them up.
func (s *settlementService) releaseItems(ctx context.Context, tx repository.Store, rt *domain.RentalTransaction, in SettlementInput) error {
	damaged := make(map[int64]bool, len(in.DamagedItemIDs))
	for _, id := range in.DamagedItemIDs {
		damaged[id] = true
	}

	var toAvailable, toMaintenance []int64
	for _, d := range rt.ItemDetails {
		if damaged[d.ItemID] {
			toMaintenance = append(toMaintenance, d.ItemID)
		} else {
			toAvailable = append(toAvailable, d.ItemID)
		}
	}
	if err := tx.Catalog().UpdateItemStatuses(ctx, toAvailable, domain.ItemStatusAvailable); err != nil {
		return fmt.Errorf("release items: %w", err)
	}
	if err := tx.Catalog().UpdateItemStatuses(ctx, toMaintenance, domain.ItemStatusUnderMaintenance); err != nil {
		return fmt.Errorf("route damaged items to maintenance: %w", err)
	}
	for _, id := range toMaintenance {
		itemID := id
		if err := tx.Maintenance().CreateMaintenanceRecord(ctx, &domain.MaintenanceRecord{
			ItemID:      &itemID,
			Type:        domain.MaintenanceTypeRepair,
			StartDate:   time.Now(),
			Description: in.FineDescription,
			Status:      domain.MaintenanceStatusPending,
		}); err != nil {
			return fmt.Errorf("open maintenance record for item %d: %w", id, err)
		}
	}
	return nil
}

// RentalStatement assembles the read-only financial view of a transaction
// for the staff counter: lines, payments, damage reports, open balance.
func (s *settlementService) RentalStatement(ctx context.Context, transactionID int64) (*RentalStatement, error) {
	rt, err := s.store.Rentals().GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("load transaction %d: %w", transactionID, err)
	}
	if err := s.loadDetails(ctx, s.store, rt); err != nil {
		return nil, err
	}

	payments, err := s.store.Payments().ListByTransaction(ctx, rt.ID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	reports, err := s.store.Maintenance().ListDamageReportsByRental(ctx, rt.ID)
	if err != nil {
		return nil, fmt.Errorf("list damage reports: %w", err)
	}

	var paid int64
	for _, p := range payments {
		paid += p.AmountCents
	}
	return &RentalStatement{
		Transaction:     rt,
		Payments:        payments,
		DamageReports:   reports,
		AmountPaidCents: paid,
		BalanceCents:    rt.BalanceDueCents(paid),
	}, nil
}
