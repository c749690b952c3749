package jobs

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/events"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
	"equiprent-backend/internal/utils"
)

// CancelStalePendingBookings cancels pending transactions whose start date
// has passed without an approval decision, releasing their items for the
// dates.
func (jr *JobRunner) CancelStalePendingBookings() {
	jr.runWithRecovery("CancelStalePendingBookings", func() {
		ctx := context.Background()
		today := utils.NormalizeDate(time.Now())

		stale, err := jr.store.Rentals().ListStalePending(ctx, today)
		if err != nil {
			logger.Error("Failed to list stale pending bookings", "error", err)
			return
		}

		cancelled := 0
		for _, rt := range stale {
			err := jr.store.WithinTx(ctx, func(ctx context.Context, tx repository.Store) error {
				current, err := tx.Rentals().GetTransactionForUpdate(ctx, rt.ID)
				if err != nil {
					return err
				}
				if current.PaymentStatus != domain.PaymentStatusPending {
					return nil
				}
				return tx.Rentals().UpdatePaymentStatus(ctx, rt.ID, domain.PaymentStatusCancelled)
			})
			if err != nil {
				logger.Error("Failed to cancel stale booking", "transaction_id", rt.ID, "error", err)
				continue
			}
			cancelled++
		}

		logger.Info("Stale pending bookings cancelled", "count", cancelled)
	})
}

// FlagOverdueReturns emits a rental.overdue event for every paid or partial
// transaction past its end date without settlement. The sweep only notifies;
// fines are charged by staff at settlement.
func (jr *JobRunner) FlagOverdueReturns() {
	jr.runWithRecovery("FlagOverdueReturns", func() {
		ctx := context.Background()
		today := utils.NormalizeDate(time.Now())

		overdue, err := jr.store.Rentals().ListOverdue(ctx, today)
		if err != nil {
			logger.Error("Failed to list overdue rentals", "error", err)
			return
		}

		for _, rt := range overdue {
			daysOverdue := int32(today.Sub(utils.NormalizeDate(rt.EndDate)).Hours() / 24)
			if err := jr.publisher.Publish(ctx, events.QueueRentalOverdue, events.RentalOverdue{
				TransactionID: rt.ID,
				CustomerID:    rt.CustomerID,
				EndDate:       rt.EndDate,
				DaysOverdue:   daysOverdue,
				FlaggedAt:     time.Now(),
			}); err != nil {
				logger.Error("Failed to publish overdue event", "transaction_id", rt.ID, "error", err)
			}
		}

		logger.Info("Overdue returns flagged", "count", len(overdue))
	})
}
