package postgres

import (
	"context"
	"fmt"
	"time"

	"equiprent-backend/internal/domain"
)

type rentalRepository struct {
	conn dbtx
}

const transactionColumns = `id, customer_id, start_date, end_date, total_deposit_cents, total_fines_cents, payment_status, created_on, updated_on`

func (r *rentalRepository) CreateTransaction(ctx context.Context, rt *domain.RentalTransaction) error {
	query := `INSERT INTO rental_transactions (customer_id, start_date, end_date, total_deposit_cents, total_fines_cents, payment_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	rt.CreatedOn = now
	rt.UpdatedOn = now
	return r.conn.QueryRowContext(ctx, query, rt.CustomerID, rt.StartDate, rt.EndDate, rt.TotalDepositCents, rt.TotalFinesCents, rt.PaymentStatus, now, now).Scan(&rt.ID)
}

func (r *rentalRepository) getTransaction(ctx context.Context, id int64, forUpdate bool) (*domain.RentalTransaction, error) {
	rt := &domain.RentalTransaction{}
	query := `SELECT ` + transactionColumns + ` FROM rental_transactions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.TotalDepositCents, &rt.TotalFinesCents, &rt.PaymentStatus, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, mapNotFound(mapCtxErr(ctx, err))
	}
	return rt, nil
}

func (r *rentalRepository) GetTransaction(ctx context.Context, id int64) (*domain.RentalTransaction, error) {
	return r.getTransaction(ctx, id, false)
}

func (r *rentalRepository) GetTransactionForUpdate(ctx context.Context, id int64) (*domain.RentalTransaction, error) {
	return r.getTransaction(ctx, id, true)
}

func (r *rentalRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	query := `UPDATE rental_transactions SET payment_status=$1, updated_on=$2 WHERE id=$3`
	res, err := r.conn.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rentalRepository) UpdateTotalFines(ctx context.Context, id int64, totalFinesCents int64) error {
	query := `UPDATE rental_transactions SET total_fines_cents=$1, updated_on=$2 WHERE id=$3`
	res, err := r.conn.ExecContext(ctx, query, totalFinesCents, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *rentalRepository) CreateSetDetail(ctx context.Context, d *domain.RentalSetDetail) error {
	query := `INSERT INTO rental_set_details (rental_id, item_set_id, quantity, rented_price_per_day_cents, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now()
	d.CreatedOn = now
	err := r.conn.QueryRowContext(ctx, query, d.RentalID, d.ItemSetID, d.Quantity, d.RentedPricePerDayCents, now).Scan(&d.ID)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("rental %d set %d: %w", d.RentalID, d.ItemSetID, domain.ErrDuplicate)
	}
	return err
}

func (r *rentalRepository) CreateItemDetail(ctx context.Context, d *domain.RentalItemDetail) error {
	query := `INSERT INTO rental_item_details (rental_id, item_id, quantity, rented_price_per_day_cents, set_detail_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	d.CreatedOn = now
	err := r.conn.QueryRowContext(ctx, query, d.RentalID, d.ItemID, d.Quantity, d.RentedPricePerDayCents, d.SetDetailID, now).Scan(&d.ID)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("rental %d item %d: %w", d.RentalID, d.ItemID, domain.ErrDuplicate)
	}
	return err
}

func (r *rentalRepository) ListSetDetails(ctx context.Context, rentalID int64) ([]domain.RentalSetDetail, error) {
	query := `SELECT d.id, d.rental_id, d.item_set_id, d.quantity, d.rented_price_per_day_cents, d.created_on, s.name
	          FROM rental_set_details d JOIN item_sets s ON s.id = d.item_set_id
	          WHERE d.rental_id = $1 ORDER BY d.id`
	rows, err := r.conn.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.RentalSetDetail
	for rows.Next() {
		d := domain.RentalSetDetail{ItemSet: &domain.ItemSet{}}
		if err := rows.Scan(&d.ID, &d.RentalID, &d.ItemSetID, &d.Quantity, &d.RentedPricePerDayCents, &d.CreatedOn, &d.ItemSet.Name); err != nil {
			return nil, err
		}
		d.ItemSet.ID = d.ItemSetID
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *rentalRepository) ListItemDetails(ctx context.Context, rentalID int64) ([]domain.RentalItemDetail, error) {
	query := `SELECT d.id, d.rental_id, d.item_id, d.quantity, d.rented_price_per_day_cents, d.set_detail_id, d.created_on, i.serial_number, i.status, i.item_type_id
	          FROM rental_item_details d JOIN rental_items i ON i.id = d.item_id
	          WHERE d.rental_id = $1 ORDER BY d.id`
	rows, err := r.conn.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []domain.RentalItemDetail
	for rows.Next() {
		d := domain.RentalItemDetail{Item: &domain.RentalItem{}}
		if err := rows.Scan(&d.ID, &d.RentalID, &d.ItemID, &d.Quantity, &d.RentedPricePerDayCents, &d.SetDetailID, &d.CreatedOn, &d.Item.SerialNumber, &d.Item.Status, &d.Item.ItemTypeID); err != nil {
			return nil, err
		}
		d.Item.ID = d.ItemID
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *rentalRepository) HasOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1
	            FROM rental_item_details d
	            JOIN rental_transactions t ON t.id = d.rental_id
	            WHERE d.item_id = $1
	              AND t.start_date <= $3
	              AND t.end_date >= $2
	              AND t.payment_status IN ('pending', 'partial', 'paid'))`
	var exists bool
	err := r.conn.QueryRowContext(ctx, query, itemID, start, end).Scan(&exists)
	return exists, err
}

func (r *rentalRepository) ListStalePending(ctx context.Context, startedBefore time.Time) ([]domain.RentalTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM rental_transactions WHERE payment_status = 'pending' AND start_date < $1 ORDER BY id`
	return r.listTransactions(ctx, query, startedBefore)
}

func (r *rentalRepository) ListOverdue(ctx context.Context, endedBefore time.Time) ([]domain.RentalTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM rental_transactions WHERE payment_status IN ('paid', 'partial') AND end_date < $1 ORDER BY id`
	return r.listTransactions(ctx, query, endedBefore)
}

func (r *rentalRepository) listTransactions(ctx context.Context, query string, args ...interface{}) ([]domain.RentalTransaction, error) {
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []domain.RentalTransaction
	for rows.Next() {
		var rt domain.RentalTransaction
		if err := rows.Scan(&rt.ID, &rt.CustomerID, &rt.StartDate, &rt.EndDate, &rt.TotalDepositCents, &rt.TotalFinesCents, &rt.PaymentStatus, &rt.CreatedOn, &rt.UpdatedOn); err != nil {
			return nil, err
		}
		transactions = append(transactions, rt)
	}
	return transactions, rows.Err()
}
