package postgres

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

type paymentRepository struct {
	conn dbtx
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (rental_id, amount_cents, payment_method, payment_type, slip_reference, damage_report_id, transaction_date, reference_number, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if p.TransactionDate.IsZero() {
		p.TransactionDate = time.Now()
	}
	return r.conn.QueryRowContext(ctx, query, p.RentalID, p.AmountCents, p.Method, p.Type, p.SlipReference, p.DamageReportID, p.TransactionDate, p.ReferenceNumber, p.Notes).Scan(&p.ID)
}

// AmountPaidCents sums all recorded payments for a transaction. Refunds are
// stored negative, so the sum is the net amount held.
func (r *paymentRepository) AmountPaidCents(ctx context.Context, rentalID int64) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE rental_id = $1`
	err := r.conn.QueryRowContext(ctx, query, rentalID).Scan(&total)
	return total, err
}

func (r *paymentRepository) ListByTransaction(ctx context.Context, rentalID int64) ([]domain.Payment, error) {
	query := `SELECT id, rental_id, amount_cents, payment_method, payment_type, slip_reference, damage_report_id, transaction_date, reference_number, notes
	          FROM payments WHERE rental_id = $1 ORDER BY id`
	rows, err := r.conn.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.RentalID, &p.AmountCents, &p.Method, &p.Type, &p.SlipReference, &p.DamageReportID, &p.TransactionDate, &p.ReferenceNumber, &p.Notes); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
