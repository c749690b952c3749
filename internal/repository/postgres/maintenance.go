package postgres

import (
	"context"
	"time"

	"equiprent-backend/internal/domain"
)

type maintenanceRepository struct {
	conn dbtx
}

func (r *maintenanceRepository) CreateDamageReport(ctx context.Context, dr *domain.DamageReport) error {
	query := `INSERT INTO damage_reports (rental_detail_id, reported_by_id, damage_description, damage_date, damage_status, fine_amount_cents, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	dr.CreatedOn = now
	if dr.DamageDate.IsZero() {
		dr.DamageDate = now
	}
	return r.conn.QueryRowContext(ctx, query, dr.RentalDetailID, dr.ReportedByID, dr.Description, dr.DamageDate, dr.Status, dr.FineAmountCents, now).Scan(&dr.ID)
}

func (r *maintenanceRepository) CreateMaintenanceRecord(ctx context.Context, mr *domain.MaintenanceRecord) error {
	query := `INSERT INTO maintenance_records (item_id, maintenance_type, start_date, completion_date, cost_cents, description, technician, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	mr.CreatedOn = now
	if mr.StartDate.IsZero() {
		mr.StartDate = now
	}
	return r.conn.QueryRowContext(ctx, query, mr.ItemID, mr.Type, mr.StartDate, mr.CompletionDate, mr.CostCents, mr.Description, mr.Technician, mr.Status, now).Scan(&mr.ID)
}

func (r *maintenanceRepository) ListDamageReportsByRental(ctx context.Context, rentalID int64) ([]domain.DamageReport, error) {
	query := `SELECT r.id, r.rental_detail_id, r.reported_by_id, r.damage_description, r.damage_date, r.damage_status, r.fine_amount_cents, r.created_on
	          FROM damage_reports r JOIN rental_item_details d ON d.id = r.rental_detail_id
	          WHERE d.rental_id = $1 ORDER BY r.id`
	rows, err := r.conn.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []domain.DamageReport
	for rows.Next() {
		var dr domain.DamageReport
		if err := rows.Scan(&dr.ID, &dr.RentalDetailID, &dr.ReportedByID, &dr.Description, &dr.DamageDate, &dr.Status, &dr.FineAmountCents, &dr.CreatedOn); err != nil {
			return nil, err
		}
		reports = append(reports, dr)
	}
	return reports, rows.Err()
}
