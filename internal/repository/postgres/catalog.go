package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"equiprent-backend/internal/domain"

	"github.com/lib/pq"
)

type catalogRepository struct {
	conn dbtx
}

func (r *catalogRepository) CreateItemType(ctx context.Context, it *domain.ItemType) error {
	query := `INSERT INTO item_types (category, description, size, capacity, rental_price_per_day_cents, replacement_cost_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	it.CreatedOn = now
	it.UpdatedOn = now
	return r.conn.QueryRowContext(ctx, query, it.Category, it.Description, it.Size, it.Capacity, it.RentalPricePerDayCents, it.ReplacementCostCents, now, now).Scan(&it.ID)
}

func (r *catalogRepository) GetItemType(ctx context.Context, id int64) (*domain.ItemType, error) {
	it := &domain.ItemType{}
	query := `SELECT id, category, description, size, capacity, rental_price_per_day_cents, replacement_cost_cents, created_on, updated_on FROM item_types WHERE id = $1`
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&it.ID, &it.Category, &it.Description, &it.Size, &it.Capacity, &it.RentalPricePerDayCents, &it.ReplacementCostCents, &it.CreatedOn, &it.UpdatedOn)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return it, nil
}

func (r *catalogRepository) UpdateItemType(ctx context.Context, it *domain.ItemType) error {
	query := `UPDATE item_types SET description=$1, size=$2, capacity=$3, rental_price_per_day_cents=$4, replacement_cost_cents=$5, updated_on=$6 WHERE id=$7`
	_, err := r.conn.ExecContext(ctx, query, it.Description, it.Size, it.Capacity, it.RentalPricePerDayCents, it.ReplacementCostCents, time.Now(), it.ID)
	return err
}

func (r *catalogRepository) CreateItem(ctx context.Context, item *domain.RentalItem) error {
	query := `INSERT INTO rental_items (item_type_id, serial_number, status, purchase_date, last_inspection_date, condition_notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	item.CreatedOn = now
	item.UpdatedOn = now
	err := r.conn.QueryRowContext(ctx, query, item.ItemTypeID, item.SerialNumber, item.Status, item.PurchaseDate, item.LastInspectionDate, item.ConditionNotes, now, now).Scan(&item.ID)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("serial %q: %w", item.SerialNumber, domain.ErrDuplicate)
	}
	return err
}

const itemColumns = `i.id, i.item_type_id, i.serial_number, i.status, i.purchase_date, i.last_inspection_date, i.condition_notes, i.created_on, i.updated_on`

func (r *catalogRepository) getItem(ctx context.Context, id int64, forUpdate bool) (*domain.RentalItem, error) {
	item := &domain.RentalItem{ItemType: &domain.ItemType{}}
	query := `SELECT ` + itemColumns + `, t.id, t.category, t.description, t.size, t.capacity, t.rental_price_per_day_cents, t.replacement_cost_cents, t.created_on, t.updated_on
	          FROM rental_items i JOIN item_types t ON t.id = i.item_type_id WHERE i.id = $1`
	if forUpdate {
		query += ` FOR UPDATE OF i`
	}
	err := r.conn.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.ItemTypeID, &item.SerialNumber, &item.Status, &item.PurchaseDate, &item.LastInspectionDate, &item.ConditionNotes, &item.CreatedOn, &item.UpdatedOn,
		&item.ItemType.ID, &item.ItemType.Category, &item.ItemType.Description, &item.ItemType.Size, &item.ItemType.Capacity, &item.ItemType.RentalPricePerDayCents, &item.ItemType.ReplacementCostCents, &item.ItemType.CreatedOn, &item.ItemType.UpdatedOn,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return item, nil
}

func (r *catalogRepository) GetItem(ctx context.Context, id int64) (*domain.RentalItem, error) {
	return r.getItem(ctx, id, false)
}

func (r *catalogRepository) GetItemForUpdate(ctx context.Context, id int64) (*domain.RentalItem, error) {
	return r.getItem(ctx, id, true)
}

func (r *catalogRepository) UpdateItemStatus(ctx context.Context, id int64, status domain.ItemStatus) error {
	query := `UPDATE rental_items SET status=$1, updated_on=$2 WHERE id=$3`
	res, err := r.conn.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *catalogRepository) UpdateItemStatuses(ctx context.Context, ids []int64, status domain.ItemStatus) error {
	if len(ids) == 0 {
		return nil
	}
	query := `UPDATE rental_items SET status=$1, updated_on=$2 WHERE id = ANY($3)`
	_, err := r.conn.ExecContext(ctx, query, status, time.Now(), pq.Array(ids))
	return err
}

func (r *catalogRepository) CreateSet(ctx context.Context, set *domain.ItemSet) error {
	query := `INSERT INTO item_sets (name, description, base_price_cents, replacement_deposit_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	now := time.Now()
	set.CreatedOn = now
	set.UpdatedOn = now
	err := r.conn.QueryRowContext(ctx, query, set.Name, set.Description, set.BasePriceCents, set.ReplacementDepositCents, now, now).Scan(&set.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("set %q: %w", set.Name, domain.ErrDuplicate)
		}
		return err
	}
	for i := range set.Components {
		c := &set.Components[i]
		c.ItemSetID = set.ID
		compQuery := `INSERT INTO item_set_components (item_set_id, item_type_id, quantity) VALUES ($1, $2, $3) RETURNING id`
		if err := r.conn.QueryRowContext(ctx, compQuery, c.ItemSetID, c.ItemTypeID, c.Quantity).Scan(&c.ID); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("set %q component type %d: %w", set.Name, c.ItemTypeID, domain.ErrDuplicate)
			}
			return err
		}
	}
	return nil
}

func (r *catalogRepository) GetSet(ctx context.Context, id int64) (*domain.ItemSet, error) {
	set := &domain.ItemSet{}
	query := `SELECT id, name, description, base_price_cents, replacement_deposit_cents, created_on, updated_on FROM item_sets WHERE id = $1`
	err := r.conn.QueryRowContext(ctx, query, id).Scan(&set.ID, &set.Name, &set.Description, &set.BasePriceCents, &set.ReplacementDepositCents, &set.CreatedOn, &set.UpdatedOn)
	if err != nil {
		return nil, mapNotFound(err)
	}

	compQuery := `SELECT c.id, c.item_set_id, c.item_type_id, c.quantity, t.id, t.category, t.description, t.size, t.capacity, t.rental_price_per_day_cents, t.replacement_cost_cents, t.created_on, t.updated_on
	              FROM item_set_components c JOIN item_types t ON t.id = c.item_type_id
	              WHERE c.item_set_id = $1 ORDER BY c.id`
	rows, err := r.conn.QueryContext(ctx, compQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		c := domain.ItemSetComponent{ItemType: &domain.ItemType{}}
		if err := rows.Scan(&c.ID, &c.ItemSetID, &c.ItemTypeID, &c.Quantity,
			&c.ItemType.ID, &c.ItemType.Category, &c.ItemType.Description, &c.ItemType.Size, &c.ItemType.Capacity, &c.ItemType.RentalPricePerDayCents, &c.ItemType.ReplacementCostCents, &c.ItemType.CreatedOn, &c.ItemType.UpdatedOn); err != nil {
			return nil, err
		}
		set.Components = append(set.Components, c)
	}
	return set, rows.Err()
}

func (r *catalogRepository) AvailableCountByType(ctx context.Context, itemTypeID int64) (int, error) {
	var count int
	query := `SELECT count(*) FROM rental_items WHERE item_type_id = $1 AND status = 'available'`
	err := r.conn.QueryRowContext(ctx, query, itemTypeID).Scan(&count)
	return count, err
}

func (r *catalogRepository) AvailableCounts(ctx context.Context, itemTypeIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(itemTypeIDs))
	if len(itemTypeIDs) == 0 {
		return counts, nil
	}
	query := `SELECT item_type_id, count(*) FROM rental_items WHERE item_type_id = ANY($1) AND status = 'available' GROUP BY item_type_id`
	rows, err := r.conn.QueryContext(ctx, query, pq.Array(itemTypeIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var typeID int64
		var count int
		if err := rows.Scan(&typeID, &count); err != nil {
			return nil, err
		}
		counts[typeID] = count
	}
	return counts, rows.Err()
}

func (r *catalogRepository) CountFreeItems(ctx context.Context, itemTypeID int64, start, end time.Time) (int, error) {
	query := `SELECT count(*)
	          FROM rental_items i
	          WHERE i.item_type_id = $1
	            AND i.status = 'available'
	            AND NOT EXISTS (
	              SELECT 1
	              FROM rental_item_details d
	              JOIN rental_transactions t ON t.id = d.rental_id
	              WHERE d.item_id = i.id
	                AND t.start_date <= $3
	                AND t.end_date >= $2
	                AND t.payment_status IN ('pending', 'partial', 'paid'))`
	var count int
	err := r.conn.QueryRowContext(ctx, query, itemTypeID, start, end).Scan(&count)
	return count, err
}

// LockAvailableItems grabs row locks on the lowest-id available units of a
// type that carry no overlapping active booking. Concurrent finalizations of
// the same type therefore queue on the same rows instead of double-booking.
func (r *catalogRepository) LockAvailableItems(ctx context.Context, itemTypeID int64, start, end time.Time, limit int) ([]domain.RentalItem, error) {
	query := strings.TrimSpace(`
		SELECT ` + itemColumns + `
		FROM rental_items i
		WHERE i.item_type_id = $1
		  AND i.status = 'available'
		  AND NOT EXISTS (
		    SELECT 1
		    FROM rental_item_details d
		    JOIN rental_transactions t ON t.id = d.rental_id
		    WHERE d.item_id = i.id
		      AND t.start_date <= $3
		      AND t.end_date >= $2
		      AND t.payment_status IN ('pending', 'partial', 'paid')
		  )
		ORDER BY i.id ASC
		LIMIT $4
		FOR UPDATE OF i`)

	rows, err := r.conn.QueryContext(ctx, query, itemTypeID, start, end, limit)
	if err != nil {
		return nil, mapCtxErr(ctx, err)
	}
	defer rows.Close()

	var items []domain.RentalItem
	for rows.Next() {
		var item domain.RentalItem
		if err := rows.Scan(&item.ID, &item.ItemTypeID, &item.SerialNumber, &item.Status, &item.PurchaseDate, &item.LastInspectionDate, &item.ConditionNotes, &item.CreatedOn, &item.UpdatedOn); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
