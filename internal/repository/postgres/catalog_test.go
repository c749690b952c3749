package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/domain"
)

func itemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "item_type_id", "serial_number", "status", "purchase_date", "last_inspection_date", "condition_notes", "created_on", "updated_on"})
}

func TestCatalogRepository_CreateItem(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		item := &domain.RentalItem{
			ItemTypeID:   3,
			SerialNumber: "RI-20260601-042",
			Status:       domain.ItemStatusAvailable,
		}

		mock.ExpectQuery("INSERT INTO rental_items").
			WithArgs(item.ItemTypeID, item.SerialNumber, item.Status, item.PurchaseDate, item.LastInspectionDate, item.ConditionNotes, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		require.NoError(t, store.Catalog().CreateItem(ctx, item))
		assert.Equal(t, int64(11), item.ID)
	})

	t.Run("DuplicateSerial", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO rental_items").
			WillReturnError(&uniqueViolation)

		err := store.Catalog().CreateItem(ctx, &domain.RentalItem{SerialNumber: "RI-20260601-042"})
		assert.ErrorIs(t, err, domain.ErrDuplicate)
	})
}

func TestCatalogRepository_CountFreeItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT count").
		WithArgs(int64(3), day(2026, 6, 1), day(2026, 6, 5)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := store.Catalog().CountFreeItems(ctx, 3, day(2026, 6, 1), day(2026, 6, 5))
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestCatalogRepository_LockAvailableItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	mock.ExpectQuery("FROM rental_items i").
		WithArgs(int64(3), day(2026, 6, 1), day(2026, 6, 5), 2).
		WillReturnRows(itemRows().
			AddRow(5, 3, "RI-20260101-001", "available", nil, nil, "", time.Now(), time.Now()).
			AddRow(9, 3, "RI-20260101-002", "available", nil, nil, "", time.Now(), time.Now()))

	items, err := store.Catalog().LockAvailableItems(ctx, 3, day(2026, 6, 1), day(2026, 6, 5), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(5), items[0].ID, "candidates come back in ascending id order")
	assert.Equal(t, int64(9), items[1].ID)
}

func TestCatalogRepository_UpdateItemStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	t.Run("Batch", func(t *testing.T) {
		mock.ExpectExec("UPDATE rental_items SET status").
			WithArgs(domain.ItemStatusAvailable, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 3))

		assert.NoError(t, store.Catalog().UpdateItemStatuses(ctx, []int64{1, 2, 3}, domain.ItemStatusAvailable))
	})

	t.Run("EmptyBatchSkipsQuery", func(t *testing.T) {
		assert.NoError(t, store.Catalog().UpdateItemStatuses(ctx, nil, domain.ItemStatusAvailable))
	})
}

func TestCatalogRepository_GetSet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, name, description, base_price_cents, replacement_deposit_cents, created_on, updated_on FROM item_sets").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "base_price_cents", "replacement_deposit_cents", "created_on", "updated_on"}).
			AddRow(2, "Wedding Package", "", 10000, 30000, time.Now(), time.Now()))

	mock.ExpectQuery("FROM item_set_components c").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_set_id", "item_type_id", "quantity", "t_id", "category", "description", "size", "capacity", "rental_price_per_day_cents", "replacement_cost_cents", "t_created_on", "t_updated_on"}).
			AddRow(1, 2, 3, 2, 3, "table", "Round table", "large", nil, 1500, 20000, time.Now(), time.Now()).
			AddRow(2, 2, 4, 4, 4, "chair", "Folding chair", "", nil, 500, 3000, time.Now(), time.Now()))

	set, err := store.Catalog().GetSet(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Wedding Package", set.Name)
	require.Len(t, set.Components, 2)
	assert.Equal(t, int32(2), set.Components[0].Quantity)
	assert.Equal(t, domain.ItemCategoryChair, set.Components[1].ItemType.Category)
}

func TestPaymentRepository_AmountPaidCents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(5000))

	total, err := store.Payments().AmountPaidCents(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), total)
}
