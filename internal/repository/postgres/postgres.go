package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"

	"github.com/lib/pq"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same repository code serves both pooled and transactional calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db          *sql.DB
	conn        dbtx
	catalog     repository.CatalogRepository
	rentals     repository.RentalRepository
	payments    repository.PaymentRepository
	maintenance repository.MaintenanceRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, conn dbtx) *Store {
	return &Store{
		db:          db,
		conn:        conn,
		catalog:     &catalogRepository{conn: conn},
		rentals:     &rentalRepository{conn: conn},
		payments:    &paymentRepository{conn: conn},
		maintenance: &maintenanceRepository{conn: conn},
	}
}

func (s *Store) Catalog() repository.CatalogRepository         { return s.catalog }
func (s *Store) Rentals() repository.RentalRepository          { return s.rentals }
func (s *Store) Payments() repository.PaymentRepository        { return s.payments }
func (s *Store) Maintenance() repository.MaintenanceRepository { return s.maintenance }

// WithinTx runs fn against a Store bound to a single transaction. A fn error
// or panic rolls back; a deadline expiry surfaces as domain.ErrTimeout so
// callers can tell the customer to retry.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if _, ok := s.conn.(*sql.Tx); ok {
		// Already transactional: join the enclosing transaction.
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", mapCtxErr(ctx, err))
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, newStore(s.db, tx)); err != nil {
		tx.Rollback()
		return mapCtxErr(ctx, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorageFailure, mapCtxErr(ctx, err))
	}
	return nil
}

// mapCtxErr folds context expiry into the domain timeout sentinel.
func mapCtxErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return err
}

// isUniqueViolation reports a PostgreSQL unique constraint error (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// mapNotFound folds sql.ErrNoRows into the domain sentinel.
func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
