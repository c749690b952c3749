package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"equiprent-backend/internal/config"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

// stubStore overrides just the store surface the jobs touch; calling
// anything else panics through the nil embedded interface.
type stubStore struct {
	repository.Store
	rentals *stubRentals
}

func (s *stubStore) Rentals() repository.RentalRepository { return s.rentals }

func (s *stubStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return fn(ctx, s)
}

type stubRentals struct {
	repository.RentalRepository
	stale         []domain.RentalTransaction
	overdue       []domain.RentalTransaction
	byID          map[int64]*domain.RentalTransaction
	statusUpdates map[int64]domain.PaymentStatus
}

func (r *stubRentals) ListStalePending(ctx context.Context, startedBefore time.Time) ([]domain.RentalTransaction, error) {
	return r.stale, nil
}

func (r *stubRentals) ListOverdue(ctx context.Context, endedBefore time.Time) ([]domain.RentalTransaction, error) {
	return r.overdue, nil
}

func (r *stubRentals) GetTransactionForUpdate(ctx context.Context, id int64) (*domain.RentalTransaction, error) {
	rt, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rt, nil
}

func (r *stubRentals) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	if r.statusUpdates == nil {
		r.statusUpdates = map[int64]domain.PaymentStatus{}
	}
	r.statusUpdates[id] = status
	return nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	queues []string
}

func (p *capturingPublisher) Publish(ctx context.Context, queue string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, queue)
	return nil
}

func jobConfig() *config.Config {
	return &config.Config{}
}

func TestCancelStalePendingBookings(t *testing.T) {
	pendingOne := &domain.RentalTransaction{ID: 1, PaymentStatus: domain.PaymentStatusPending}
	// Approved between the sweep's list and its lock: must survive.
	decided := &domain.RentalTransaction{ID: 2, PaymentStatus: domain.PaymentStatusPaid}

	rentals := &stubRentals{
		stale: []domain.RentalTransaction{
			{ID: 1, PaymentStatus: domain.PaymentStatusPending},
			{ID: 2, PaymentStatus: domain.PaymentStatusPending},
		},
		byID: map[int64]*domain.RentalTransaction{1: pendingOne, 2: decided},
	}
	store := &stubStore{rentals: rentals}
	runner := NewJobRunner(store, &capturingPublisher{}, jobConfig())

	runner.CancelStalePendingBookings()

	assert.Equal(t, domain.PaymentStatusCancelled, rentals.statusUpdates[1])
	_, touched := rentals.statusUpdates[2]
	assert.False(t, touched, "a transaction decided mid-sweep is left alone")
}

func TestFlagOverdueReturns(t *testing.T) {
	rentals := &stubRentals{
		overdue: []domain.RentalTransaction{
			{ID: 1, CustomerID: 42, PaymentStatus: domain.PaymentStatusPaid, EndDate: time.Now().AddDate(0, 0, -3)},
			{ID: 2, CustomerID: 43, PaymentStatus: domain.PaymentStatusPartial, EndDate: time.Now().AddDate(0, 0, -1)},
		},
	}
	store := &stubStore{rentals: rentals}
	publisher := &capturingPublisher{}
	runner := NewJobRunner(store, publisher, jobConfig())

	runner.FlagOverdueReturns()

	assert.Len(t, publisher.queues, 2)
	assert.Equal(t, "rental.overdue", publisher.queues[0])
	assert.Empty(t, rentals.statusUpdates, "the sweep notifies without touching payment status")
}
