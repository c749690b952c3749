package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

// MockCatalogRepo
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) CreateItemType(ctx context.Context, it *domain.ItemType) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}
func (m *MockCatalogRepo) GetItemType(ctx context.Context, id int64) (*domain.ItemType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemType), args.Error(1)
}
func (m *MockCatalogRepo) UpdateItemType(ctx context.Context, it *domain.ItemType) error {
	args := m.Called(ctx, it)
	return args.Error(0)
}
func (m *MockCatalogRepo) CreateItem(ctx context.Context, item *domain.RentalItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}
func (m *MockCatalogRepo) GetItem(ctx context.Context, id int64) (*domain.RentalItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalItem), args.Error(1)
}
func (m *MockCatalogRepo) GetItemForUpdate(ctx context.Context, id int64) (*domain.RentalItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalItem), args.Error(1)
}
func (m *MockCatalogRepo) UpdateItemStatus(ctx context.Context, id int64, status domain.ItemStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockCatalogRepo) UpdateItemStatuses(ctx context.Context, ids []int64, status domain.ItemStatus) error {
	args := m.Called(ctx, ids, status)
	return args.Error(0)
}
func (m *MockCatalogRepo) CreateSet(ctx context.Context, set *domain.ItemSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}
func (m *MockCatalogRepo) GetSet(ctx context.Context, id int64) (*domain.ItemSet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemSet), args.Error(1)
}
func (m *MockCatalogRepo) AvailableCountByType(ctx context.Context, itemTypeID int64) (int, error) {
	args := m.Called(ctx, itemTypeID)
	return args.Int(0), args.Error(1)
}
func (m *MockCatalogRepo) AvailableCounts(ctx context.Context, itemTypeIDs []int64) (map[int64]int, error) {
	args := m.Called(ctx, itemTypeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int), args.Error(1)
}
func (m *MockCatalogRepo) CountFreeItems(ctx context.Context, itemTypeID int64, start, end time.Time) (int, error) {
	args := m.Called(ctx, itemTypeID, start, end)
	return args.Int(0), args.Error(1)
}
func (m *MockCatalogRepo) LockAvailableItems(ctx context.Context, itemTypeID int64, start, end time.Time, limit int) ([]domain.RentalItem, error) {
	args := m.Called(ctx, itemTypeID, start, end, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalItem), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) CreateTransaction(ctx context.Context, rt *domain.RentalTransaction) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}
func (m *MockRentalRepo) GetTransaction(ctx context.Context, id int64) (*domain.RentalTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalTransaction), args.Error(1)
}
func (m *MockRentalRepo) GetTransactionForUpdate(ctx context.Context, id int64) (*domain.RentalTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalTransaction), args.Error(1)
}
func (m *MockRentalRepo) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockRentalRepo) UpdateTotalFines(ctx context.Context, id int64, totalFinesCents int64) error {
	args := m.Called(ctx, id, totalFinesCents)
	return args.Error(0)
}
func (m *MockRentalRepo) CreateSetDetail(ctx context.Context, d *domain.RentalSetDetail) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockRentalRepo) CreateItemDetail(ctx context.Context, d *domain.RentalItemDetail) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}
func (m *MockRentalRepo) ListSetDetails(ctx context.Context, rentalID int64) ([]domain.RentalSetDetail, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalSetDetail), args.Error(1)
}
func (m *MockRentalRepo) ListItemDetails(ctx context.Context, rentalID int64) ([]domain.RentalItemDetail, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalItemDetail), args.Error(1)
}
func (m *MockRentalRepo) HasOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	args := m.Called(ctx, itemID, start, end)
	return args.Bool(0), args.Error(1)
}
func (m *MockRentalRepo) ListStalePending(ctx context.Context, startedBefore time.Time) ([]domain.RentalTransaction, error) {
	args := m.Called(ctx, startedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalTransaction), args.Error(1)
}
func (m *MockRentalRepo) ListOverdue(ctx context.Context, endedBefore time.Time) ([]domain.RentalTransaction, error) {
	args := m.Called(ctx, endedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RentalTransaction), args.Error(1)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) AmountPaidCents(ctx context.Context, rentalID int64) (int64, error) {
	args := m.Called(ctx, rentalID)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockPaymentRepo) ListByTransaction(ctx context.Context, rentalID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// MockMaintenanceRepo
type MockMaintenanceRepo struct {
	mock.Mock
}

func (m *MockMaintenanceRepo) CreateDamageReport(ctx context.Context, r *domain.DamageReport) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockMaintenanceRepo) CreateMaintenanceRecord(ctx context.Context, mr *domain.MaintenanceRecord) error {
	args := m.Called(ctx, mr)
	return args.Error(0)
}
func (m *MockMaintenanceRepo) ListDamageReportsByRental(ctx context.Context, rentalID int64) ([]domain.DamageReport, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DamageReport), args.Error(1)
}

// fakeStore satisfies repository.Store over the mocks. WithinTx hands the
// store itself back as the transactional view and records whether the unit
// of work unwound.
type fakeStore struct {
	catalog     *MockCatalogRepo
	rentals     *MockRentalRepo
	payments    *MockPaymentRepo
	maintenance *MockMaintenanceRepo
	rolledBack  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		catalog:     &MockCatalogRepo{},
		rentals:     &MockRentalRepo{},
		payments:    &MockPaymentRepo{},
		maintenance: &MockMaintenanceRepo{},
	}
}

func (s *fakeStore) Catalog() repository.CatalogRepository         { return s.catalog }
func (s *fakeStore) Rentals() repository.RentalRepository          { return s.rentals }
func (s *fakeStore) Payments() repository.PaymentRepository        { return s.payments }
func (s *fakeStore) Maintenance() repository.MaintenanceRepository { return s.maintenance }

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if err := fn(ctx, s); err != nil {
		s.rolledBack = true
		return err
	}
	return nil
}

// recordingPublisher captures published queue names for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	queues []string
}

func (p *recordingPublisher) Publish(ctx context.Context, queue string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queues = append(p.queues, queue)
	return nil
}

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.queues...)
}
