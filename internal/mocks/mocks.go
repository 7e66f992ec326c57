package mocks

import (
	"context"
	"time"

	"ordersystem/internal/cache"
	"ordersystem/internal/domain"
	"ordersystem/internal/infra/rabbitmq"
	"ordersystem/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Cancel(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	args := m.Called(ctx, order, items)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateWithItems(ctx context.Context, order *domain.Order, oldItems, newItems []domain.OrderItem) error {
	args := m.Called(ctx, order, oldItems, newItems)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindItems(ctx context.Context, orderID uint64) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, f repository.OrderFilter, p repository.Page) ([]domain.Order, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, f repository.OrderFilter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountItemsByProduct(ctx context.Context, productID uint64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByDay(ctx context.Context, start, end time.Time) ([]repository.DailyOrderCount, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyOrderCount), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateImage(ctx context.Context, id uint64, image []byte) error {
	args := m.Called(ctx, id, image)
	return args.Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, f repository.ProductFilter, p repository.Page) ([]domain.Product, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id uint64, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Create(ctx context.Context, item *domain.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) Update(ctx context.Context, item *domain.CartItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockCartRepository) FindByID(ctx context.Context, id uint64) (*domain.CartItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) FindByUserAndProduct(ctx context.Context, userID, productID uint64) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) ListSelectedByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CartItem), args.Error(1)
}

func (m *MockCartRepository) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCartRepository) SetSelectedByUser(ctx context.Context, userID uint64, selected bool) error {
	args := m.Called(ctx, userID, selected)
	return args.Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCartRepository) Clear(ctx context.Context, userID uint64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockCartRepository) ClearSelected(ctx context.Context, userID uint64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event string, data any) error {
	args := m.Called(ctx, event, data)
	return args.Error(0)
}

type MockCacheStore struct {
	mock.Mock
}

func (m *MockCacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheStore) Del(ctx context.Context, keys ...string) error {
	callArgs := make([]interface{}, 0, len(keys)+1)
	callArgs = append(callArgs, ctx)
	for _, k := range keys {
		callArgs = append(callArgs, k)
	}
	args := m.Called(callArgs...)
	return args.Error(0)
}

var (
	_ repository.OrderRepository   = (*MockOrderRepository)(nil)
	_ repository.ProductRepository = (*MockProductRepository)(nil)
	_ repository.CartRepository    = (*MockCartRepository)(nil)
	_ rabbitmq.PublisherInterface  = (*MockPublisher)(nil)
	_ cache.Store                  = (*MockCacheStore)(nil)
)
