package services

import (
	"time"

	"ordersystem/internal/cache"
	"ordersystem/internal/domain"
	"ordersystem/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func newTestOrder(id uint64, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:            id,
		OrderNo:       "ORD1700000000000abc123",
		PublicID:      "7b1f4a2e-0000-4000-8000-000000000001",
		UserID:        7,
		TotalAmount:   decimal.RequireFromString("35.00"),
		Status:        status,
		Address:       "1 Main Street",
		Receiver:      "Pat",
		ReceiverPhone: "13800138000",
		CreatedAt:     time.Now(),
	}
}

func newTestProduct(id uint64, price string, stock int) *domain.Product {
	return &domain.Product{
		ID:     id,
		Name:   "Test Product",
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Status: domain.ProductActive,
	}
}

func newTestItem(productID uint64, price string, qty int) domain.OrderItem {
	return domain.OrderItem{
		ProductID:    productID,
		ProductPrice: decimal.RequireFromString(price),
		Quantity:     qty,
	}
}

// newNoopCacheStore answers every cache call without effect, so tests can
// focus on store-side behavior. Cache interactions that matter get their own
// expectations instead.
func newNoopCacheStore() *mocks.MockCacheStore {
	st := new(mocks.MockCacheStore)
	st.On("Get", mock.Anything, mock.Anything).Return(nil, cache.ErrMiss).Maybe()
	st.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	st.On("Del", mock.Anything, mock.Anything).Return(nil).Maybe()
	return st
}
