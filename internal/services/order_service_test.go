package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"ordersystem/internal/cache"
	"ordersystem/internal/domain"
	"ordersystem/internal/mocks"
	"ordersystem/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newOrderServiceForTest(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, store cache.Store, pub *mocks.MockPublisher) *OrderService {
	s := NewOrderService(orders, products, cache.NewAccessor(store), pub)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestOrderService_CreateOrder(t *testing.T) {
	validOrder := func() *domain.Order {
		return &domain.Order{
			UserID:        7,
			Address:       "1 Main Street",
			Receiver:      "Pat",
			ReceiverPhone: "13800138000",
			Items: []domain.OrderItem{
				newTestItem(1, "10.00", 2),
				newTestItem(2, "5.00", 3),
			},
		}
	}

	tests := []struct {
		name          string
		order         *domain.Order
		setupMocks    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher)
		expectedError error
		expectedTotal string
	}{
		{
			name:  "successful creation computes totals and reserves stock",
			order: validOrder(),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(newTestProduct(1, "10.00", 10), nil)
				products.On("FindByID", mock.Anything, uint64(2)).Return(newTestProduct(2, "5.00", 10), nil)
				orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
					o := args.Get(1).(*domain.Order)
					o.ID = 42
				})
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(nil).Maybe()
			},
			expectedTotal: "35.00",
		},
		{
			name: "missing receiver phone rejected before any mutation",
			order: func() *domain.Order {
				o := validOrder()
				o.ReceiverPhone = "12345"
				return o
			}(),
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrInvalidOrder,
		},
		{
			name: "non-positive quantity fails the whole order",
			order: func() *domain.Order {
				o := validOrder()
				o.Items[1].Quantity = 0
				return o
			}(),
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrInvalidOrderItem,
		},
		{
			name: "missing price fails the whole order",
			order: func() *domain.Order {
				o := validOrder()
				o.Items[0].ProductPrice = decimal.Zero
				return o
			}(),
			setupMocks:    func(*mocks.MockOrderRepository, *mocks.MockProductRepository, *mocks.MockPublisher) {},
			expectedError: domain.ErrInvalidOrderItem,
		},
		{
			name:  "unknown product",
			order: validOrder(),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(nil, nil)
			},
			expectedError: repository.ErrProductNotFound,
		},
		{
			name:  "inactive product",
			order: validOrder(),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				inactive := newTestProduct(1, "10.00", 10)
				inactive.Status = domain.ProductInactive
				products.On("FindByID", mock.Anything, uint64(1)).Return(inactive, nil)
			},
			expectedError: ErrProductUnavailable,
		},
		{
			name:  "insufficient stock aborts the whole order",
			order: validOrder(),
			setupMocks: func(orders *mocks.MockOrderRepository, products *mocks.MockProductRepository, pub *mocks.MockPublisher) {
				products.On("FindByID", mock.Anything, uint64(1)).Return(newTestProduct(1, "10.00", 1), nil)
				products.On("FindByID", mock.Anything, uint64(2)).Return(newTestProduct(2, "5.00", 10), nil)
				orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
					Return(errors.New("product 1: " + repository.ErrInsufficientStock.Error()))
			},
			expectedError: nil, // asserted via message below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(mocks.MockOrderRepository)
			products := new(mocks.MockProductRepository)
			pub := new(mocks.MockPublisher)
			tt.setupMocks(orders, products, pub)

			s := newOrderServiceForTest(orders, products, newNoopCacheStore(), pub)

			got, err := s.CreateOrder(context.Background(), tt.order)

			switch {
			case tt.expectedError != nil:
				assert.Error(t, err)
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
				orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			case tt.expectedTotal != "":
				assert.NoError(t, err)
				assert.NotNil(t, got)
				assert.True(t, decimal.RequireFromString(tt.expectedTotal).Equal(got.TotalAmount),
					"total %s != %s", got.TotalAmount, tt.expectedTotal)
				assert.Equal(t, domain.StatusPendingPayment, got.Status)
				assert.True(t, strings.HasPrefix(got.OrderNo, "ORD"))
				assert.Len(t, got.PublicID, 36)
				assert.True(t, decimal.RequireFromString("20.00").Equal(got.Items[0].TotalPrice))
				assert.True(t, decimal.RequireFromString("15.00").Equal(got.Items[1].TotalPrice))
			default:
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "insufficient stock")
				assert.Nil(t, got)
			}

			time.Sleep(50 * time.Millisecond)
			orders.AssertExpectations(t)
			products.AssertExpectations(t)
		})
	}
}

func TestOrderService_LifecycleTransitions(t *testing.T) {
	operator := domain.Actor{UserID: 1, Role: domain.RoleOperator}

	tests := []struct {
		name          string
		initial       domain.OrderStatus
		call          func(s *OrderService, id uint64) (*domain.Order, error)
		event         string
		wantStatus    domain.OrderStatus
		wantErr       error
		wantNoUpdate  bool
		checkMutation func(t *testing.T, o *domain.Order)
	}{
		{
			name:       "pay from pending payment",
			initial:    domain.StatusPendingPayment,
			call:       func(s *OrderService, id uint64) (*domain.Order, error) { return s.PayOrder(context.Background(), id) },
			event:      domain.EventOrderPaid,
			wantStatus: domain.StatusPaid,
			checkMutation: func(t *testing.T, o *domain.Order) {
				assert.NotNil(t, o.PaymentTime)
			},
		},
		{
			name:         "pay an already paid order",
			initial:      domain.StatusPaid,
			call:         func(s *OrderService, id uint64) (*domain.Order, error) { return s.PayOrder(context.Background(), id) },
			wantErr:      domain.ErrInvalidTransition,
			wantNoUpdate: true,
		},
		{
			name:    "ship a paid order",
			initial: domain.StatusPaid,
			call: func(s *OrderService, id uint64) (*domain.Order, error) {
				return s.ShipOrder(context.Background(), id, operator)
			},
			event:      domain.EventOrderShipped,
			wantStatus: domain.StatusShipped,
			checkMutation: func(t *testing.T, o *domain.Order) {
				assert.NotNil(t, o.ShippingTime)
			},
		},
		{
			name:    "ship before payment",
			initial: domain.StatusPendingPayment,
			call: func(s *OrderService, id uint64) (*domain.Order, error) {
				return s.ShipOrder(context.Background(), id, operator)
			},
			wantErr:      domain.ErrInvalidTransition,
			wantNoUpdate: true,
		},
		{
			name:    "complete a shipped order",
			initial: domain.StatusShipped,
			call: func(s *OrderService, id uint64) (*domain.Order, error) {
				return s.CompleteOrder(context.Background(), id)
			},
			event:      domain.EventOrderCompleted,
			wantStatus: domain.StatusCompleted,
			checkMutation: func(t *testing.T, o *domain.Order) {
				assert.NotNil(t, o.CompleteTime)
			},
		},
		{
			name:    "complete before shipping",
			initial: domain.StatusPaid,
			call: func(s *OrderService, id uint64) (*domain.Order, error) {
				return s.CompleteOrder(context.Background(), id)
			},
			wantErr:      domain.ErrInvalidTransition,
			wantNoUpdate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(mocks.MockOrderRepository)
			products := new(mocks.MockProductRepository)
			pub := new(mocks.MockPublisher)

			orders.On("FindByID", mock.Anything, uint64(42)).Return(newTestOrder(42, tt.initial), nil)
			if !tt.wantNoUpdate {
				orders.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				pub.On("Publish", mock.Anything, tt.event, mock.Anything).Return(nil).Maybe()
			}

			s := newOrderServiceForTest(orders, products, newNoopCacheStore(), pub)

			got, err := tt.call(s, 42)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantStatus, got.Status)
				if tt.checkMutation != nil {
					tt.checkMutation(t, got)
				}
			}

			time.Sleep(50 * time.Millisecond)
			orders.AssertExpectations(t)
		})
	}
}

func TestOrderService_ShipRequiresOperator(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	pub := new(mocks.MockPublisher)

	s := newOrderServiceForTest(orders, products, newNoopCacheStore(), pub)

	got, err := s.ShipOrder(context.Background(), 42, domain.Actor{UserID: 9, Role: domain.RoleCustomer})

	assert.ErrorIs(t, err, ErrOperatorRequired)
	assert.Nil(t, got)
	orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestOrderService_ShipTwiceFailsSecondTime(t *testing.T) {
	operator := domain.Actor{UserID: 1, Role: domain.RoleOperator}
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	pub := new(mocks.MockPublisher)

	order := newTestOrder(42, domain.StatusPaid)
	orders.On("FindByID", mock.Anything, uint64(42)).Return(order, nil)
	orders.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()
	pub.On("Publish", mock.Anything, domain.EventOrderShipped, mock.Anything).Return(nil).Maybe()

	s := newOrderServiceForTest(orders, products, newNoopCacheStore(), pub)

	first, err := s.ShipOrder(context.Background(), 42, operator)
	assert.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, first.Status)

	second, err := s.ShipOrder(context.Background(), 42, operator)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Nil(t, second)
	assert.Equal(t, domain.StatusShipped, first.Status)

	time.Sleep(50 * time.Millisecond)
	orders.AssertExpectations(t)
}

func TestOrderService_CancelOrder(t *testing.T) {
	for _, initial := range []domain.OrderStatus{domain.StatusPendingPayment, domain.StatusPaid} {
		t.Run("restores stock from "+initial.String(), func(t *testing.T) {
			orders := new(mocks.MockOrderRepository)
			products := new(mocks.MockProductRepository)
			pub := new(mocks.MockPublisher)

			items := []domain.OrderItem{
				{ID: 1, OrderID: 42, ProductID: 1, ProductPrice: decimal.RequireFromString("10.00"), Quantity: 2},
				{ID: 2, OrderID: 42, ProductID: 2, ProductPrice: decimal.RequireFromString("5.00"), Quantity: 3},
			}

			orders.On("FindByID", mock.Anything, uint64(42)).Return(newTestOrder(42, initial), nil)
			orders.On("FindItems", mock.Anything, uint64(42)).Return(items, nil)
			orders.On("Cancel", mock.Anything, mock.AnythingOfType("*domain.Order"), items).Return(nil).Once()
			products.On("FindByID", mock.Anything, uint64(1)).Return(newTestProduct(1, "10.00", 12), nil)
			products.On("FindByID", mock.Anything, uint64(2)).Return(newTestProduct(2, "5.00", 13), nil)
			pub.On("Publish", mock.Anything, domain.EventOrderCancelled, mock.Anything).Return(nil).Maybe()

			s := newOrderServiceForTest(orders, products, newNoopCacheStore(), pub)

			got, err := s.CancelOrder(context.Background(), 42)

			assert.NoError(t, err)
			assert.Equal(t, domain.StatusCancelled, got.Status)
			assert.Len(t, got.Items, 2)

			time.Sleep(50 * time.Millisecond)
			orders.AssertExpectations(t)
			products.AssertExpectations(t)
		})
	}

	t.Run("cancel after shipping is refused", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)
		pub := new(mocks.MockPublisher)

		orders.On("FindByID", mock.Anything, uint64(42)).Return(newTestOrder(42, domain.StatusShipped), nil)

		s := newOrderServiceForTest(orders, products, newNoopCacheStore(), pub)

		got, err := s.CancelOrder(context.Background(), 42)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Nil(t, got)
		orders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("failed restitution surfaces and cancels nothing piecemeal", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)
		pub := new(mocks.MockPublisher)

		items := []domain.OrderItem{
			{ID: 1, OrderID: 42, ProductID: 1, ProductPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		}

		orders.On("FindByID", mock.Anything, uint64(42)).Return(newTestOrder(42, domain.StatusPaid), nil)
		orders.On("FindItems", mock.Anything, uint64(42)).Return(items, nil)
		orders.On("Cancel", mock.Anything, mock.AnythingOfType("*domain.Order"), items).
			Return(errors.New("product 1: " + repository.ErrProductNotFound.Error()))

		s := newOrderServiceForTest(orders, products, newNoopCacheStore(), pub)

		got, err := s.CancelOrder(context.Background(), 42)

		assert.Error(t, err)
		assert.Nil(t, got)
		// The status write and the restock share one transaction; the
		// service never persists the cancellation separately.
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		products.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderService_GetOrderByID(t *testing.T) {
	t.Run("cache hit skips the store read", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)
		store := new(mocks.MockCacheStore)

		cached := newTestOrder(42, domain.StatusPaid)
		raw, err := json.Marshal(cached)
		assert.NoError(t, err)

		store.On("Get", mock.Anything, "order:42").Return(raw, nil)
		orders.On("FindItems", mock.Anything, uint64(42)).Return([]domain.OrderItem{}, nil)

		s := newOrderServiceForTest(orders, products, store, new(mocks.MockPublisher))

		got, err := s.GetOrderByID(context.Background(), 42)

		assert.NoError(t, err)
		assert.Equal(t, uint64(42), got.ID)
		assert.Equal(t, domain.StatusPaid, got.Status)
		orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("cache outage falls back to the store", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)
		store := new(mocks.MockCacheStore)

		store.On("Get", mock.Anything, "order:42").Return(nil, errors.New("connection refused"))
		store.On("Set", mock.Anything, "order:42", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
		orders.On("FindByID", mock.Anything, uint64(42)).Return(newTestOrder(42, domain.StatusPaid), nil)
		orders.On("FindItems", mock.Anything, uint64(42)).Return([]domain.OrderItem{}, nil)

		s := newOrderServiceForTest(orders, products, store, new(mocks.MockPublisher))

		got, err := s.GetOrderByID(context.Background(), 42)

		assert.NoError(t, err)
		assert.Equal(t, uint64(42), got.ID)
	})

	t.Run("unknown order", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)

		orders.On("FindByID", mock.Anything, uint64(99)).Return(nil, nil)

		s := newOrderServiceForTest(orders, products, newNoopCacheStore(), new(mocks.MockPublisher))

		got, err := s.GetOrderByID(context.Background(), 99)

		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.Nil(t, got)
	})
}

func TestOrderService_GetOrderByPublicID(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)

	order := newTestOrder(42, domain.StatusPendingPayment)
	orders.On("FindByPublicID", mock.Anything, order.PublicID).Return(order, nil)
	orders.On("FindItems", mock.Anything, uint64(42)).Return([]domain.OrderItem{newTestItem(1, "10.00", 2)}, nil)

	s := newOrderServiceForTest(orders, products, newNoopCacheStore(), new(mocks.MockPublisher))

	got, err := s.GetOrderByPublicID(context.Background(), order.PublicID)

	assert.NoError(t, err)
	assert.Equal(t, uint64(42), got.ID)
	assert.Len(t, got.Items, 1)
	orders.AssertExpectations(t)
}

func TestOrderService_ListOrders(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)

	status := domain.StatusPaid
	f := repository.OrderFilter{UserID: 7, Status: &status}
	page := repository.Page{Num: 1, Size: 10}

	orders.On("List", mock.Anything, f, page).Return([]domain.Order{*newTestOrder(42, domain.StatusPaid)}, nil)
	orders.On("Count", mock.Anything, f).Return(int64(1), nil)
	orders.On("FindItems", mock.Anything, uint64(42)).Return([]domain.OrderItem{}, nil)

	s := newOrderServiceForTest(orders, products, newNoopCacheStore(), new(mocks.MockPublisher))

	list, total, err := s.ListOrders(context.Background(), f, page)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
	orders.AssertExpectations(t)
}

func TestOrderService_EditOrder(t *testing.T) {
	t.Run("replacing items recomputes the total in one unit", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)

		oldItems := []domain.OrderItem{
			{ID: 1, OrderID: 42, ProductID: 1, ProductPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		}
		orders.On("FindByID", mock.Anything, uint64(42)).Return(newTestOrder(42, domain.StatusPendingPayment), nil)
		orders.On("FindItems", mock.Anything, uint64(42)).Return(oldItems, nil)
		products.On("FindByID", mock.Anything, uint64(1)).Return(newTestProduct(1, "10.00", 10), nil)
		products.On("FindByID", mock.Anything, uint64(2)).Return(newTestProduct(2, "5.00", 10), nil)
		orders.On("UpdateWithItems", mock.Anything, mock.AnythingOfType("*domain.Order"), oldItems, mock.Anything).Return(nil).Once()

		s := newOrderServiceForTest(orders, products, newNoopCacheStore(), new(mocks.MockPublisher))

		got, err := s.EditOrder(context.Background(), 42, OrderEdit{
			Address:       "2 Side Street",
			Receiver:      "Sam",
			ReceiverPhone: "13900139000",
			Items: []domain.OrderItem{
				newTestItem(2, "5.00", 4),
			},
		})

		assert.NoError(t, err)
		assert.Equal(t, "2 Side Street", got.Address)
		assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("20.00")))
		assert.Len(t, got.Items, 1)
		orders.AssertExpectations(t)
	})

	t.Run("details-only edit keeps the total", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)

		order := newTestOrder(42, domain.StatusPendingPayment)
		orders.On("FindByID", mock.Anything, uint64(42)).Return(order, nil)
		orders.On("FindItems", mock.Anything, uint64(42)).Return([]domain.OrderItem{
			{ID: 1, OrderID: 42, ProductID: 1, ProductPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		}, nil)
		orders.On("Update", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Once()

		s := newOrderServiceForTest(orders, products, newNoopCacheStore(), new(mocks.MockPublisher))

		got, err := s.EditOrder(context.Background(), 42, OrderEdit{
			Address:       "2 Side Street",
			Receiver:      "Sam",
			ReceiverPhone: "13900139000",
		})

		assert.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("35.00")))
		orders.AssertNotCalled(t, "UpdateWithItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		orders.AssertExpectations(t)
	})

	t.Run("paid orders are frozen", func(t *testing.T) {
		orders := new(mocks.MockOrderRepository)
		products := new(mocks.MockProductRepository)

		orders.On("FindByID", mock.Anything, uint64(42)).Return(newTestOrder(42, domain.StatusPaid), nil)

		s := newOrderServiceForTest(orders, products, newNoopCacheStore(), new(mocks.MockPublisher))

		got, err := s.EditOrder(context.Background(), 42, OrderEdit{
			Address:       "2 Side Street",
			Receiver:      "Sam",
			ReceiverPhone: "13900139000",
		})

		assert.ErrorIs(t, err, ErrOrderNotEditable)
		assert.Nil(t, got)
		orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		orders.AssertNotCalled(t, "UpdateWithItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderService_CountOrders(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)
	store := new(mocks.MockCacheStore)

	store.On("Get", mock.Anything, "orderCount:all").Return(nil, cache.ErrMiss)
	store.On("Set", mock.Anything, "orderCount:all", mock.Anything, cache.OrderCountPolicy.TTL).Return(nil)
	orders.On("Count", mock.Anything, repository.OrderFilter{}).Return(int64(7), nil).Once()

	s := newOrderServiceForTest(orders, products, store, new(mocks.MockPublisher))

	n, err := s.CountOrders(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(7), n)
	store.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestOrderService_RecentOrderCounts(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	products := new(mocks.MockProductRepository)

	end := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	startDay := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	orders.On("CountByDay", mock.Anything, startDay, end).Return([]repository.DailyOrderCount{
		{Date: "2024-04-30", Count: 2},
	}, nil)

	s := newOrderServiceForTest(orders, products, newNoopCacheStore(), new(mocks.MockPublisher))

	counts, err := s.RecentOrderCounts(context.Background(), 3)

	assert.NoError(t, err)
	// Every day of the window is present, zero-filled, oldest first.
	assert.Equal(t, []repository.DailyOrderCount{
		{Date: "2024-04-29", Count: 0},
		{Date: "2024-04-30", Count: 2},
		{Date: "2024-05-01", Count: 0},
	}, counts)
	orders.AssertExpectations(t)
}
