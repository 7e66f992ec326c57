package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"ordersystem/internal/cache"
	"ordersystem/internal/domain"
	rabbit "ordersystem/internal/infra/rabbitmq"
	"ordersystem/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrOperatorRequired   = errors.New("operator role required")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrOrderNotEditable   = errors.New("order can no longer be edited")
)

// defaultStatsDays is the window for the recent-orders statistic when the
// caller does not pick one.
const defaultStatsDays = 15

// OrderService composes the lifecycle engine, inventory adjustment and the
// cache accessor into the operations exposed to controllers.
type OrderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	cache     *cache.Accessor
	publisher rabbit.PublisherInterface

	now         func() time.Time
	newPublicID func() string
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, accessor *cache.Accessor, pub rabbit.PublisherInterface) *OrderService {
	return &OrderService{
		orders:      orders,
		products:    products,
		cache:       accessor,
		publisher:   pub,
		now:         time.Now,
		newPublicID: uuid.NewString,
	}
}

// CreateOrder validates the request, derives the totals, persists the order
// with its stock reservation in one unit and populates the cache. Stock
// failure aborts the whole order.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	total, err := domain.ComputeTotals(order.Items)
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		item := &order.Items[i]
		product, err := s.lookupProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Status != domain.ProductActive {
			return nil, fmt.Errorf("%w: product %d is inactive", ErrProductUnavailable, product.ID)
		}
		if item.ProductName == "" {
			item.ProductName = product.Name
		}
	}

	order.TotalAmount = total
	order.Status = domain.StatusPendingPayment
	order.OrderNo = s.generateOrderNo()
	order.PublicID = s.newPublicID()

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.refreshOrderCache(ctx, order)
	go s.publishOrderEvent(context.Background(), domain.EventOrderCreated, order)

	return order, nil
}

// PayOrder moves a pending order to paid. The guard is evaluated against the
// state read from the store immediately before the mutation.
func (s *OrderService) PayOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.EventOrderPaid, func(o *domain.Order) error {
		return o.Pay(s.now())
	})
}

// ShipOrder is restricted to operators; the actor arrives pre-validated.
func (s *OrderService) ShipOrder(ctx context.Context, id uint64, actor domain.Actor) (*domain.Order, error) {
	if actor.Role != domain.RoleOperator {
		return nil, ErrOperatorRequired
	}
	return s.transition(ctx, id, domain.EventOrderShipped, func(o *domain.Order) error {
		return o.Ship(s.now())
	})
}

func (s *OrderService) CompleteOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	return s.transition(ctx, id, domain.EventOrderCompleted, func(o *domain.Order) error {
		return o.Complete(s.now())
	})
}

// CancelOrder cancels a pending or paid order and returns every item's
// quantity to its product's stock. Reservation happens at creation for all
// orders, so restitution applies from both cancellable states.
func (s *OrderService) CancelOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := order.Cancel(); err != nil {
		return nil, err
	}

	items, err := s.orders.FindItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Cancel(ctx, order, items); err != nil {
		return nil, err
	}
	for _, item := range items {
		s.refreshProductCache(ctx, item.ProductID)
	}
	order.Items = items

	s.refreshOrderCache(ctx, order)
	go s.publishOrderEvent(context.Background(), domain.EventOrderCancelled, order)

	return order, nil
}

// OrderEdit carries the full set of editable order fields. A nil Items
// leaves the lines untouched; a non-nil slice replaces them, which is the
// only way an order's total amount ever changes after creation.
type OrderEdit struct {
	Address       string
	Receiver      string
	ReceiverPhone string
	Remark        string
	Items         []domain.OrderItem
}

// EditOrder rewrites a pending order's delivery details and, when new lines
// are supplied, swaps the items, recomputing the total and moving the stock
// reservations in one transaction. Orders that have been paid are frozen.
func (s *OrderService) EditOrder(ctx context.Context, id uint64, edit OrderEdit) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != domain.StatusPendingPayment {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotEditable, order.ID, order.Status)
	}

	oldItems, err := s.orders.FindItems(ctx, id)
	if err != nil {
		return nil, err
	}

	order.Address = edit.Address
	order.Receiver = edit.Receiver
	order.ReceiverPhone = edit.ReceiverPhone
	order.Remark = edit.Remark

	if edit.Items == nil {
		order.Items = oldItems
		if err := order.Validate(); err != nil {
			return nil, err
		}
		if err := s.orders.Update(ctx, order); err != nil {
			return nil, err
		}
	} else {
		newItems := edit.Items
		total, err := domain.ComputeTotals(newItems)
		if err != nil {
			return nil, err
		}
		for i := range newItems {
			item := &newItems[i]
			product, err := s.lookupProduct(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if product.Status != domain.ProductActive {
				return nil, fmt.Errorf("%w: product %d is inactive", ErrProductUnavailable, product.ID)
			}
			if item.ProductName == "" {
				item.ProductName = product.Name
			}
		}
		order.Items = newItems
		if err := order.Validate(); err != nil {
			return nil, err
		}
		order.TotalAmount = total
		if err := s.orders.UpdateWithItems(ctx, order, oldItems, newItems); err != nil {
			return nil, err
		}
		for _, item := range oldItems {
			s.refreshProductCache(ctx, item.ProductID)
		}
		for _, item := range newItems {
			s.refreshProductCache(ctx, item.ProductID)
		}
	}

	s.refreshOrderCache(ctx, order)
	return order, nil
}

// CountOrders returns the total number of orders. Dashboards poll this, so
// the value is cached on a short TTL instead of hitting the store each time.
func (s *OrderService) CountOrders(ctx context.Context) (int64, error) {
	n, err := cache.Get(ctx, s.cache, cache.OrderCountPolicy, "all", func(ctx context.Context) (*int64, error) {
		total, err := s.orders.Count(ctx, repository.OrderFilter{})
		if err != nil {
			return nil, err
		}
		return &total, nil
	})
	if err != nil {
		return 0, err
	}
	if n == nil {
		return 0, nil
	}
	return *n, nil
}

// RecentOrderCounts returns one entry per day for the trailing window, zero
// for days without orders, oldest first.
func (s *OrderService) RecentOrderCounts(ctx context.Context, days int) ([]repository.DailyOrderCount, error) {
	if days <= 0 {
		days = defaultStatsDays
	}
	counts, err := cache.Get(ctx, s.cache, cache.RecentOrdersPolicy, strconv.Itoa(days), func(ctx context.Context) (*[]repository.DailyOrderCount, error) {
		end := s.now()
		start := end.AddDate(0, 0, -days+1)
		startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		rows, err := s.orders.CountByDay(ctx, startDay, end)
		if err != nil {
			return nil, err
		}
		filled := fillMissingDays(rows, startDay, days)
		return &filled, nil
	})
	if err != nil {
		return nil, err
	}
	if counts == nil {
		return nil, nil
	}
	return *counts, nil
}

// fillMissingDays guarantees one entry per day in ascending date order.
func fillMissingDays(rows []repository.DailyOrderCount, startDay time.Time, days int) []repository.DailyOrderCount {
	byDate := make(map[string]int64, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row.Count
	}
	out := make([]repository.DailyOrderCount, 0, days)
	for i := 0; i < days; i++ {
		date := startDay.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, repository.DailyOrderCount{Date: date, Count: byDate[date]})
	}
	return out
}

func (s *OrderService) transition(ctx context.Context, id uint64, event string, apply func(*domain.Order) error) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if err := apply(order); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}
	s.refreshOrderCache(ctx, order)
	go s.publishOrderEvent(context.Background(), event, order)
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id uint64) (*domain.Order, error) {
	order, err := cache.Get(ctx, s.cache, cache.OrderPolicy, formatID(id), func(ctx context.Context) (*domain.Order, error) {
		return s.orders.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return s.attachItems(ctx, order)
}

// GetOrderByPublicID resolves the opaque client-facing identifier. The row is
// fetched from the store; the numeric-id cache entry is refreshed on the way
// out.
func (s *OrderService) GetOrderByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	order, err := s.orders.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	s.cache.Put(ctx, cache.OrderPolicy, formatID(order.ID), order)
	return s.attachItems(ctx, order)
}

func (s *OrderService) ListOrders(ctx context.Context, f repository.OrderFilter, p repository.Page) ([]domain.Order, int64, error) {
	orders, err := s.orders.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		items, err := s.orders.FindItems(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Items = items
	}
	return orders, total, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint64) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Evict(ctx, cache.OrderPolicy, formatID(id))
	s.cache.Evict(ctx, cache.UserOrdersPolicy, formatID(order.UserID))
	return nil
}

// WarmupOrderCache preloads recent orders into the cache at startup.
func (s *OrderService) WarmupOrderCache(ctx context.Context, limit int) error {
	orders, err := s.orders.List(ctx, repository.OrderFilter{}, repository.Page{Num: 1, Size: limit})
	if err != nil {
		return err
	}
	for i := range orders {
		s.cache.Put(ctx, cache.OrderPolicy, formatID(orders[i].ID), &orders[i])
	}
	log.Printf("order cache warmed with %d orders", len(orders))
	return nil
}

func (s *OrderService) attachItems(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	items, err := s.orders.FindItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *OrderService) lookupProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	product, err := cache.Get(ctx, s.cache, cache.ProductPolicy, formatID(id), func(ctx context.Context) (*domain.Product, error) {
		return s.products.FindByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", id, repository.ErrProductNotFound)
	}
	return product, nil
}

func (s *OrderService) refreshOrderCache(ctx context.Context, order *domain.Order) {
	s.cache.Put(ctx, cache.OrderPolicy, formatID(order.ID), order)
	s.cache.Evict(ctx, cache.UserOrdersPolicy, formatID(order.UserID))
}

func (s *OrderService) refreshProductCache(ctx context.Context, id uint64) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil || product == nil {
		return
	}
	s.cache.Put(ctx, cache.ProductPolicy, formatID(id), product)
}

func (s *OrderService) publishOrderEvent(ctx context.Context, event string, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event, domain.NewOrderEvent(order, s.now())); err != nil {
		log.Printf("publish %s for order %d: %v", event, order.ID, err)
	}
}

func (s *OrderService) generateOrderNo() string {
	return "ORD" + strconv.FormatInt(s.now().UnixMilli(), 10) + s.newPublicID()[:6]
}

func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}
