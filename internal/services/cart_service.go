package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ordersystem/internal/cache"
	"ordersystem/internal/domain"
	"ordersystem/internal/repository"
)

var (
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrEmptySelection   = errors.New("no cart items selected")
)

// OrderPlacer is the slice of the order service a cart checkout needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	orders   OrderPlacer
	cache    *cache.Accessor
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, orders OrderPlacer, accessor *cache.Accessor) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		orders:   orders,
		cache:    accessor,
	}
}

// AddToCart puts quantity units of a product into the user's cart, merging
// with an existing row for the same product. The resulting quantity is
// capped at the product's current stock rather than refused.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidCartItem)
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", productID, repository.ErrProductNotFound)
	}
	if product.Status != domain.ProductActive {
		return nil, fmt.Errorf("%w: product %d is inactive", ErrProductUnavailable, productID)
	}
	if product.Stock <= 0 {
		return nil, fmt.Errorf("%w: product %d is out of stock", ErrProductUnavailable, productID)
	}

	existing, err := s.carts.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Quantity = clampToStock(existing.Quantity+quantity, product.Stock)
		existing.Selected = true
		if err := s.carts.Update(ctx, existing); err != nil {
			return nil, err
		}
		s.evictCart(ctx, userID)
		return existing, nil
	}

	item := &domain.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  clampToStock(quantity, product.Stock),
		Selected:  true,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.carts.Create(ctx, item); err != nil {
		return nil, err
	}
	s.evictCart(ctx, userID)
	return item, nil
}

// UpdateQuantity sets the row's quantity, capped at the product's stock.
func (s *CartService) UpdateQuantity(ctx context.Context, id uint64, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidCartItem)
	}
	item, err := s.carts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("cart item %d: %w", id, ErrCartItemNotFound)
	}
	product, err := s.products.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Status != domain.ProductActive {
		return nil, fmt.Errorf("%w: product %d is gone or inactive", ErrProductUnavailable, item.ProductID)
	}
	item.Quantity = clampToStock(quantity, product.Stock)
	if err := s.carts.Update(ctx, item); err != nil {
		return nil, err
	}
	s.evictCart(ctx, item.UserID)
	return item, nil
}

func (s *CartService) SetSelected(ctx context.Context, id uint64, selected bool) (*domain.CartItem, error) {
	item, err := s.carts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("cart item %d: %w", id, ErrCartItemNotFound)
	}
	item.Selected = selected
	if err := s.carts.Update(ctx, item); err != nil {
		return nil, err
	}
	s.evictCart(ctx, item.UserID)
	return item, nil
}

func (s *CartService) SelectAll(ctx context.Context, userID uint64, selected bool) error {
	if err := s.carts.SetSelectedByUser(ctx, userID, selected); err != nil {
		return err
	}
	s.evictCart(ctx, userID)
	return nil
}

func (s *CartService) RemoveItem(ctx context.Context, id uint64) error {
	item, err := s.carts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("cart item %d: %w", id, ErrCartItemNotFound)
	}
	if err := s.carts.Delete(ctx, id); err != nil {
		return err
	}
	s.evictCart(ctx, item.UserID)
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uint64) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return err
	}
	s.evictCart(ctx, userID)
	return nil
}

// ListCart reads the user's cart through the cache and attaches a product
// snapshot to each row for display.
func (s *CartService) ListCart(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	items, err := cache.Get(ctx, s.cache, cache.UserCartPolicy, formatID(userID), func(ctx context.Context) (*[]domain.CartItem, error) {
		list, err := s.carts.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &list, nil
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		return nil, nil
	}
	return s.attachProducts(ctx, *items)
}

func (s *CartService) CountItems(ctx context.Context, userID uint64) (int64, error) {
	return s.carts.CountByUser(ctx, userID)
}

// CartCheckout is the delivery information a checkout supplies; everything
// else about the order comes from the selected cart rows.
type CartCheckout struct {
	Address       string
	Receiver      string
	ReceiverPhone string
	PaymentMethod domain.PaymentMethod
	Remark        string
}

// Checkout turns the user's selected cart rows into an order. Prices are
// snapshotted from the catalog at checkout time; the selected rows are
// removed once the order is accepted.
func (s *CartService) Checkout(ctx context.Context, userID uint64, delivery CartCheckout) (*domain.Order, error) {
	selected, err := s.carts.ListSelectedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}

	items := make([]domain.OrderItem, 0, len(selected))
	for _, row := range selected {
		product, err := s.products.FindByID(ctx, row.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("product %d: %w", row.ProductID, repository.ErrProductNotFound)
		}
		items = append(items, domain.OrderItem{
			ProductID:    row.ProductID,
			ProductName:  product.Name,
			ProductPrice: product.Price,
			Quantity:     row.Quantity,
		})
	}

	order := &domain.Order{
		UserID:        userID,
		Address:       delivery.Address,
		Receiver:      delivery.Receiver,
		ReceiverPhone: delivery.ReceiverPhone,
		PaymentMethod: delivery.PaymentMethod,
		Remark:        delivery.Remark,
		Items:         items,
	}
	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	// The order is already durable; a leftover cart row is an annoyance,
	// not a correctness problem.
	if err := s.carts.ClearSelected(ctx, userID); err != nil {
		log.Printf("clear selected cart rows for user %d: %v", userID, err)
	}
	s.evictCart(ctx, userID)
	return created, nil
}

func (s *CartService) attachProducts(ctx context.Context, items []domain.CartItem) ([]domain.CartItem, error) {
	for i := range items {
		productID := items[i].ProductID
		product, err := cache.Get(ctx, s.cache, cache.ProductPolicy, formatID(productID), func(ctx context.Context) (*domain.Product, error) {
			return s.products.FindByID(ctx, productID)
		})
		if err != nil {
			return nil, err
		}
		items[i].Product = product
	}
	return items, nil
}

func (s *CartService) evictCart(ctx context.Context, userID uint64) {
	s.cache.Evict(ctx, cache.UserCartPolicy, formatID(userID))
}

func clampToStock(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}

var _ OrderPlacer = (*OrderService)(nil)
