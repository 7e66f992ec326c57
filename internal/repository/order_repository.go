package repository

import (
	"context"
	"time"

	"ordersystem/internal/domain"
)

// OrderFilter narrows order listings. Zero values mean "any".
type OrderFilter struct {
	UserID   uint64
	Status   *domain.OrderStatus
	PublicID string
}

type Page struct {
	Num  int
	Size int
}

func (p Page) Offset() int {
	num := p.Num
	if num < 1 {
		num = 1
	}
	return (num - 1) * p.Limit()
}

func (p Page) Limit() int {
	if p.Size < 1 {
		return 10
	}
	return p.Size
}

// DailyOrderCount is one day's created-order total, for the statistics
// endpoints. Date is a plain yyyy-mm-dd string.
type DailyOrderCount struct {
	Date  string `json:"date" gorm:"column:order_date"`
	Count int64  `json:"count"`
}

type OrderRepository interface {
	// Create persists the order with its items and reserves stock for every
	// item in one transaction. Insufficient stock rolls the whole unit back.
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	// Cancel persists the cancelled order and returns each item's quantity
	// to its product's stock in one transaction, so a failed restitution
	// never leaves a cancelled order holding its reservation.
	Cancel(ctx context.Context, order *domain.Order, items []domain.OrderItem) error
	// UpdateWithItems saves the order and replaces its item rows, returning
	// the old reservations and taking the new ones in one transaction.
	UpdateWithItems(ctx context.Context, order *domain.Order, oldItems, newItems []domain.OrderItem) error
	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByPublicID(ctx context.Context, publicID string) (*domain.Order, error)
	FindItems(ctx context.Context, orderID uint64) ([]domain.OrderItem, error)
	List(ctx context.Context, f OrderFilter, p Page) ([]domain.Order, error)
	Count(ctx context.Context, f OrderFilter) (int64, error)
	CountItemsByProduct(ctx context.Context, productID uint64) (int64, error)
	// CountByDay groups created orders per calendar day inside the range.
	// Days without orders produce no row.
	CountByDay(ctx context.Context, start, end time.Time) ([]DailyOrderCount, error)
	// Delete removes the order and its items.
	Delete(ctx context.Context, id uint64) error
}
