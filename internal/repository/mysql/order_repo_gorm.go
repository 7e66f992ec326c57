package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"ordersystem/internal/domain"
	"ordersystem/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// Create persists the order and its items and decrements stock per item in a
// single transaction. A failed reservation rolls back the order so no order
// is ever accepted without its inventory.
func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			log.Printf("order create: %v", err)
			return err
		}
		for i := range order.Items {
			order.Items[i].OrderID = order.ID
		}
		if err := tx.Create(&order.Items).Error; err != nil {
			log.Printf("order items create: %v", err)
			return err
		}
		for _, item := range order.Items {
			if err := adjustStockTx(tx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// Cancel is the inverse of Create's reservation: the status write and every
// restock share one transaction and roll back together.
func (r *orderRepo) Cancel(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			log.Printf("order cancel: %v", err)
			return err
		}
		for _, item := range items {
			if err := adjustStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateWithItems rewrites an order together with its lines. The old lines'
// reservations are returned before the new ones are taken, so editing an
// order can never double-count a product present in both versions.
func (r *orderRepo) UpdateWithItems(ctx context.Context, order *domain.Order, oldItems, newItems []domain.OrderItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			log.Printf("order edit: %v", err)
			return err
		}
		for _, item := range oldItems {
			if err := adjustStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&domain.OrderItem{}).Error; err != nil {
			log.Printf("order edit items delete: %v", err)
			return err
		}
		for i := range newItems {
			newItems[i].ID = 0
			newItems[i].OrderID = order.ID
		}
		if err := tx.Create(&newItems).Error; err != nil {
			log.Printf("order edit items create: %v", err)
			return err
		}
		for _, item := range newItems {
			if err := adjustStockTx(tx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *orderRepo) Update(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Save(order)
	if result.Error != nil {
		log.Printf("order update: %v", result.Error)
		return result.Error
	}
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("order find by id: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByPublicID(ctx context.Context, publicID string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("order find by public id: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindItems(ctx context.Context, orderID uint64) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&items).Error; err != nil {
		log.Printf("order items find: %v", err)
		return nil, err
	}
	return items, nil
}

func (r *orderRepo) List(ctx context.Context, f repository.OrderFilter, p repository.Page) ([]domain.Order, error) {
	var out []domain.Order
	q := applyOrderFilter(r.db.WithContext(ctx), f)
	if err := q.Order("created_at DESC").Limit(p.Limit()).Offset(p.Offset()).Find(&out).Error; err != nil {
		log.Printf("order list: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) Count(ctx context.Context, f repository.OrderFilter) (int64, error) {
	var n int64
	q := applyOrderFilter(r.db.WithContext(ctx).Model(&domain.Order{}), f)
	if err := q.Count(&n).Error; err != nil {
		log.Printf("order count: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *orderRepo) CountItemsByProduct(ctx context.Context, productID uint64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.OrderItem{}).Where("product_id = ?", productID).Count(&n).Error; err != nil {
		log.Printf("order items count by product: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *orderRepo) CountByDay(ctx context.Context, start, end time.Time) ([]repository.DailyOrderCount, error) {
	var rows []repository.DailyOrderCount
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') AS order_date, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("order_date").
		Scan(&rows).Error
	if err != nil {
		log.Printf("order count by day: %v", err)
		return nil, err
	}
	return rows, nil
}

func (r *orderRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
			log.Printf("order items delete: %v", err)
			return err
		}
		if err := tx.Delete(&domain.Order{}, id).Error; err != nil {
			log.Printf("order delete: %v", err)
			return err
		}
		return nil
	})
}

func applyOrderFilter(q *gorm.DB, f repository.OrderFilter) *gorm.DB {
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.PublicID != "" {
		q = q.Where("public_id = ?", f.PublicID)
	}
	return q
}
