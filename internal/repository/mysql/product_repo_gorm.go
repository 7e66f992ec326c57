package mysql

import (
	"context"
	"errors"
	"fmt"
	"log"

	"ordersystem/internal/domain"
	"ordersystem/internal/repository"

	"gorm.io/gorm"
)

type productRepo struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).Create(product)
	if result.Error != nil {
		log.Printf("product create: %v", result.Error)
		return result.Error
	}
	return nil
}

// Update writes the editable columns only. Stock moves through AdjustStock
// and the image through UpdateImage, so neither is touched here even when the
// passed entity carries them.
func (r *productRepo) Update(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).Model(product).
		Select("name", "description", "price", "status", "category").
		Updates(product)
	if result.Error != nil {
		log.Printf("product update: %v", result.Error)
		return result.Error
	}
	return nil
}

func (r *productRepo) UpdateImage(ctx context.Context, id uint64, image []byte) error {
	result := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("image", image)
	if result.Error != nil {
		log.Printf("product image update: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, repository.ErrProductNotFound)
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("product find by id: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, f repository.ProductFilter, p repository.Page) ([]domain.Product, error) {
	var out []domain.Product
	q := r.db.WithContext(ctx)
	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if err := q.Order("id").Limit(p.Limit()).Offset(p.Offset()).Find(&out).Error; err != nil {
		log.Printf("product list: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *productRepo) AdjustStock(ctx context.Context, id uint64, delta int) error {
	return adjustStockTx(r.db.WithContext(ctx), id, delta)
}

func (r *productRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if result.Error != nil {
		log.Printf("product delete: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, repository.ErrProductNotFound)
	}
	return nil
}

// adjustStockTx applies a signed stock delta with a single conditional
// update, so two concurrent adjustments on one product cannot interleave a
// read-modify-write and lose an update. Zero affected rows means the product
// is missing or the delta would take stock below zero.
func adjustStockTx(tx *gorm.DB, productID uint64, delta int) error {
	result := tx.Model(&domain.Product{}).
		Where("id = ? AND stock + ? >= 0", productID, delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		log.Printf("product stock adjust: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&domain.Product{}).Where("id = ?", productID).Count(&n).Error; err != nil {
			log.Printf("product stock adjust lookup: %v", err)
			return err
		}
		if n == 0 {
			return fmt.Errorf("product %d: %w", productID, repository.ErrProductNotFound)
		}
		return fmt.Errorf("product %d: %w", productID, repository.ErrInsufficientStock)
	}
	return nil
}
