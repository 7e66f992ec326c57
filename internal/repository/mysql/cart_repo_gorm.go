package mysql

import (
	"context"
	"errors"
	"log"

	"ordersystem/internal/domain"
	"ordersystem/internal/repository"

	"gorm.io/gorm"
)

type cartRepo struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Create(ctx context.Context, item *domain.CartItem) error {
	result := r.db.WithContext(ctx).Create(item)
	if result.Error != nil {
		log.Printf("cart create: %v", result.Error)
		return result.Error
	}
	return nil
}

func (r *cartRepo) Update(ctx context.Context, item *domain.CartItem) error {
	result := r.db.WithContext(ctx).Save(item)
	if result.Error != nil {
		log.Printf("cart update: %v", result.Error)
		return result.Error
	}
	return nil
}

func (r *cartRepo) FindByID(ctx context.Context, id uint64) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("cart find by id: %v", err)
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) FindByUserAndProduct(ctx context.Context, userID, productID uint64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("cart find by user and product: %v", err)
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) ListByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		log.Printf("cart list by user: %v", err)
		return nil, err
	}
	return items, nil
}

func (r *cartRepo) ListSelectedByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND selected = ?", userID, true).
		Order("id").
		Find(&items).Error
	if err != nil {
		log.Printf("cart list selected by user: %v", err)
		return nil, err
	}
	return items, nil
}

func (r *cartRepo) CountByUser(ctx context.Context, userID uint64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.CartItem{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		log.Printf("cart count by user: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *cartRepo) SetSelectedByUser(ctx context.Context, userID uint64, selected bool) error {
	result := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("user_id = ?", userID).
		Update("selected", selected)
	if result.Error != nil {
		log.Printf("cart set selected by user: %v", result.Error)
		return result.Error
	}
	return nil
}

func (r *cartRepo) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&domain.CartItem{}, id)
	if result.Error != nil {
		log.Printf("cart delete: %v", result.Error)
		return result.Error
	}
	return nil
}

func (r *cartRepo) Clear(ctx context.Context, userID uint64) error {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{})
	if result.Error != nil {
		log.Printf("cart clear: %v", result.Error)
		return result.Error
	}
	return nil
}

func (r *cartRepo) ClearSelected(ctx context.Context, userID uint64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND selected = ?", userID, true).
		Delete(&domain.CartItem{})
	if result.Error != nil {
		log.Printf("cart clear selected: %v", result.Error)
		return result.Error
	}
	return nil
}
