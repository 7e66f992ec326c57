package repository

import (
	"context"
	"errors"

	"ordersystem/internal/domain"
)

var (
	// ErrInsufficientStock is returned when a stock adjustment would take a
	// product below zero. The product row is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductNotFound is returned by stock adjustments against a missing
	// product. Plain reads report absence as (nil, nil) instead.
	ErrProductNotFound = errors.New("product not found")
)

type ProductFilter struct {
	Name     string
	Category string
	Status   *domain.ProductStatus
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	UpdateImage(ctx context.Context, id uint64, image []byte) error
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	List(ctx context.Context, f ProductFilter, p Page) ([]domain.Product, error)
	// AdjustStock applies a signed delta atomically, refusing any result
	// below zero.
	AdjustStock(ctx context.Context, id uint64, delta int) error
	Delete(ctx context.Context, id uint64) error
}
