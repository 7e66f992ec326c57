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

// ErrProductReferenced is returned when deleting a product that order items
// still reference.
var ErrProductReferenced = errors.New("product is referenced by existing orders")

type ProductService struct {
	products repository.ProductRepository
	orders   repository.OrderRepository
	cache    *cache.Accessor
}

func NewProductService(products repository.ProductRepository, orders repository.OrderRepository, accessor *cache.Accessor) *ProductService {
	return &ProductService{
		products: products,
		orders:   orders,
		cache:    accessor,
	}
}

func (s *ProductService) AddProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.cache.Put(ctx, cache.ProductPolicy, formatID(product.ID), product)
	return product, nil
}

// UpdateProduct replaces the descriptive fields of an existing product. Stock
// only ever moves through AdjustStock, and the image through UpdateImage, so
// the stored row is read first and only the editable fields are copied over.
func (s *ProductService) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	existing, err := s.products.FindByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("product %d: %w", product.ID, repository.ErrProductNotFound)
	}
	existing.Name = product.Name
	existing.Description = product.Description
	existing.Price = product.Price
	existing.Status = product.Status
	existing.Category = product.Category
	if err := s.products.Update(ctx, existing); err != nil {
		return nil, err
	}
	s.cache.Put(ctx, cache.ProductPolicy, formatID(existing.ID), existing)
	return existing, nil
}

// DeleteProduct refuses to delete while any order item references the
// product.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint64) error {
	n, err := s.orders.CountItemsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("product %d: %w", id, ErrProductReferenced)
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Evict(ctx, cache.ProductPolicy, formatID(id))
	return nil
}

func (s *ProductService) GetProductByID(ctx context.Context, id uint64) (*domain.Product, error) {
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

func (s *ProductService) ListProducts(ctx context.Context, f repository.ProductFilter, p repository.Page) ([]domain.Product, error) {
	return s.products.List(ctx, f, p)
}

// AdjustStock applies a signed delta and refreshes the product cache entry.
// Used with negative deltas for reservations and positive ones for
// restitution and manual restock.
func (s *ProductService) AdjustStock(ctx context.Context, id uint64, delta int) (*domain.Product, error) {
	if err := s.products.AdjustStock(ctx, id, delta); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product != nil {
		s.cache.Put(ctx, cache.ProductPolicy, formatID(id), product)
	}
	return product, nil
}

func (s *ProductService) GetProductImage(ctx context.Context, id uint64) ([]byte, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("product %d: %w", id, repository.ErrProductNotFound)
	}
	return product.Image, nil
}

func (s *ProductService) UpdateProductImage(ctx context.Context, id uint64, image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: image payload is empty", domain.ErrInvalidProduct)
	}
	if err := s.products.UpdateImage(ctx, id, image); err != nil {
		return err
	}
	product, err := s.products.FindByID(ctx, id)
	if err == nil && product != nil {
		s.cache.Put(ctx, cache.ProductPolicy, formatID(id), product)
	}
	return nil
}

// WarmupProductCache preloads active products into the cache at startup.
func (s *ProductService) WarmupProductCache(ctx context.Context, limit int) error {
	active := domain.ProductActive
	products, err := s.products.List(ctx, repository.ProductFilter{Status: &active}, repository.Page{Num: 1, Size: limit})
	if err != nil {
		return err
	}
	for i := range products {
		s.cache.Put(ctx, cache.ProductPolicy, formatID(products[i].ID), &products[i])
	}
	log.Printf("product cache warmed with %d products", len(products))
	return nil
}
