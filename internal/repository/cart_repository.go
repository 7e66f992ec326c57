package repository

import (
	"context"

	"ordersystem/internal/domain"
)

type CartRepository interface {
	Create(ctx context.Context, item *domain.CartItem) error
	Update(ctx context.Context, item *domain.CartItem) error
	FindByID(ctx context.Context, id uint64) (*domain.CartItem, error)
	FindByUserAndProduct(ctx context.Context, userID, productID uint64) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error)
	ListSelectedByUser(ctx context.Context, userID uint64) ([]domain.CartItem, error)
	CountByUser(ctx context.Context, userID uint64) (int64, error)
	// SetSelectedByUser flips the selected flag on every row of one user's
	// cart. Touching zero rows is not an error.
	SetSelectedByUser(ctx context.Context, userID uint64, selected bool) error
	Delete(ctx context.Context, id uint64) error
	// Clear removes every row of the user's cart; ClearSelected removes only
	// the selected ones, used after a checkout.
	Clear(ctx context.Context, userID uint64) error
	ClearSelected(ctx context.Context, userID uint64) error
}
