package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCartItem covers malformed cart mutations.
var ErrInvalidCartItem = errors.New("invalid cart item")

// CartItem is one product a user has set aside for a future order. A user
// holds at most one row per product; adding the same product again merges
// into the existing row.
type CartItem struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `json:"userId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	ProductID uint64    `json:"productId" gorm:"not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Selected  bool      `json:"selected" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	// Product is attached on reads for display; it is not a stored column.
	Product *Product `json:"product,omitempty" gorm:"-"`
}

func (c *CartItem) Validate() error {
	if c.UserID == 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidCartItem)
	}
	if c.ProductID == 0 {
		return fmt.Errorf("%w: product id is required", ErrInvalidCartItem)
	}
	if c.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidCartItem)
	}
	return nil
}
