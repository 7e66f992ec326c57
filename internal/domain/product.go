package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ProductStatus int

const (
	ProductInactive ProductStatus = 0
	ProductActive   ProductStatus = 1
)

var ErrInvalidProduct = errors.New("invalid product")

type Product struct {
	ID          uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"size:128;not null;index"`
	Description string          `json:"description" gorm:"size:512"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	Status      ProductStatus   `json:"status" gorm:"not null;default:1"`
	Category    string          `json:"category" gorm:"size:64;index"`
	Image       []byte          `json:"-" gorm:"type:mediumblob"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidProduct)
	}
	return nil
}
