package http

import (
	"github.com/shopspring/decimal"

	"ordersystem/internal/domain"
	"ordersystem/internal/services"
)

type CreateOrderItemRequest struct {
	ProductID uint64          `json:"productId" binding:"required"`
	Price     decimal.Decimal `json:"price" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
}

type CreateOrderRequest struct {
	UserID        uint64                   `json:"userId" binding:"required"`
	Address       string                   `json:"address" binding:"required"`
	Receiver      string                   `json:"receiver" binding:"required"`
	ReceiverPhone string                   `json:"receiverPhone" binding:"required"`
	PaymentMethod int                      `json:"paymentMethod"`
	Remark        string                   `json:"remark"`
	Items         []CreateOrderItemRequest `json:"items" binding:"required,dive"`
}

func (r CreateOrderRequest) toOrder() *domain.Order {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{
			ProductID:    it.ProductID,
			ProductPrice: it.Price,
			Quantity:     it.Quantity,
		})
	}
	return &domain.Order{
		UserID:        r.UserID,
		Address:       r.Address,
		Receiver:      r.Receiver,
		ReceiverPhone: r.ReceiverPhone,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Remark:        r.Remark,
		Items:         items,
	}
}

type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int             `json:"stock"`
	Status      *int            `json:"status"`
	Category    string          `json:"category"`
}

func (r ProductRequest) toProduct() *domain.Product {
	status := domain.ProductActive
	if r.Status != nil {
		status = domain.ProductStatus(*r.Status)
	}
	return &domain.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Stock:       r.Stock,
		Status:      status,
		Category:    r.Category,
	}
}

type EditOrderRequest struct {
	Address       string                   `json:"address" binding:"required"`
	Receiver      string                   `json:"receiver" binding:"required"`
	ReceiverPhone string                   `json:"receiverPhone" binding:"required"`
	Remark        string                   `json:"remark"`
	Items         []CreateOrderItemRequest `json:"items"`
}

func (r EditOrderRequest) toEdit() services.OrderEdit {
	edit := services.OrderEdit{
		Address:       r.Address,
		Receiver:      r.Receiver,
		ReceiverPhone: r.ReceiverPhone,
		Remark:        r.Remark,
	}
	if r.Items != nil {
		items := make([]domain.OrderItem, 0, len(r.Items))
		for _, it := range r.Items {
			items = append(items, domain.OrderItem{
				ProductID:    it.ProductID,
				ProductPrice: it.Price,
				Quantity:     it.Quantity,
			})
		}
		edit.Items = items
	}
	return edit
}

type AddToCartRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

type CartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

type CartSelectedRequest struct {
	Selected *bool `json:"selected" binding:"required"`
}

type CheckoutRequest struct {
	Address       string `json:"address" binding:"required"`
	Receiver      string `json:"receiver" binding:"required"`
	ReceiverPhone string `json:"receiverPhone" binding:"required"`
	PaymentMethod int    `json:"paymentMethod"`
	Remark        string `json:"remark"`
}

func (r CheckoutRequest) toCheckout() services.CartCheckout {
	return services.CartCheckout{
		Address:       r.Address,
		Receiver:      r.Receiver,
		ReceiverPhone: r.ReceiverPhone,
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Remark:        r.Remark,
	}
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type ListResponse struct {
	Total int64 `json:"total"`
	Items any   `json:"items"`
}
