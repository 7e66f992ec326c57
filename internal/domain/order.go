package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus int

const (
	StatusPendingPayment OrderStatus = 0
	StatusPaid           OrderStatus = 1
	StatusShipped        OrderStatus = 2
	StatusCompleted      OrderStatus = 3
	StatusCancelled      OrderStatus = 4
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPendingPayment:
		return "pending_payment"
	case StatusPaid:
		return "paid"
	case StatusShipped:
		return "shipped"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

type PaymentMethod int

const (
	PaymentOther    PaymentMethod = 0
	PaymentAlipay   PaymentMethod = 1
	PaymentWechat   PaymentMethod = 2
	PaymentBankCard PaymentMethod = 3
)

var (
	ErrInvalidTransition = errors.New("invalid order state transition")
	ErrInvalidOrderItem  = errors.New("invalid order item")
	ErrInvalidOrder      = errors.New("invalid order")
)

var phonePattern = regexp.MustCompile(`^\d{11}$`)

type Order struct {
	ID            uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderNo       string          `json:"orderNo" gorm:"size:32;uniqueIndex"`
	PublicID      string          `json:"publicId" gorm:"column:public_id;size:36;uniqueIndex"`
	UserID        uint64          `json:"userId" gorm:"not null;index"`
	TotalAmount   decimal.Decimal `json:"totalAmount" gorm:"type:decimal(10,2);not null"`
	Status        OrderStatus     `json:"status" gorm:"not null;default:0;index"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"default:0"`
	PaymentTime   *time.Time      `json:"paymentTime,omitempty"`
	ShippingTime  *time.Time      `json:"shippingTime,omitempty"`
	CompleteTime  *time.Time      `json:"completeTime,omitempty"`
	Address       string          `json:"address" gorm:"size:255"`
	Receiver      string          `json:"receiver" gorm:"size:64"`
	ReceiverPhone string          `json:"receiverPhone" gorm:"size:16"`
	Remark        string          `json:"remark" gorm:"size:255"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`

	// Items are persisted in their own table and loaded explicitly.
	Items []OrderItem `json:"items,omitempty" gorm:"-"`
}

type OrderItem struct {
	ID           uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID      uint64          `json:"orderId" gorm:"not null;index"`
	ProductID    uint64          `json:"productId" gorm:"not null;index"`
	ProductName  string          `json:"productName" gorm:"size:128"`
	ProductPrice decimal.Decimal `json:"productPrice" gorm:"type:decimal(10,2);not null"`
	Quantity     int             `json:"quantity" gorm:"not null"`
	TotalPrice   decimal.Decimal `json:"totalPrice" gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updatedAt" gorm:"autoUpdateTime"`
}

// Validate checks the fields a creation request must supply. It does not
// touch totals; those are derived by ComputeTotals.
func (o *Order) Validate() error {
	if o.UserID == 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidOrder)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidOrder)
	}
	if o.Address == "" {
		return fmt.Errorf("%w: delivery address is required", ErrInvalidOrder)
	}
	if o.Receiver == "" {
		return fmt.Errorf("%w: receiver name is required", ErrInvalidOrder)
	}
	if !phonePattern.MatchString(o.ReceiverPhone) {
		return fmt.Errorf("%w: receiver phone must be 11 digits", ErrInvalidOrder)
	}
	return nil
}

// ComputeTotals fills in each item's total price and returns the order grand
// total. A line with a non-positive price or quantity fails the whole
// computation; nothing is skipped.
func ComputeTotals(items []OrderItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for i := range items {
		item := &items[i]
		if item.Quantity <= 0 {
			return decimal.Zero, fmt.Errorf("%w: product %d: quantity must be positive", ErrInvalidOrderItem, item.ProductID)
		}
		if !item.ProductPrice.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: product %d: price is missing or not positive", ErrInvalidOrderItem, item.ProductID)
		}
		item.TotalPrice = item.ProductPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.TotalPrice)
	}
	return total, nil
}

// Pay moves the order from pending payment to paid. The receiver is left
// untouched when the guard fails.
func (o *Order) Pay(now time.Time) error {
	if o.Status != StatusPendingPayment {
		return fmt.Errorf("%w: cannot pay order in state %s", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusPaid
	o.PaymentTime = &now
	return nil
}

func (o *Order) Ship(now time.Time) error {
	if o.Status != StatusPaid {
		return fmt.Errorf("%w: cannot ship order in state %s", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusShipped
	o.ShippingTime = &now
	return nil
}

func (o *Order) Complete(now time.Time) error {
	if o.Status != StatusShipped {
		return fmt.Errorf("%w: cannot complete order in state %s", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusCompleted
	o.CompleteTime = &now
	return nil
}

// Cancel is legal from pending payment and paid only. Stock is reserved at
// creation in both cases, so the caller owes restitution for every item
// whenever Cancel succeeds.
func (o *Order) Cancel() error {
	if o.Status != StatusPendingPayment && o.Status != StatusPaid {
		return fmt.Errorf("%w: cannot cancel order in state %s", ErrInvalidTransition, o.Status)
	}
	o.Status = StatusCancelled
	return nil
}
