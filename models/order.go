package models

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusPending   OrderStatus = "PENDING"   // Created, awaiting payment
	OrderStatusPaid      OrderStatus = "PAID"      // Gateway confirmed the payment
	OrderStatusShipped   OrderStatus = "SHIPPED"   // Handed to the courier
	OrderStatusDelivered OrderStatus = "DELIVERED" // Customer received the parts
	OrderStatusCancelled OrderStatus = "CANCELLED" // Payment failed, expired or cancelled by admin

	PaymentMethodStripe      PaymentMethod = "STRIPE"
	PaymentMethodPayTR       PaymentMethod = "PAYTR"
	PaymentMethodContactForm PaymentMethod = "CONTACT_FORM"
)

var ErrInvalidOrderStatus = errors.New("invalid order status")

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

// ParseOrderStatus accepts any letter case.
func ParseOrderStatus(status string) (OrderStatus, error) {
	switch s := OrderStatus(strings.ToUpper(strings.TrimSpace(status))); s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return s, nil
	default:
		return "", ErrInvalidOrderStatus
	}
}

// CanTransitionTo reports whether next is a legal successor of s.
// Re-applying the current status is not a transition; callers treat it as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HoldsStock reports whether the order's items are still reserved from inventory.
func (s OrderStatus) HoldsStock() bool {
	return s == OrderStatusPending || s == OrderStatusPaid
}

// RevenueStatuses are the statuses counted as earned revenue on the dashboard.
var RevenueStatuses = []OrderStatus{OrderStatusPaid, OrderStatusDelivered}

type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	OrderNumber     string        `gorm:"uniqueIndex;not null" json:"orderNumber"`
	UserID          string        `gorm:"index;not null" json:"userId"`
	User            *User         `json:"user,omitempty"`
	Status          OrderStatus   `gorm:"type:VARCHAR(20);default:'PENDING';index" json:"status"`
	Subtotal        float64       `json:"subtotal"`
	Total           float64       `json:"total"`
	CustomerName    string        `json:"customerName"`
	CustomerEmail   string        `json:"customerEmail"`
	CustomerPhone   string        `json:"customerPhone"`
	ShippingAddress string        `json:"shippingAddress"`
	ShippingCity    string        `json:"shippingCity"`
	ShippingZip     string        `json:"shippingZip"`
	ShippingCountry string        `gorm:"default:'Azerbaijan'" json:"shippingCountry"`
	Notes           string        `json:"notes"`
	PaymentMethod   PaymentMethod `gorm:"type:VARCHAR(20)" json:"paymentMethod"`
	PaymentRef      string        `gorm:"index" json:"paymentRef"` // Stripe session id or PayTR token
	Items           []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

type OrderItem struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	OrderID   uint     `gorm:"index" json:"orderId"`
	ProductID uint     `gorm:"index" json:"productId"`
	Product   *Product `json:"product,omitempty"`
	Title     string   `json:"title"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"` // list price at purchase time
	Discount  float64  `json:"discount"`
	Total     float64  `json:"total"`
}

// UnitPrice is the discounted price actually charged per unit.
func (i OrderItem) UnitPrice() float64 {
	return Product{Price: i.Price, Discount: i.Discount}.FinalPrice()
}
