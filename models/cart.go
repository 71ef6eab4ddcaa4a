package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartActive    CartStatus = "ACTIVE"
	CartCompleted CartStatus = "COMPLETED"
)

// Cart collects a customer's items until an order is placed. Version is
// bumped on every write and guards the ACTIVE to COMPLETED transition.
type Cart struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CustomerID  uint            `gorm:"not null;index:idx_cart_customer_status" json:"customerId"`
	Customer    Customer        `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Status      CartStatus      `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_cart_customer_status" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"totalAmount"`
	Version     int             `gorm:"not null;default:0" json:"version"`
	CartItems   []CartItem      `gorm:"foreignKey:CartID" json:"cartItems"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updatedAt"`
}

type CartItem struct {
	ID                  uint            `gorm:"primaryKey" json:"id"`
	CartID              uint            `gorm:"not null;index" json:"cartId"`
	MenuItemID          uint            `gorm:"not null" json:"menuItemId"`
	MenuItem            MenuItem        `gorm:"foreignKey:MenuItemID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	VariantID           *uint           `json:"variantId,omitempty"`
	Variant             *Variant        `gorm:"foreignKey:VariantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Quantity            int             `gorm:"not null" json:"quantity"`
	Price               decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	SpecialInstructions string          `gorm:"type:text" json:"specialInstructions"`
	CreatedAt           time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updatedAt"`
}

// ComputeSubtotal refreshes Subtotal from Price and Quantity.
func (i *CartItem) ComputeSubtotal() {
	i.Subtotal = i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// SumSubtotals is the full resum used when a cart's items are replaced.
func SumSubtotals(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal)
	}
	return total
}
