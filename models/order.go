package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderReceived      OrderStatus = "Received"
	OrderPreparing     OrderStatus = "Preparing"
	OrderReadyToPickup OrderStatus = "ReadyToPickup"
	OrderCompleted     OrderStatus = "OrderCompleted"
	OrderCancelled     OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{
	OrderReceived, OrderPreparing, OrderReadyToPickup, OrderCompleted, OrderCancelled,
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Next is the following step of the kitchen flow, or "" when s has none.
func (s OrderStatus) Next() OrderStatus {
	switch s {
	case OrderReceived:
		return OrderPreparing
	case OrderPreparing:
		return OrderReadyToPickup
	case OrderReadyToPickup:
		return OrderCompleted
	}
	return ""
}

// StatusEntry is one line of an order's status history.
type StatusEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
}

type Order struct {
	ID                 string                                `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerID         uint                                  `gorm:"not null;index" json:"customerId"`
	Customer           Customer                              `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	RestaurantID       uint                                  `gorm:"not null;index" json:"restaurantId"`
	Restaurant         Restaurant                            `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CouponID           *uint                                 `json:"couponId,omitempty"`
	Coupon             *Coupon                               `gorm:"foreignKey:CouponID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	PaymentID          *string                               `gorm:"type:varchar(36);index" json:"paymentId,omitempty"`
	OrderDate          time.Time                             `gorm:"not null;index" json:"orderDate"`
	DeliveryDate       time.Time                             `gorm:"not null" json:"deliveryDate"`
	Status             OrderStatus                           `gorm:"type:varchar(20);not null;default:'Received'" json:"status"`
	StatusHistory      datatypes.JSONType[[]StatusEntry]     `json:"statusHistory"`
	TotalPrice         decimal.Decimal                       `gorm:"type:decimal(10,2);not null" json:"totalPrice"`
	DiscountValue      decimal.Decimal                       `gorm:"type:decimal(10,2);not null;default:0" json:"discountValue"`
	FinalPrice         decimal.Decimal                       `gorm:"type:decimal(10,2);not null" json:"finalPrice"`
	DiscountCode       string                                `gorm:"type:varchar(50)" json:"discountCode,omitempty"`
	DiscountKind       string                                `gorm:"type:varchar(20)" json:"discountKind,omitempty"`
	PickupInstructions string                                `gorm:"type:text" json:"pickupInstructions"`
	OrderItems         []OrderItem                           `gorm:"foreignKey:OrderID" json:"orderItems"`
	CreatedAt          time.Time                             `gorm:"not null" json:"createdAt"`
	UpdatedAt          time.Time                             `gorm:"not null" json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// History returns a copy of the status history.
func (o *Order) History() []StatusEntry {
	entries := o.StatusHistory.Data()
	out := make([]StatusEntry, len(entries))
	copy(out, entries)
	return out
}

// TransitionTo sets the status and records the change in the history.
func (o *Order) TransitionTo(status OrderStatus, note string, at time.Time) {
	o.Status = status
	o.StatusHistory = datatypes.NewJSONType(append(o.History(), StatusEntry{
		Status:    status,
		Timestamp: at,
		Note:      note,
	}))
}

// TotalItems is the number of units across all order lines.
func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.OrderItems {
		total += item.Quantity
	}
	return total
}
