package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaceOrderRequest is a validated order placement. Dates are pointers so a
// missing value can be told apart from the zero time.
type PlaceOrderRequest struct {
	CustomerID         uint
	RestaurantID       uint
	PaymentMethod      models.PaymentMethod
	CouponCode         string
	OrderDate          *time.Time
	DeliveryDate       *time.Time
	PickupInstructions string
}

func (r PlaceOrderRequest) Validate() error {
	switch {
	case r.CustomerID == 0:
		return apperrors.InvalidOrder("Customer ID is required")
	case r.RestaurantID == 0:
		return apperrors.InvalidOrder("Restaurant ID is required")
	case r.PaymentMethod == "":
		return apperrors.InvalidOrder("Payment method is required")
	case !r.PaymentMethod.Valid():
		return apperrors.InvalidOrder("Invalid payment method: %s. Valid values are CASH, UPI", r.PaymentMethod)
	case r.OrderDate == nil || r.OrderDate.IsZero():
		return apperrors.InvalidOrder("Order date is required")
	case r.DeliveryDate == nil || r.DeliveryDate.IsZero():
		return apperrors.InvalidOrder("Delivery date is required")
	case r.DeliveryDate.Before(*r.OrderDate):
		return apperrors.InvalidOrder("Delivery date cannot be before order date")
	}
	return nil
}

// OrderResponse is the public view of an order with its payment.
type OrderResponse struct {
	OrderID            string               `json:"orderId"`
	CustomerID         uint                 `json:"customerId"`
	CustomerName       string               `json:"customerName"`
	RestaurantID       uint                 `json:"restaurantId"`
	RestaurantName     string               `json:"restaurantName"`
	PaymentID          string               `json:"paymentId"`
	PaymentMethod      models.PaymentMethod `json:"paymentMethod"`
	PaymentStatus      models.PaymentStatus `json:"paymentStatus"`
	OrderDate          time.Time            `json:"orderDate"`
	DeliveryDate       time.Time            `json:"deliveryDate"`
	OrderStatus        models.OrderStatus   `json:"orderStatus"`
	TotalPrice         decimal.Decimal      `json:"totalPrice"`
	DiscountValue      decimal.Decimal      `json:"discountValue"`
	FinalPrice         decimal.Decimal      `json:"finalPrice"`
	CouponCode         string               `json:"couponCode,omitempty"`
	DiscountKind       string               `json:"discountKind,omitempty"`
	PickupInstructions string               `json:"pickupInstructions"`
	TotalItems         int                  `json:"totalItems"`
	OrderItems         []models.OrderItem   `json:"orderItems"`
	StatusHistory      []models.StatusEntry `json:"statusHistory"`
}

func newOrderResponse(order *models.Order, payment *models.Payment) *OrderResponse {
	resp := &OrderResponse{
		OrderID:            order.ID,
		CustomerID:         order.CustomerID,
		CustomerName:       order.Customer.FullName,
		RestaurantID:       order.RestaurantID,
		RestaurantName:     order.Restaurant.Name,
		OrderDate:          order.OrderDate,
		DeliveryDate:       order.DeliveryDate,
		OrderStatus:        order.Status,
		TotalPrice:         order.TotalPrice,
		DiscountValue:      order.DiscountValue,
		FinalPrice:         order.FinalPrice,
		CouponCode:         order.DiscountCode,
		DiscountKind:       order.DiscountKind,
		PickupInstructions: order.PickupInstructions,
		TotalItems:         order.TotalItems(),
		OrderItems:         order.OrderItems,
		StatusHistory:      order.History(),
	}
	if resp.OrderItems == nil {
		resp.OrderItems = []models.OrderItem{}
	}
	if payment != nil {
		resp.PaymentID = payment.ID
		resp.PaymentMethod = payment.PaymentMethod
		resp.PaymentStatus = payment.Status
	} else if order.PaymentID != nil {
		resp.PaymentID = *order.PaymentID
	}
	return resp
}

// OrderServiceDeps wires the collaborators of OrderService.
type OrderServiceDeps struct {
	Carts        *CartService
	Payments     *PaymentService
	Discounts    *DiscountService
	Availability *AvailabilityService
	Archiver     *ArchiveService
	// StrictDiscounts rejects orders whose promotional code cannot be
	// applied. When false such orders go through without a discount.
	StrictDiscounts bool
}

// OrderService turns carts into orders and manages their lifecycle.
type OrderService struct {
	db              *gorm.DB
	carts           *CartService
	payments        *PaymentService
	discounts       *DiscountService
	availability    *AvailabilityService
	archiver        *ArchiveService
	strictDiscounts bool
}

func NewOrderService(db *gorm.DB, deps OrderServiceDeps) *OrderService {
	return &OrderService{
		db:              db,
		carts:           deps.Carts,
		payments:        deps.Payments,
		discounts:       deps.Discounts,
		availability:    deps.Availability,
		archiver:        deps.Archiver,
		strictDiscounts: deps.StrictDiscounts,
	}
}

// PlaceOrder converts the customer's active cart into an order. Every write
// happens in one transaction; archival runs after commit and cannot fail
// the request.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := utils.InfoLogger.WithFields(logrus.Fields{
		"customerId":   req.CustomerID,
		"restaurantId": req.RestaurantID,
	})

	var orderID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, req.CustomerID).Error; err != nil {
			return apperrors.FromLookup(err, "Customer", "id", req.CustomerID)
		}
		var restaurant models.Restaurant
		if err := tx.First(&restaurant, req.RestaurantID).Error; err != nil {
			return apperrors.FromLookup(err, "Restaurant", "id", req.RestaurantID)
		}

		if err := s.availability.WithTx(tx).EnsureOpen(ctx, restaurant.ID, *req.DeliveryDate); err != nil {
			return err
		}

		carts := s.carts.WithTx(tx)
		cart, err := carts.ValidateHasItems(ctx, customer.ID)
		if err != nil {
			return err
		}
		total := models.SumSubtotals(cart.CartItems)

		discount, err := s.resolveDiscount(ctx, tx, req.CouponCode, &customer, total)
		if err != nil {
			return err
		}
		discountValue := decimal.Zero
		if discount != nil {
			discountValue = discount.Amount
		}
		finalPrice := total.Sub(discountValue)

		payment, err := s.payments.WithTx(tx).CreatePayment(ctx, customer.ID, finalPrice, req.PaymentMethod)
		if err != nil {
			return err
		}

		order := models.Order{
			CustomerID:         customer.ID,
			RestaurantID:       restaurant.ID,
			PaymentID:          &payment.ID,
			OrderDate:          *req.OrderDate,
			DeliveryDate:       *req.DeliveryDate,
			TotalPrice:         total,
			DiscountValue:      discountValue,
			FinalPrice:         finalPrice,
			PickupInstructions: req.PickupInstructions,
		}
		if discount != nil {
			order.DiscountCode = discount.Code
			order.DiscountKind = discount.Kind
			if discount.Coupon != nil {
				order.CouponID = &discount.Coupon.ID
			}
		}
		order.TransitionTo(models.OrderReceived, "Order received", time.Now())
		for _, ci := range cart.CartItems {
			order.OrderItems = append(order.OrderItems, models.SnapshotCartItem(ci))
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if discount != nil && discount.Referral != nil {
			if err := s.discounts.WithTx(tx).MarkReferralUsed(ctx, discount.Referral, &customer); err != nil {
				return err
			}
		}

		if err := carts.CompleteCart(ctx, cart); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		log.WithField("error", err.Error()).Warn("order placement rejected")
		return nil, err
	}

	resp, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"orderId":    resp.OrderID,
		"finalPrice": resp.FinalPrice.StringFixed(2),
	}).Info("order placed")

	if s.archiver != nil {
		s.archiver.ArchiveOrder(ctx, resp)
	}
	return resp, nil
}

func (s *OrderService) resolveDiscount(ctx context.Context, tx *gorm.DB, code string, customer *models.Customer, total decimal.Decimal) (*DiscountResolution, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}
	resolution, err := s.discounts.WithTx(tx).Resolve(ctx, code, customer, total)
	if err == nil {
		return resolution, nil
	}
	if !s.strictDiscounts && apperrors.Is(err, apperrors.KindInvalidCoupon) {
		utils.InfoLogger.WithFields(logrus.Fields{
			"customerId": customer.ID,
			"code":       code,
		}).Warnf("ignoring discount code: %v", err)
		return nil, nil
	}
	return nil, err
}

func (s *OrderService) loadOrder(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Customer").
		Preload("Restaurant").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, apperrors.FromLookup(err, "Order", "id", id)
	}
	return &order, nil
}

// GetOrder returns one order with its payment details.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*OrderResponse, error) {
	db := s.db.WithContext(ctx)
	order, err := s.loadOrder(db, id)
	if err != nil {
		return nil, err
	}
	responses, err := s.toResponses(db, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

func (s *OrderService) toResponses(db *gorm.DB, orders []models.Order) ([]*OrderResponse, error) {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if o.PaymentID != nil {
			ids = append(ids, *o.PaymentID)
		}
	}
	payments := map[string]*models.Payment{}
	if len(ids) > 0 {
		var rows []models.Payment
		if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to load payments: %w", err)
		}
		for i := range rows {
			payments[rows[i].ID] = &rows[i]
		}
	}

	out := make([]*OrderResponse, 0, len(orders))
	for i := range orders {
		var payment *models.Payment
		if orders[i].PaymentID != nil {
			payment = payments[*orders[i].PaymentID]
		}
		out = append(out, newOrderResponse(&orders[i], payment))
	}
	return out, nil
}

func (s *OrderService) listOrders(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*OrderResponse, error) {
	db := s.db.WithContext(ctx)
	var orders []models.Order
	err := db.Scopes(scope).
		Preload("Customer").
		Preload("Restaurant").
		Preload("OrderItems", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return s.toResponses(db, orders)
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*OrderResponse, error) {
	return s.listOrders(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID uint) ([]*OrderResponse, error) {
	var customer models.Customer
	if err := s.db.WithContext(ctx).First(&customer, customerID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Customer", "id", customerID)
	}
	return s.listOrders(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("customer_id = ?", customerID)
	})
}

func (s *OrderService) ListByRestaurant(ctx context.Context, restaurantID uint) ([]*OrderResponse, error) {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, restaurantID).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Restaurant", "id", restaurantID)
	}
	return s.listOrders(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("restaurant_id = ?", restaurantID)
	})
}

// ListByDateRange returns orders whose order date falls within [start, end].
func (s *OrderService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*OrderResponse, error) {
	if end.Before(start) {
		return nil, apperrors.InvalidOrder("End date cannot be before start date")
	}
	return s.listOrders(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("order_date BETWEEN ? AND ?", start, end)
	})
}

// lockOrder reads an order for update inside tx.
func (s *OrderService) lockOrder(ctx context.Context, tx *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
		return nil, apperrors.FromLookup(err, "Order", "id", id)
	}
	return &order, nil
}

func saveStatus(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if err := tx.WithContext(ctx).Model(order).Updates(map[string]interface{}{
		"status":         order.Status,
		"status_history": order.StatusHistory,
	}).Error; err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// CancelOrder cancels a non-terminal order together with its payment.
func (s *OrderService) CancelOrder(ctx context.Context, id string) (*OrderResponse, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		switch order.Status {
		case models.OrderCompleted:
			return apperrors.InvalidOrder("Cannot cancel a completed order")
		case models.OrderCancelled:
			return apperrors.InvalidOrder("Order %s is already cancelled", id)
		}

		order.TransitionTo(models.OrderCancelled, "Order cancelled", time.Now())
		if err := saveStatus(ctx, tx, order); err != nil {
			return err
		}

		if order.PaymentID != nil {
			_, err := s.payments.WithTx(tx).CancelPayment(ctx, *order.PaymentID)
			if apperrors.Is(err, apperrors.KindNotFound) {
				utils.InfoLogger.WithField("orderId", id).Warn("linked payment is missing, nothing to cancel")
			} else if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.WithField("orderId", id).Info("order cancelled")
	return s.GetOrder(ctx, id)
}

// UpdatePaymentStatus changes the status of the payment linked to an order.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error {
	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return apperrors.FromLookup(err, "Order", "id", orderID)
	}
	if order.PaymentID == nil {
		return apperrors.NotFoundf("No payment associated with this order")
	}
	_, err := s.payments.UpdateStatus(ctx, *order.PaymentID, status)
	return err
}

// AdvanceStatus moves an order one step along the kitchen flow,
// Received, Preparing, ReadyToPickup, OrderCompleted. Completing an order
// settles a pending cash payment.
func (s *OrderService) AdvanceStatus(ctx context.Context, id string, next models.OrderStatus, note string) (*OrderResponse, error) {
	if next == models.OrderCancelled {
		return nil, apperrors.InvalidOrder("Use the cancel operation to cancel an order")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return apperrors.InvalidOrder("Order %s is already %s", id, order.Status)
		}
		if order.Status.Next() != next {
			return apperrors.InvalidOrder("Cannot move order from %s to %s", order.Status, next)
		}
		if note == "" {
			note = "Order moved to " + string(next)
		}
		order.TransitionTo(next, note, time.Now())
		if err := saveStatus(ctx, tx, order); err != nil {
			return err
		}

		if next != models.OrderCompleted || order.PaymentID == nil {
			return nil
		}
		payments := s.payments.WithTx(tx)
		payment, err := payments.GetPayment(ctx, *order.PaymentID)
		if err != nil {
			return err
		}
		if payment.Status == models.PaymentPending {
			_, err = payments.CompletePayment(ctx, payment.ID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.WithFields(logrus.Fields{"orderId": id, "status": next}).Info("order status advanced")
	return s.GetOrder(ctx, id)
}
