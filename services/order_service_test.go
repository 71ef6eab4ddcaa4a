package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"gorm.io/gorm"
)

type OrderServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	f   *fixture
	svc *testServices
	ctx context.Context
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.db = setupTestDB(s.T())
	s.f = seedFixture(s.T(), s.db)
	s.svc = newTestServices(s.db, true)
	s.ctx = context.Background()
}

func (s *OrderServiceSuite) fillCart() *models.Cart {
	cart, err := s.svc.Carts.ReplaceItems(s.ctx, s.f.customer.ID, []CartItemInput{
		{MenuItemID: s.f.paneer.ID, Quantity: 2, SpecialInstructions: "no onions"},
	})
	s.Require().NoError(err)
	return cart
}

func (s *OrderServiceSuite) request(code string, method models.PaymentMethod) PlaceOrderRequest {
	orderDate := tuesdayAt(10, 0)
	delivery := tuesdayAt(12, 30)
	return PlaceOrderRequest{
		CustomerID:         s.f.customer.ID,
		RestaurantID:       s.f.restaurant.ID,
		PaymentMethod:      method,
		CouponCode:         code,
		OrderDate:          &orderDate,
		DeliveryDate:       &delivery,
		PickupInstructions: "Ring twice",
	}
}

func (s *OrderServiceSuite) countOrders() int64 {
	var n int64
	s.Require().NoError(s.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func (s *OrderServiceSuite) createCoupon() models.Coupon {
	coupon := activeCoupon("SAVE20", models.DiscountPercentage, 20, "15", "0")
	s.Require().NoError(s.db.Create(&coupon).Error)
	return coupon
}

func (s *OrderServiceSuite) TestPlaceOrderWithCoupon() {
	cart := s.fillCart()
	coupon := s.createCoupon()

	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("SAVE20", models.PaymentCash))
	s.Require().NoError(err)

	s.NotEmpty(resp.OrderID)
	s.Equal("Asha Rao", resp.CustomerName)
	s.Equal("Spice Route", resp.RestaurantName)
	s.Equal(models.OrderReceived, resp.OrderStatus)
	s.Equal("25.98", resp.TotalPrice.StringFixed(2))
	s.Equal("5.20", resp.DiscountValue.StringFixed(2))
	s.Equal("20.78", resp.FinalPrice.StringFixed(2))
	s.True(resp.TotalPrice.Sub(resp.DiscountValue).Equal(resp.FinalPrice))
	s.Equal("SAVE20", resp.CouponCode)
	s.Equal(DiscountKindCoupon, resp.DiscountKind)
	s.Equal("Ring twice", resp.PickupInstructions)
	s.Equal(2, resp.TotalItems)
	s.Require().Len(resp.StatusHistory, 1)
	s.Equal(models.OrderReceived, resp.StatusHistory[0].Status)

	s.Equal(models.PaymentCash, resp.PaymentMethod)
	s.Equal(models.PaymentPending, resp.PaymentStatus)
	payment, err := s.svc.Payments.GetPayment(s.ctx, resp.PaymentID)
	s.Require().NoError(err)
	s.Equal("20.78", payment.Amount.StringFixed(2))

	var order models.Order
	s.Require().NoError(s.db.First(&order, "id = ?", resp.OrderID).Error)
	s.Require().NotNil(order.CouponID)
	s.Equal(coupon.ID, *order.CouponID)

	var stored models.Cart
	s.Require().NoError(s.db.First(&stored, cart.ID).Error)
	s.Equal(models.CartCompleted, stored.Status)
	var items int64
	s.Require().NoError(s.db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&items).Error)
	s.Zero(items)
}

func (s *OrderServiceSuite) TestOrderItemsAreSnapshots() {
	_, err := s.svc.Carts.ReplaceItems(s.ctx, s.f.customer.ID, []CartItemInput{
		{MenuItemID: s.f.paneer.ID, VariantID: &s.f.large.ID, Quantity: 1, SpecialInstructions: "extra butter"},
		{MenuItemID: s.f.lassi.ID, Quantity: 3},
	})
	s.Require().NoError(err)

	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentUPI))
	s.Require().NoError(err)
	s.Equal(models.PaymentPaid, resp.PaymentStatus)
	s.Equal("28.24", resp.TotalPrice.StringFixed(2))
	s.True(resp.DiscountValue.IsZero())
	s.Equal(4, resp.TotalItems)

	// Later catalog changes must not leak into placed orders.
	s.Require().NoError(s.db.Model(&s.f.paneer).Update("name", "Renamed Curry").Error)
	s.Require().NoError(s.db.Model(&s.f.large).Update("price", money("99")).Error)

	got, err := s.svc.Orders.GetOrder(s.ctx, resp.OrderID)
	s.Require().NoError(err)
	s.Require().Len(got.OrderItems, 2)

	first := got.OrderItems[0]
	s.Equal("Paneer Butter Masala", first.ItemName)
	s.Equal("Mains", first.CategoryName)
	s.Equal("Curries", first.SubCategoryName)
	s.Equal("Large", first.VariantName)
	s.Equal("15.49", first.Price.StringFixed(2))
	s.Equal("extra butter", first.SpecialInstructions)
	s.False(first.IsFreeItem)

	second := got.OrderItems[1]
	s.Equal("Mango Lassi", second.ItemName)
	s.Empty(second.SubCategoryName)
	s.Empty(second.VariantName)
	s.Equal("12.75", second.Subtotal.StringFixed(2))
}

func (s *OrderServiceSuite) TestPlaceOrderValidation() {
	s.fillCart()
	missingDelivery := s.request("", models.PaymentCash)
	missingDelivery.DeliveryDate = nil
	early := s.request("", models.PaymentCash)
	before := tuesdayAt(9, 0)
	early.DeliveryDate = &before
	noCustomer := s.request("", models.PaymentCash)
	noCustomer.CustomerID = 0
	badMethod := s.request("", models.PaymentMethod("CARD"))
	noMethod := s.request("", "")

	tests := []struct {
		req  PlaceOrderRequest
		want string
	}{
		{missingDelivery, "Delivery date is required"},
		{early, "Delivery date cannot be before order date"},
		{noCustomer, "Customer ID is required"},
		{badMethod, "Invalid payment method: CARD. Valid values are CASH, UPI"},
		{noMethod, "Payment method is required"},
	}
	for _, tt := range tests {
		_, err := s.svc.Orders.PlaceOrder(s.ctx, tt.req)
		s.True(apperrors.Is(err, apperrors.KindInvalidOrder), tt.want)
		s.EqualError(err, tt.want)
	}
	s.Zero(s.countOrders())
}

func (s *OrderServiceSuite) TestPlaceOrderUnknownParties() {
	s.fillCart()

	req := s.request("", models.PaymentCash)
	req.CustomerID = 999
	_, err := s.svc.Orders.PlaceOrder(s.ctx, req)
	s.EqualError(err, "Customer not found with id : '999'")

	req = s.request("", models.PaymentCash)
	req.RestaurantID = 999
	_, err = s.svc.Orders.PlaceOrder(s.ctx, req)
	s.True(apperrors.Is(err, apperrors.KindNotFound))
}

func (s *OrderServiceSuite) TestPlaceOrderEmptyCart() {
	_, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.True(apperrors.Is(err, apperrors.KindInvalidOrder))

	_, err = s.svc.Carts.ReplaceItems(s.ctx, s.f.customer.ID, nil)
	s.Require().NoError(err)
	_, err = s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.EqualError(err, "Cart is empty. Cannot place order with empty cart.")

	s.Zero(s.countOrders())
	var payments int64
	s.Require().NoError(s.db.Model(&models.Payment{}).Count(&payments).Error)
	s.Zero(payments)
}

func (s *OrderServiceSuite) TestPlaceOrderRestaurantClosed() {
	s.fillCart()
	req := s.request("", models.PaymentCash)
	monday := mondayAt(12, 0)
	orderDate := mondayAt(9, 0)
	req.OrderDate, req.DeliveryDate = &orderDate, &monday

	_, err := s.svc.Orders.PlaceOrder(s.ctx, req)
	s.EqualError(err, "Restaurant is closed on MONDAYs")
	s.Zero(s.countOrders())

	cart, err := s.svc.Carts.GetActiveCart(s.ctx, s.f.customer.ID)
	s.Require().NoError(err)
	s.Len(cart.CartItems, 1, "a rejected order leaves the cart alone")
}

func (s *OrderServiceSuite) TestStrictDiscountRejectsOrder() {
	s.fillCart()

	_, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("TYPO", models.PaymentCash))
	s.True(apperrors.Is(err, apperrors.KindInvalidCoupon))
	s.EqualError(err, "Invalid or expired coupon code: TYPO")
	s.Zero(s.countOrders())

	cart, err := s.svc.Carts.GetActiveCart(s.ctx, s.f.customer.ID)
	s.Require().NoError(err)
	s.Equal(models.CartActive, cart.Status)
}

func (s *OrderServiceSuite) TestLenientDiscountIgnoresBadCode() {
	s.svc = newTestServices(s.db, false)
	s.fillCart()

	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("TYPO", models.PaymentCash))
	s.Require().NoError(err)
	s.True(resp.DiscountValue.IsZero())
	s.Equal("25.98", resp.FinalPrice.StringFixed(2))
	s.Empty(resp.CouponCode)
}

func (s *OrderServiceSuite) TestVoucherRolledBackWithFailedOrder() {
	s.fillCart()
	voucher := models.Voucher{VoucherCode: "V-ASHA", CustomerID: s.f.customer.ID, DiscountAmount: money("3"), ExpiryDate: time.Now().Add(time.Hour)}
	s.Require().NoError(s.db.Create(&voucher).Error)

	// Without order_items the insert fails after the voucher was redeemed.
	s.Require().NoError(s.db.Exec("DROP TABLE order_items").Error)
	_, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("V-ASHA", models.PaymentCash))
	s.Require().Error(err)

	var stored models.Voucher
	s.Require().NoError(s.db.First(&stored, voucher.ID).Error)
	s.False(stored.IsUsed)
}

func (s *OrderServiceSuite) TestReferralMarkedUsed() {
	s.fillCart()
	referral := models.Referral{ReferralCode: "R-VIKRAM", ReferrerID: s.f.friend.ID}
	s.Require().NoError(s.db.Create(&referral).Error)

	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("R-VIKRAM", models.PaymentUPI))
	s.Require().NoError(err)
	s.Equal(DiscountKindReferral, resp.DiscountKind)
	s.Equal("2.60", resp.DiscountValue.StringFixed(2))
	s.Equal("23.38", resp.FinalPrice.StringFixed(2))

	var stored models.Referral
	s.Require().NoError(s.db.First(&stored, referral.ID).Error)
	s.True(stored.IsUsed)
	s.Require().NotNil(stored.ReferredID)
	s.Equal(s.f.customer.ID, *stored.ReferredID)
}

func (s *OrderServiceSuite) TestConcurrentPlacementConsumesCartOnce() {
	s.fillCart()

	const attempts = 2
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		s.True(apperrors.Is(err, apperrors.KindInvalidOrder) || apperrors.Is(err, apperrors.KindConflict), err.Error())
	}
	s.Equal(1, succeeded)
	s.EqualValues(1, s.countOrders())
}

func (s *OrderServiceSuite) TestCancelOrderCancelsPayment() {
	s.fillCart()
	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentUPI))
	s.Require().NoError(err)

	cancelled, err := s.svc.Orders.CancelOrder(s.ctx, resp.OrderID)
	s.Require().NoError(err)
	s.Equal(models.OrderCancelled, cancelled.OrderStatus)
	s.Equal(models.PaymentCancelled, cancelled.PaymentStatus)
	s.Len(cancelled.StatusHistory, 2)

	_, err = s.svc.Orders.CancelOrder(s.ctx, resp.OrderID)
	s.EqualError(err, "Order "+resp.OrderID+" is already cancelled")

	_, err = s.svc.Orders.CancelOrder(s.ctx, "missing")
	s.True(apperrors.Is(err, apperrors.KindNotFound))
}

func (s *OrderServiceSuite) TestCancelCompletedOrderFails() {
	s.fillCart()
	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.Require().NoError(err)

	for _, next := range []models.OrderStatus{models.OrderPreparing, models.OrderReadyToPickup, models.OrderCompleted} {
		resp, err = s.svc.Orders.AdvanceStatus(s.ctx, resp.OrderID, next, "")
		s.Require().NoError(err)
	}
	s.Equal(models.PaymentPaid, resp.PaymentStatus, "completing a cash order settles it")

	_, err = s.svc.Orders.CancelOrder(s.ctx, resp.OrderID)
	s.True(apperrors.Is(err, apperrors.KindInvalidOrder))
	s.EqualError(err, "Cannot cancel a completed order")

	got, err := s.svc.Orders.GetOrder(s.ctx, resp.OrderID)
	s.Require().NoError(err)
	s.Equal(models.OrderCompleted, got.OrderStatus)
	s.Equal(models.PaymentPaid, got.PaymentStatus)
	s.Len(got.StatusHistory, 4)
}

func (s *OrderServiceSuite) TestAdvanceStatusRules() {
	s.fillCart()
	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.Require().NoError(err)

	_, err = s.svc.Orders.AdvanceStatus(s.ctx, resp.OrderID, models.OrderReadyToPickup, "")
	s.EqualError(err, "Cannot move order from Received to ReadyToPickup")

	_, err = s.svc.Orders.AdvanceStatus(s.ctx, resp.OrderID, models.OrderCancelled, "")
	s.EqualError(err, "Use the cancel operation to cancel an order")

	got, err := s.svc.Orders.AdvanceStatus(s.ctx, resp.OrderID, models.OrderPreparing, "chef started")
	s.Require().NoError(err)
	s.Equal(models.OrderPreparing, got.OrderStatus)
	s.Equal("chef started", got.StatusHistory[1].Note)
	s.Equal(models.PaymentPending, got.PaymentStatus)

	_, err = s.svc.Orders.CancelOrder(s.ctx, resp.OrderID)
	s.Require().NoError(err)
	_, err = s.svc.Orders.AdvanceStatus(s.ctx, resp.OrderID, models.OrderReadyToPickup, "")
	s.EqualError(err, "Order "+resp.OrderID+" is already Cancelled")
}

func (s *OrderServiceSuite) TestUpdatePaymentStatus() {
	s.fillCart()
	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Orders.UpdatePaymentStatus(s.ctx, resp.OrderID, models.PaymentPaid))
	got, err := s.svc.Orders.GetOrder(s.ctx, resp.OrderID)
	s.Require().NoError(err)
	s.Equal(models.PaymentPaid, got.PaymentStatus)

	err = s.svc.Orders.UpdatePaymentStatus(s.ctx, resp.OrderID, models.PaymentCancelled)
	s.EqualError(err, "Cannot change payment status from PAID to CANCELLED")

	err = s.svc.Orders.UpdatePaymentStatus(s.ctx, "missing", models.PaymentPaid)
	s.EqualError(err, "Order not found with id : 'missing'")

	s.Require().NoError(s.db.Model(&models.Order{}).Where("id = ?", resp.OrderID).Update("payment_id", nil).Error)
	err = s.svc.Orders.UpdatePaymentStatus(s.ctx, resp.OrderID, models.PaymentRefunded)
	s.EqualError(err, "No payment associated with this order")
}

func (s *OrderServiceSuite) TestListings() {
	s.fillCart()
	first, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.Require().NoError(err)

	s.fillCart()
	req := s.request("", models.PaymentUPI)
	later := tuesdayAt(11, 0)
	delivery := tuesdayAt(13, 0)
	req.OrderDate, req.DeliveryDate = &later, &delivery
	second, err := s.svc.Orders.PlaceOrder(s.ctx, req)
	s.Require().NoError(err)

	all, err := s.svc.Orders.ListOrders(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(second.OrderID, all[0].OrderID, "newest first")
	s.Equal(models.PaymentPaid, all[0].PaymentStatus)
	s.Equal(models.PaymentPending, all[1].PaymentStatus)

	mine, err := s.svc.Orders.ListByCustomer(s.ctx, s.f.customer.ID)
	s.Require().NoError(err)
	s.Len(mine, 2)

	theirs, err := s.svc.Orders.ListByCustomer(s.ctx, s.f.friend.ID)
	s.Require().NoError(err)
	s.Empty(theirs)

	_, err = s.svc.Orders.ListByCustomer(s.ctx, 999)
	s.True(apperrors.Is(err, apperrors.KindNotFound))

	byRestaurant, err := s.svc.Orders.ListByRestaurant(s.ctx, s.f.restaurant.ID)
	s.Require().NoError(err)
	s.Len(byRestaurant, 2)

	_, err = s.svc.Orders.ListByRestaurant(s.ctx, 999)
	s.EqualError(err, "Restaurant not found with id : '999'")

	window, err := s.svc.Orders.ListByDateRange(s.ctx, tuesdayAt(9, 30), tuesdayAt(10, 30))
	s.Require().NoError(err)
	s.Require().Len(window, 1)
	s.Equal(first.OrderID, window[0].OrderID)

	_, err = s.svc.Orders.ListByDateRange(s.ctx, tuesdayAt(12, 0), tuesdayAt(10, 0))
	s.EqualError(err, "End date cannot be before start date")
}

func (s *OrderServiceSuite) TestPlacedOrderIsArchived() {
	s.fillCart()
	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.Require().NoError(err)
	s.svc.Archiver.Wait()

	blob, ok := s.svc.sink.get(resp.OrderID)
	s.Require().True(ok)
	var doc map[string]interface{}
	s.Require().NoError(json.Unmarshal(blob, &doc))
	s.Equal(resp.OrderID, doc["orderId"])
	s.Equal("Spice Route", doc["restaurantName"])
	s.Len(doc["orderItems"], 1)
}

func (s *OrderServiceSuite) TestArchiveFailureDoesNotFailOrder() {
	s.svc.sink.err = errors.New("archive unavailable")
	s.fillCart()

	resp, err := s.svc.Orders.PlaceOrder(s.ctx, s.request("", models.PaymentCash))
	s.Require().NoError(err)
	s.svc.Archiver.Wait()

	_, ok := s.svc.sink.get(resp.OrderID)
	s.False(ok)
	s.EqualValues(1, s.countOrders())
}
