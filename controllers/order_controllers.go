package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/services"
	"github.com/yeremiapane/ordersystem/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// placeOrderBody is the wire form of an order placement. Presence checks are
// left to the service so clients get its messages.
type placeOrderBody struct {
	CustomerID         uint   `json:"customerId"`
	RestaurantID       uint   `json:"restaurantId"`
	PaymentMethod      string `json:"paymentMethod"`
	CouponCode         string `json:"couponCode"`
	OrderDate          string `json:"orderDate"`
	DeliveryDate       string `json:"deliveryDate"`
	PickupInstructions string `json:"pickupInstructions"`
}

// optionalTimestamp parses raw when present. An empty string is left for the
// service to reject as missing.
func optionalTimestamp(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := utils.ParseTimestamp(raw)
	if err != nil {
		return nil, &utils.FieldError{Field: field, Message: "must be an ISO-8601 date-time"}
	}
	return &t, nil
}

func (b placeOrderBody) toRequest() (services.PlaceOrderRequest, error) {
	req := services.PlaceOrderRequest{
		CustomerID:         b.CustomerID,
		RestaurantID:       b.RestaurantID,
		CouponCode:         b.CouponCode,
		PickupInstructions: b.PickupInstructions,
	}
	if b.PaymentMethod != "" {
		method, err := models.ParsePaymentMethod(b.PaymentMethod)
		if err != nil {
			return req, &utils.FieldError{Field: "paymentMethod", Message: err.Error()}
		}
		req.PaymentMethod = method
	}

	var err error
	if req.OrderDate, err = optionalTimestamp("orderDate", b.OrderDate); err != nil {
		return req, err
	}
	if req.DeliveryDate, err = optionalTimestamp("deliveryDate", b.DeliveryDate); err != nil {
		return req, err
	}
	return req, nil
}

// CreateOrder -> POST /api/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var body placeOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondValidationError(c, err)
		return
	}
	req, err := body.toRequest()
	if err != nil {
		utils.RespondValidationError(c, err)
		return
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetAllOrders -> GET /api/orders
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	orders, err := oc.Orders.ListOrders(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrderByID -> GET /api/orders/:orderId
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, err := oc.Orders.GetOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// uintParam reads a numeric path parameter, answering 400 when it is not one.
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.RespondValidationError(c, &utils.FieldError{Field: name, Message: "must be a positive integer"})
		return 0, false
	}
	return uint(id), true
}

// GetOrdersByCustomer -> GET /api/orders/customer/:customerId
func (oc *OrderController) GetOrdersByCustomer(c *gin.Context) {
	customerID, ok := uintParam(c, "customerId")
	if !ok {
		return
	}
	orders, err := oc.Orders.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrdersByRestaurant -> GET /api/orders/restaurant/:restaurantId
func (oc *OrderController) GetOrdersByRestaurant(c *gin.Context) {
	restaurantID, ok := uintParam(c, "restaurantId")
	if !ok {
		return
	}
	orders, err := oc.Orders.ListByRestaurant(c.Request.Context(), restaurantID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrdersByDateRange -> GET /api/orders/date-range?startDate&endDate
func (oc *OrderController) GetOrdersByDateRange(c *gin.Context) {
	start, err := utils.ParseTimestamp(c.Query("startDate"))
	if err != nil {
		utils.RespondValidationError(c, &utils.FieldError{Field: "startDate", Message: "must be an ISO-8601 date-time"})
		return
	}
	end, err := utils.ParseTimestamp(c.Query("endDate"))
	if err != nil {
		utils.RespondValidationError(c, &utils.FieldError{Field: "endDate", Message: "must be an ISO-8601 date-time"})
		return
	}

	orders, err := oc.Orders.ListByDateRange(c.Request.Context(), start, end)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// CancelOrder -> PUT /api/orders/:orderId/cancel
func (oc *OrderController) CancelOrder(c *gin.Context) {
	order, err := oc.Orders.CancelOrder(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdatePaymentStatus -> PUT /api/orders/:orderId/payment/status
func (oc *OrderController) UpdatePaymentStatus(c *gin.Context) {
	var body struct {
		PaymentStatus string `json:"paymentStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondValidationError(c, err)
		return
	}
	status, err := models.ParsePaymentStatus(body.PaymentStatus)
	if err != nil {
		utils.RespondValidationError(c, &utils.FieldError{Field: "paymentStatus", Message: err.Error()})
		return
	}

	if err := oc.Orders.UpdatePaymentStatus(c.Request.Context(), c.Param("orderId"), status); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.String(http.StatusOK, "Payment status updated successfully")
}

// UpdateOrderStatus -> PUT /api/orders/:orderId/status
// Moves the order one step along the kitchen flow.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondValidationError(c, err)
		return
	}
	status, err := models.ParseOrderStatus(body.Status)
	if err != nil {
		utils.RespondValidationError(c, &utils.FieldError{Field: "status", Message: err.Error()})
		return
	}

	order, err := oc.Orders.AdvanceStatus(c.Request.Context(), c.Param("orderId"), status, body.Note)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
