package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/ordersystem/services"
	"github.com/yeremiapane/ordersystem/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
	Monitor  *services.PaymentMonitor
}

func NewPaymentController(payments *services.PaymentService, monitor *services.PaymentMonitor) *PaymentController {
	return &PaymentController{Payments: payments, Monitor: monitor}
}

// GetPaymentByID -> GET /api/payments/:paymentId
func (pc *PaymentController) GetPaymentByID(c *gin.Context) {
	payment, err := pc.Payments.GetPayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// CompletePayment -> PUT /api/payments/:paymentId/complete
// Settles a pending payment. Any other status is returned unchanged.
func (pc *PaymentController) CompletePayment(c *gin.Context) {
	payment, err := pc.Payments.CompletePayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// RefundPayment -> PUT /api/payments/:paymentId/refund
func (pc *PaymentController) RefundPayment(c *gin.Context) {
	payment, err := pc.Payments.RefundPayment(c.Request.Context(), c.Param("paymentId"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// GetPaymentMetrics -> GET /api/payments/metrics
func (pc *PaymentController) GetPaymentMetrics(c *gin.Context) {
	metrics, err := pc.Monitor.GetMetrics(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
