package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/ordersystem/utils"
)

// OrderAuditMiddleware records every state changing call on an order.
func OrderAuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		fields := logrus.Fields{
			"orderId": c.Param("orderId"),
			"route":   c.FullPath(),
			"status":  c.Writer.Status(),
		}
		if c.Writer.Status() < 400 {
			utils.InfoLogger.WithFields(fields).Info("order change applied")
		} else {
			utils.ErrorLogger.WithFields(fields).Warn("order change rejected")
		}
	}
}
