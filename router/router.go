package router

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yeremiapane/ordersystem/controllers"
	"github.com/yeremiapane/ordersystem/middlewares"
	"github.com/yeremiapane/ordersystem/services"
	"gorm.io/gorm"
)

// Options tunes the HTTP surface.
type Options struct {
	AllowedOrigin  string
	RateLimitRPS   float64
	RateLimitBurst int
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator errors report the JSON name of a field.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func SetupRouter(db *gorm.DB, svc *services.Services, opts Options) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.AllowedOrigin))
	r.Use(middlewares.LoggerMiddleware())

	orderCtrl := controllers.NewOrderController(svc.Orders)
	cartCtrl := controllers.NewCartController(svc.Carts)
	paymentCtrl := controllers.NewPaymentController(svc.Payments, svc.PaymentMonitor)
	customerCtrl := controllers.NewCustomerController(db)
	menuCtrl := controllers.NewMenuController(db)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	restaurantCtrl := controllers.NewRestaurantController(db, svc.Availability)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// ORDERS
	placement := middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	orders := api.Group("/orders")
	{
		orders.POST("", placement.RateLimit(), orderCtrl.CreateOrder)
		orders.GET("", orderCtrl.GetAllOrders)
		orders.GET("/date-range", orderCtrl.GetOrdersByDateRange)
		orders.GET("/customer/:customerId", orderCtrl.GetOrdersByCustomer)
		orders.GET("/restaurant/:restaurantId", orderCtrl.GetOrdersByRestaurant)
		orders.GET("/:orderId", orderCtrl.GetOrderByID)

		audited := orders.Group("/:orderId", middlewares.OrderAuditMiddleware())
		audited.PUT("/cancel", orderCtrl.CancelOrder)
		audited.PUT("/status", orderCtrl.UpdateOrderStatus)
		audited.PUT("/payment/status", orderCtrl.UpdatePaymentStatus)
	}

	// CART
	cart := api.Group("/cart")
	{
		cart.GET("/customer/:customerId", cartCtrl.GetCart)
		cart.DELETE("/customer/:customerId", cartCtrl.ClearCart)
		cart.POST("/add", cartCtrl.AddItem)
		cart.POST("/:customerId", cartCtrl.ReplaceItems)
		cart.PUT("/item/:cartItemId", cartCtrl.UpdateItem)
		cart.DELETE("/item/:cartItemId", cartCtrl.RemoveItem)
	}

	// PAYMENTS
	payments := api.Group("/payments")
	{
		payments.GET("/metrics", paymentCtrl.GetPaymentMetrics)
		payments.GET("/:paymentId", paymentCtrl.GetPaymentByID)
		payments.PUT("/:paymentId/complete", paymentCtrl.CompletePayment)
		payments.PUT("/:paymentId/refund", paymentCtrl.RefundPayment)
	}

	// CATALOG
	api.GET("/customers", customerCtrl.GetAllCustomers)
	api.GET("/customers/:customerId", customerCtrl.GetCustomerByID)
	api.GET("/categories", categoryCtrl.GetAllCategories)
	api.GET("/categories/:categoryId", categoryCtrl.GetCategoryByID)
	api.GET("/menu-items", menuCtrl.GetAllMenuItems)
	api.GET("/menu-items/:menuItemId", menuCtrl.GetMenuItemByID)
	api.GET("/restaurants/:restaurantId", restaurantCtrl.GetRestaurantByID)
	api.GET("/restaurants/:restaurantId/availability", restaurantCtrl.GetAvailability)

	return r
}
