package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

// CustomerController exposes read-only customer lookups.
type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetAllCustomers -> GET /api/customers
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := cc.DB.WithContext(c.Request.Context()).Order("id").Find(&customers).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// GetCustomerByID -> GET /api/customers/:customerId
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, ok := uintParam(c, "customerId")
	if !ok {
		return
	}

	var customer models.Customer
	if err := cc.DB.WithContext(c.Request.Context()).First(&customer, id).Error; err != nil {
		utils.RespondAppError(c, apperrors.FromLookup(err, "Customer", "id", id))
		return
	}
	c.JSON(http.StatusOK, customer)
}
