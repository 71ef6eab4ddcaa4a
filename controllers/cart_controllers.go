package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/ordersystem/services"
	"github.com/yeremiapane/ordersystem/utils"
)

type CartController struct {
	Carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{Carts: carts}
}

type cartItemBody struct {
	MenuItemID          uint   `json:"menuItemId" binding:"required"`
	VariantID           *uint  `json:"variantId"`
	Quantity            int    `json:"quantity" binding:"required,gt=0"`
	SpecialInstructions string `json:"specialInstructions"`
}

func (b cartItemBody) toInput() services.CartItemInput {
	return services.CartItemInput{
		MenuItemID:          b.MenuItemID,
		VariantID:           b.VariantID,
		Quantity:            b.Quantity,
		SpecialInstructions: b.SpecialInstructions,
	}
}

// GetCart -> GET /api/cart/customer/:customerId
func (cc *CartController) GetCart(c *gin.Context) {
	customerID, ok := uintParam(c, "customerId")
	if !ok {
		return
	}
	cart, err := cc.Carts.GetActiveCart(c.Request.Context(), customerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddItem -> POST /api/cart/add
func (cc *CartController) AddItem(c *gin.Context) {
	var body struct {
		CustomerID uint `json:"customerId" binding:"required"`
		cartItemBody
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondValidationError(c, err)
		return
	}

	cart, err := cc.Carts.AddItem(c.Request.Context(), body.CustomerID, body.toInput())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}

// ReplaceItems -> POST /api/cart/:customerId
// The body is the complete new content of the cart.
func (cc *CartController) ReplaceItems(c *gin.Context) {
	customerID, ok := uintParam(c, "customerId")
	if !ok {
		return
	}
	var body []cartItemBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondValidationError(c, err)
		return
	}
	inputs := make([]services.CartItemInput, 0, len(body))
	for _, item := range body {
		inputs = append(inputs, item.toInput())
	}

	cart, err := cc.Carts.ReplaceItems(c.Request.Context(), customerID, inputs)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateItem -> PUT /api/cart/item/:cartItemId
func (cc *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := uintParam(c, "cartItemId")
	if !ok {
		return
	}
	var body struct {
		Quantity            int    `json:"quantity" binding:"required,gt=0"`
		SpecialInstructions string `json:"specialInstructions"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondValidationError(c, err)
		return
	}

	cart, err := cc.Carts.UpdateItem(c.Request.Context(), itemID, body.Quantity, body.SpecialInstructions)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveItem -> DELETE /api/cart/item/:cartItemId
func (cc *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := uintParam(c, "cartItemId")
	if !ok {
		return
	}
	cart, err := cc.Carts.RemoveItem(c.Request.Context(), itemID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// ClearCart -> DELETE /api/cart/customer/:customerId
func (cc *CartController) ClearCart(c *gin.Context) {
	customerID, ok := uintParam(c, "customerId")
	if !ok {
		return
	}
	if err := cc.Carts.ClearCart(c.Request.Context(), customerID); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
