package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

// MenuController serves the catalog customers pick cart items from.
type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenuItems -> GET /api/menu-items?category=<id>&available=true
func (mc *MenuController) GetAllMenuItems(c *gin.Context) {
	query := mc.DB.WithContext(c.Request.Context()).Preload("Variants").Order("id")

	if raw := c.Query("category"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondValidationError(c, &utils.FieldError{Field: "category", Message: "must be a positive integer"})
			return
		}
		query = query.Where("category_id = ?", categoryID)
	}
	if c.Query("available") == "true" {
		query = query.Where("available = ?", true)
	}

	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetMenuItemByID -> GET /api/menu-items/:menuItemId
func (mc *MenuController) GetMenuItemByID(c *gin.Context) {
	id, ok := uintParam(c, "menuItemId")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := mc.DB.WithContext(c.Request.Context()).Preload("Variants").First(&item, id).Error; err != nil {
		utils.RespondAppError(c, apperrors.FromLookup(err, "Menu item", "id", id))
		return
	}
	c.JSON(http.StatusOK, item)
}
