package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

type MenuCategoryController struct {
	DB *gorm.DB
}

func NewMenuCategoryController(db *gorm.DB) *MenuCategoryController {
	return &MenuCategoryController{DB: db}
}

func orderedSubCategories(db *gorm.DB) *gorm.DB {
	return db.Order("sub_categories.id")
}

// GetAllCategories -> GET /api/categories
func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	var categories []models.Category
	err := mcc.DB.WithContext(c.Request.Context()).
		Preload("SubCategories", orderedSubCategories).
		Order("id").
		Find(&categories).Error
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// GetCategoryByID -> GET /api/categories/:categoryId
func (mcc *MenuCategoryController) GetCategoryByID(c *gin.Context) {
	id, ok := uintParam(c, "categoryId")
	if !ok {
		return
	}
	var category models.Category
	err := mcc.DB.WithContext(c.Request.Context()).
		Preload("SubCategories", orderedSubCategories).
		First(&category, id).Error
	if err != nil {
		utils.RespondAppError(c, apperrors.FromLookup(err, "Category", "id", id))
		return
	}
	c.JSON(http.StatusOK, category)
}
