package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/models"
	"github.com/yeremiapane/ordersystem/services"
	"github.com/yeremiapane/ordersystem/utils"
	"gorm.io/gorm"
)

type RestaurantController struct {
	DB           *gorm.DB
	Availability *services.AvailabilityService
}

func NewRestaurantController(db *gorm.DB, availability *services.AvailabilityService) *RestaurantController {
	return &RestaurantController{DB: db, Availability: availability}
}

// GetRestaurantByID -> GET /api/restaurants/:restaurantId
func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	id, ok := uintParam(c, "restaurantId")
	if !ok {
		return
	}

	var restaurant models.Restaurant
	err := rc.DB.WithContext(c.Request.Context()).
		Preload("WorkingHours", func(db *gorm.DB) *gorm.DB { return db.Order("day_of_the_week, start_time") }).
		First(&restaurant, id).Error
	if err != nil {
		utils.RespondAppError(c, apperrors.FromLookup(err, "Restaurant", "id", id))
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

type availabilityResponse struct {
	RestaurantID uint     `json:"restaurantId"`
	At           string   `json:"at"`
	Open         bool     `json:"open"`
	Hours        []string `json:"hours"`
	Message      string   `json:"message,omitempty"`
}

// GetAvailability -> GET /api/restaurants/:restaurantId/availability?at=<timestamp>
// Without "at" the current time is checked.
func (rc *RestaurantController) GetAvailability(c *gin.Context) {
	id, ok := uintParam(c, "restaurantId")
	if !ok {
		return
	}
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := utils.ParseTimestamp(raw)
		if err != nil {
			utils.RespondValidationError(c, &utils.FieldError{Field: "at", Message: "must be an ISO-8601 date-time"})
			return
		}
		at = parsed
	}

	var restaurant models.Restaurant
	if err := rc.DB.WithContext(c.Request.Context()).First(&restaurant, id).Error; err != nil {
		utils.RespondAppError(c, apperrors.FromLookup(err, "Restaurant", "id", id))
		return
	}

	result, err := rc.Availability.Check(c.Request.Context(), restaurant.ID, at)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	hours := make([]string, 0, len(result.Ranges))
	for _, r := range result.Ranges {
		hours = append(hours, r.String())
	}
	c.JSON(http.StatusOK, availabilityResponse{
		RestaurantID: restaurant.ID,
		At:           at.Format(time.RFC3339),
		Open:         result.Open,
		Hours:        hours,
		Message:      result.Message(),
	})
}
