package models

import (
	"fmt"
	"time"

	"github.com/yeremiapane/ordersystem/config"
	"gorm.io/gorm"
)

type Restaurant struct {
	ID           uint                     `gorm:"primaryKey" json:"id"`
	Name         string                   `gorm:"type:varchar(255);not null" json:"name"`
	Address      string                   `gorm:"type:text" json:"address"`
	Status       string                   `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
	WorkingHours []RestaurantWorkingHours `gorm:"foreignKey:RestaurantID" json:"workingHours,omitempty"`
	CreatedAt    time.Time                `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time                `gorm:"not null" json:"updatedAt"`
}

const WorkingHoursActive = "Active"

// RestaurantWorkingHours overrides the default opening hours of one
// restaurant for one weekday. Several rows for the same day form a union.
type RestaurantWorkingHours struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	RestaurantID uint       `gorm:"not null;index:idx_hours_restaurant_day" json:"restaurantId"`
	Restaurant   Restaurant `gorm:"foreignKey:RestaurantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	DayOfTheWeek string     `gorm:"type:varchar(10);not null;index:idx_hours_restaurant_day" json:"dayOfTheWeek"`
	StartTime    string     `gorm:"type:varchar(8);not null" json:"startTime"`
	EndTime      string     `gorm:"type:varchar(8);not null" json:"endTime"`
	Status       string     `gorm:"type:varchar(20);not null;default:'Active'" json:"status"`
}

// BeforeSave stores times as "HH:MM:SS" and day names in upper case so that
// range queries can compare them as strings.
func (h *RestaurantWorkingHours) BeforeSave(tx *gorm.DB) error {
	day, err := config.ParseWeekday(h.DayOfTheWeek)
	if err != nil {
		return err
	}
	start, err := config.ParseClock(h.StartTime)
	if err != nil {
		return err
	}
	end, err := config.ParseClock(h.EndTime)
	if err != nil {
		return err
	}
	if end < start {
		return fmt.Errorf("working hours end %s before they start %s", h.EndTime, h.StartTime)
	}
	h.DayOfTheWeek = config.WeekdayName(day)
	h.StartTime = config.FormatClockSeconds(start)
	h.EndTime = config.FormatClockSeconds(end)
	if h.Status == "" {
		h.Status = WorkingHoursActive
	}
	return nil
}

// Range converts the stored strings back into a config.TimeRange.
func (h RestaurantWorkingHours) Range() (config.TimeRange, error) {
	start, err := config.ParseClock(h.StartTime)
	if err != nil {
		return config.TimeRange{}, err
	}
	end, err := config.ParseClock(h.EndTime)
	if err != nil {
		return config.TimeRange{}, err
	}
	return config.TimeRange{Start: start, End: end}, nil
}
