package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/ordersystem/apperrors"
	"github.com/yeremiapane/ordersystem/config"
	"github.com/yeremiapane/ordersystem/models"
	"gorm.io/gorm"
)

type hoursSource int

const (
	hoursCustom hoursSource = iota
	hoursFallback
	hoursDefault
)

// Availability explains whether a restaurant is open at a given moment.
type Availability struct {
	Open   bool
	Day    time.Weekday
	Ranges []config.TimeRange
	source hoursSource
}

// Message describes when the restaurant is open. It is empty when Open.
func (a Availability) Message() string {
	if a.Open {
		return ""
	}
	day := config.WeekdayName(a.Day)
	switch a.source {
	case hoursCustom:
		return fmt.Sprintf("Restaurant is not open at the requested delivery time. Restaurant is open at the following times on %s: %s",
			day, joinRanges(a.Ranges))
	default:
		if len(a.Ranges) == 0 {
			return fmt.Sprintf("Restaurant is closed on %ss", day)
		}
		return fmt.Sprintf("Restaurant is only open at the following times on %s: %s", day, joinRanges(a.Ranges))
	}
}

func joinRanges(ranges []config.TimeRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// AvailabilityService decides whether a restaurant accepts an order for a
// given time: restaurant specific hours first, then any matching hours row,
// then the default schedule.
type AvailabilityService struct {
	db       *gorm.DB
	schedule config.Schedule
}

func NewAvailabilityService(db *gorm.DB, schedule config.Schedule) *AvailabilityService {
	return &AvailabilityService{db: db, schedule: schedule}
}

func (s *AvailabilityService) WithTx(tx *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: tx, schedule: s.schedule}
}

func (s *AvailabilityService) Check(ctx context.Context, restaurantID uint, at time.Time) (Availability, error) {
	day := at.Weekday()
	dayName := config.WeekdayName(day)
	clock := config.ClockOf(at)
	db := s.db.WithContext(ctx)

	var rows []models.RestaurantWorkingHours
	if err := db.Where("restaurant_id = ? AND day_of_the_week = ? AND status = ?", restaurantID, dayName, models.WorkingHoursActive).
		Order("start_time").
		Find(&rows).Error; err != nil {
		return Availability{}, fmt.Errorf("failed to load working hours: %w", err)
	}

	if len(rows) > 0 {
		result := Availability{Day: day, source: hoursCustom}
		for _, row := range rows {
			r, err := row.Range()
			if err != nil {
				return Availability{}, err
			}
			result.Ranges = append(result.Ranges, r)
			if r.Contains(clock) {
				result.Open = true
			}
		}
		return result, nil
	}

	// Hours rows are stored as zero padded "HH:MM:SS", so string comparison
	// orders them correctly. A fractional second past the end is closed.
	startBound := config.FormatClockSeconds(clock)
	endBound := startBound
	if clock%time.Second != 0 {
		endBound = config.FormatClockSeconds(clock.Truncate(time.Second) + time.Second)
	}
	var matches int64
	if err := db.Model(&models.RestaurantWorkingHours{}).
		Where("day_of_the_week = ? AND status = ? AND start_time <= ? AND end_time >= ?", dayName, models.WorkingHoursActive, startBound, endBound).
		Count(&matches).Error; err != nil {
		return Availability{}, fmt.Errorf("failed to query working hours: %w", err)
	}
	if matches > 0 {
		return Availability{Open: true, Day: day, source: hoursFallback}, nil
	}

	result := Availability{Day: day, Ranges: s.schedule.For(day), source: hoursDefault}
	for _, r := range result.Ranges {
		if r.Contains(clock) {
			result.Open = true
			break
		}
	}
	return result, nil
}

func (s *AvailabilityService) IsOpen(ctx context.Context, restaurantID uint, at time.Time) (bool, error) {
	a, err := s.Check(ctx, restaurantID, at)
	if err != nil {
		return false, err
	}
	return a.Open, nil
}

// EnsureOpen fails with InvalidOrder, listing the opening hours, when the
// restaurant is closed at the given time.
func (s *AvailabilityService) EnsureOpen(ctx context.Context, restaurantID uint, at time.Time) error {
	a, err := s.Check(ctx, restaurantID, at)
	if err != nil {
		return err
	}
	if !a.Open {
		return apperrors.InvalidOrder("%s", a.Message())
	}
	return nil
}
