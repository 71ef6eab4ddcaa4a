package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeRange is an inclusive window measured from midnight.
type TimeRange struct {
	Start time.Duration
	End   time.Duration
}

func (r TimeRange) Contains(clock time.Duration) bool {
	return clock >= r.Start && clock <= r.End
}

// String renders the range as "HH:MM - HH:MM".
func (r TimeRange) String() string {
	return FormatClock(r.Start) + " - " + FormatClock(r.End)
}

// Schedule maps a weekday to its opening windows. A weekday without
// entries is closed.
type Schedule map[time.Weekday][]TimeRange

func (s Schedule) For(day time.Weekday) []TimeRange {
	return s[day]
}

// DefaultSchedule: closed on Monday, lunch and dinner service the rest of the week.
func DefaultSchedule() Schedule {
	lunch := TimeRange{Start: 11 * time.Hour, End: 14 * time.Hour}
	dinner := TimeRange{Start: 17 * time.Hour, End: 22 * time.Hour}

	s := Schedule{}
	for _, day := range []time.Weekday{
		time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	} {
		s[day] = []TimeRange{lunch, dinner}
	}
	return s
}

// ParseSchedule reads "TUESDAY=11:00-14:00,17:00-22:00;WEDNESDAY=..." where
// every day that is not listed is closed.
func ParseSchedule(raw string) (Schedule, error) {
	s := Schedule{}
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		dayName, ranges, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("schedule entry %q is missing '='", entry)
		}
		day, err := ParseWeekday(dayName)
		if err != nil {
			return nil, err
		}
		for _, part := range strings.Split(ranges, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			startRaw, endRaw, ok := strings.Cut(part, "-")
			if !ok {
				return nil, fmt.Errorf("time range %q must look like HH:MM-HH:MM", part)
			}
			start, err := ParseClock(startRaw)
			if err != nil {
				return nil, err
			}
			end, err := ParseClock(endRaw)
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("time range %q ends before it starts", part)
			}
			s[day] = append(s[day], TimeRange{Start: start, End: end})
		}
		sort.Slice(s[day], func(i, j int) bool { return s[day][i].Start < s[day][j].Start })
	}
	return s, nil
}

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	layout := "15:04"
	if strings.Count(raw, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", raw, err)
	}
	return ClockOf(t), nil
}

// ClockOf returns the wall clock reading of t since midnight in t's
// location, down to the nanosecond.
func ClockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())
}

func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// FormatClockSeconds is the "HH:MM:SS" form used by the working hours table.
func FormatClockSeconds(d time.Duration) string {
	return fmt.Sprintf("%s:%02d", FormatClock(d), int(d.Seconds())%60)
}

// WeekdayName is the upper-case day name stored in working hours rows.
func WeekdayName(day time.Weekday) string {
	return strings.ToUpper(day.String())
}

func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for day := time.Sunday; day <= time.Saturday; day++ {
		if WeekdayName(day) == name {
			return day, nil
		}
	}
	return 0, fmt.Errorf("unknown day of week %q", raw)
}
