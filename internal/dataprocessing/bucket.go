package dataprocessing

import "time"

// Calendar bucketing. Every function here is a pure function of a valid
// timestamp; callers must never pass the time of an invalid SendTime.

// DayKey returns the ISO day key, e.g. "2024-01-08".
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DayDisplay returns the long-form date, e.g. "January 8, 2024".
func DayDisplay(t time.Time) string {
	return t.Format("January 2, 2006")
}

// WeekStart returns midnight of the Monday starting the week containing t.
// Sunday is treated as day 7 of the previous week, so a week always runs
// Monday through Sunday.
func WeekStart(t time.Time) time.Time {
	day := int(t.Weekday())
	if day == 0 {
		day = 7
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.AddDate(0, 0, -(day - 1))
}

// WeekKey returns the ISO day key of the week's Monday.
func WeekKey(t time.Time) string {
	return DayKey(WeekStart(t))
}

// WeekDisplay returns the week's date range, e.g.
// "January 8, 2024 - January 14, 2024".
func WeekDisplay(t time.Time) string {
	start := WeekStart(t)
	return DayDisplay(start) + " - " + DayDisplay(start.AddDate(0, 0, 6))
}

// MonthKey returns the year-month key, e.g. "2024-01".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthDisplay returns the long-form month, e.g. "January 2024".
func MonthDisplay(t time.Time) string {
	return t.Format("January 2006")
}

// WeekdayName returns the English weekday name, "Monday" through "Sunday".
func WeekdayName(t time.Time) string {
	return t.Weekday().String()
}

// TimeOfDay returns the send time of day, e.g. "9:05 AM".
func TimeOfDay(t time.Time) string {
	return t.Format("3:04 PM")
}

// weekdayOrder is the fixed emission order of the seasonal report.
var weekdayOrder = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}
