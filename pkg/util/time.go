package util

import (
	"time"
)

// TimeOnDate returns the wall clock hour:minute on the calendar day of date, in date's location.
func TimeOnDate(date time.Time, hour int, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
