package services

import (
	"time"

	"greetbot-backend/config"
)

// DayClock converts the wall-clock date into the event's unlock count. It
// is the single source of truth for how many greetings may be claimed; it
// holds no state and is recomputed on every access.
type DayClock struct {
	start     time.Time
	totalDays int
}

func NewDayClock(cfg *config.EventConfig) *DayClock {
	return &DayClock{start: cfg.StartTime(), totalDays: cfg.TotalDays}
}

// DayNumber returns 0 before the event starts, 1 on the start date, one
// more per calendar day after that, clamped at the total day count. The
// event never re-locks.
func (d *DayClock) DayNumber(now time.Time) int {
	if civilDate(now).Before(civilDate(d.start)) {
		return 0
	}
	day := daysBetween(d.start, now) + 1
	if day > d.totalDays {
		return d.totalDays
	}
	return day
}

// AllowedCount is the number of greetings unlocked as of now.
func (d *DayClock) AllowedCount(now time.Time) int {
	return d.DayNumber(now)
}

func (d *DayClock) EventStarted(now time.Time) bool {
	return d.DayNumber(now) > 0
}

func (d *DayClock) TotalDays() int {
	return d.totalDays
}

// civilDate rebuilds t's calendar date as a UTC midnight. Dates from any
// location land in one frame, so day arithmetic never shifts by a zone
// offset or truncates on DST's 23/25-hour days.
func civilDate(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(civilDate(end).Sub(civilDate(start)).Hours() / 24)
}
