package core

import (
	"errors"
	"fmt"
	"time"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// Period is a named recurring time bucket used to window aggregation.
type Period string

// ErrInvalidPeriod is returned for unrecognized period keywords. There is no
// silent default: callers that pass a bad period get the error back.
var ErrInvalidPeriod = errors.New("invalid period")

func (p Period) Validate() error {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p))
}

// ResolveRange computes the inclusive [start, end] calendar-day boundaries of
// the period bucket containing ref.
//
// Weeks are Monday-anchored regardless of locale. Monthly ranges end on the
// actual last day of the month, including leap Februarys and the December to
// January rollover.
func ResolveRange(p Period, ref time.Time) (start, end time.Time, err error) {
	day := Day(ref)
	switch p {
	case Daily:
		return day, day, nil
	case Weekly:
		// Monday=0 ... Sunday=6
		offset := (int(day.Weekday()) + 6) % 7
		start = day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6), nil
	case Monthly:
		return MonthRange(day.Year(), day.Month())
	case Yearly:
		start = time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(day.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
		return start, end, nil
	}
	return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p))
}

// MonthRange returns the first and last calendar day of the given month.
func MonthRange(year int, month time.Month) (start, end time.Time, err error) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return start, end, nil
}
