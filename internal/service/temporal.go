package service

import (
	"time"

	"github.com/iliyamo/club-booking/internal/model"
)

// DateLayout is the only accepted competition date format.
const DateLayout = "2006-01-02 15:04:05"

// ParseDate parses a competition date in the local time zone.  ok is false
// for any value that does not match DateLayout exactly.
func ParseDate(value string) (t time.Time, ok bool) {
	t, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	// Parse accepts fractional seconds the layout does not mention.
	if t.Format(DateLayout) != value {
		return time.Time{}, false
	}
	return t, true
}

// IsPast reports whether comp can no longer be booked at now.  A date that
// cannot be parsed counts as past.
func IsPast(comp model.Competition, now time.Time) bool {
	t, ok := ParseDate(comp.Date)
	if !ok {
		return true
	}
	return t.Before(now)
}
