package slotportion

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses a calendar date stored as "YYYY-MM-DD" or as a full
// RFC 3339 timestamp. The result is midnight of that day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if d, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrMalformed, s)
	}
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// ParseWallClock parses a 24-hour "HH:MM" time of day.
func ParseWallClock(s string) (Clock, error) {
	hm := strings.Split(strings.TrimSpace(s), ":")
	if len(hm) != 2 {
		return Clock{}, fmt.Errorf("%w: expected \"HH:MM\", got %q", ErrMalformed, s)
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("%w: bad hour %q", ErrMalformed, hm[0])
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || len(hm[1]) != 2 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: bad minute %q", ErrMalformed, hm[1])
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// At resolves a stored time-of-day on a stored date. clock may be "HH:MM",
// in which case date supplies the day, or a full RFC 3339 timestamp, in
// which case date is ignored.
func At(date, clock string, loc *time.Location) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(clock)); err == nil {
		return ts, nil
	}
	c, err := ParseWallClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	day, err := ParseDate(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return c.On(day, loc), nil
}
