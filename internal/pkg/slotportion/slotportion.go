// Package slotportion parses the free-text slot ranges stored on appointments,
// e.g. "6:12 PM - 6:42 PM portion". New records should carry structured
// start/end timestamps; this parser exists for the records that do not.
package slotportion

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformed is returned for any input that is not a parseable range.
var ErrMalformed = errors.New("malformed slot portion")

const separator = " - "

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// On returns the clock time on the calendar day of date, in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseEnd returns the end clock of "<start> - <h:mm AM|PM>[ portion]".
// Only the part after the first separator is read; the start is free text.
func ParseEnd(s string) (Clock, error) {
	_, end, ok := strings.Cut(s, separator)
	if !ok {
		return Clock{}, fmt.Errorf("%w: missing %q separator in %q", ErrMalformed, strings.TrimSpace(separator), s)
	}
	c, err := ParseClock(stripMarker(end))
	if err != nil {
		return Clock{}, fmt.Errorf("end of %q: %w", s, err)
	}
	return c, nil
}

// ParseClock parses a 12-hour clock time such as "6:42 PM".
func ParseClock(s string) (Clock, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Clock{}, fmt.Errorf("%w: expected \"h:mm AM|PM\", got %q", ErrMalformed, strings.TrimSpace(s))
	}
	hm := strings.Split(fields[0], ":")
	if len(hm) != 2 {
		return Clock{}, fmt.Errorf("%w: bad time %q", ErrMalformed, fields[0])
	}
	hour, err := strconv.Atoi(hm[0])
	if err != nil || hour < 1 || hour > 12 {
		return Clock{}, fmt.Errorf("%w: bad hour %q", ErrMalformed, hm[0])
	}
	minute, err := strconv.Atoi(hm[1])
	if err != nil || len(hm[1]) != 2 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("%w: bad minute %q", ErrMalformed, hm[1])
	}
	switch strings.ToLower(fields[1]) {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	default:
		return Clock{}, fmt.Errorf("%w: bad meridiem %q", ErrMalformed, fields[1])
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// stripMarker removes the first case-insensitive "portion" marker.
func stripMarker(s string) string {
	if i := strings.Index(strings.ToLower(s), "portion"); i >= 0 {
		s = s[:i] + s[i+len("portion"):]
	}
	return strings.TrimSpace(s)
}
