package time

import (
	"fmt"
	"strings"
	"time"
)

// DefaultLayouts lists the layouts accepted when reading date/time text:
// ISO dates with a 'T' or space separator, optional zone and fractional
// seconds, US month/day/year with 24 or 12 hour clocks, and RFC 1123 / ANSI C.
var DefaultLayouts = []string{
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 3:04:05 pm",
	"1/2/2006 3:04 pm",
	"1/2/2006",
	time.RFC1123Z,
	time.RFC1123,
	time.ANSIC,
}

// Parse parses value with layout in loc (UTC when nil). A 'T' between the date
// and time parts is interchangeable with a space.
func Parse(layout, value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = time.RFC3339
	}
	// adjust T fragment
	valueT, layoutT := separatorIndex(value), separatorIndex(layout)
	if (valueT >= 0) != (layoutT >= 0) {
		if valueT >= 0 {
			value = value[:valueT] + " " + value[valueT+1:]
		} else {
			layout = layout[:layoutT] + " " + layout[layoutT+1:]
		}
	}
	return time.ParseInLocation(layout, value, loc)
}

// ParseAny tries layouts in order (DefaultLayouts when empty) and returns the first match.
func ParseAny(value string, loc *time.Location, layouts ...string) (time.Time, error) {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if ts, err := Parse(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("format: %q does not match any accepted date time layout", value)
}

// separatorIndex returns the index of a 'T' placed between two digits, or -1.
func separatorIndex(s string) int {
	for i := 1; i+1 < len(s); i++ {
		if s[i] == 'T' && isDigit(s[i-1]) && isDigit(s[i+1]) {
			return i
		}
	}
	return -1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
