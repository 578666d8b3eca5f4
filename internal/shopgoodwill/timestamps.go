package shopgoodwill

import (
	"strings"
	"time"
)

// The site reports timestamps like "2025-05-01T22:09:00" with the Pacific
// zone implied and the fractional-second part present only sometimes
// ("2025-04-29T23:00:17.45" shows up in the same response as the former).
const timestampLayout = "2006-01-02T15:04:05"

var pacific = mustLoadLocation("America/Los_Angeles")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// ParseTimestamp normalizes a site timestamp to UTC, truncating any
// fractional-second component.
func ParseTimestamp(s string) (time.Time, error) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	t, err := time.ParseInLocation(timestampLayout, s, pacific)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
