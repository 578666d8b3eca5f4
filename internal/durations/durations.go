// Package durations parses the human-readable offset strings used in config
// files ("30 seconds", "5 minutes", "1 hour 30 minutes") into time.Durations.
// Plain Go forms ("30s", "5m") are accepted too.
package durations

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var units = map[string]time.Duration{
	"second":  time.Second,
	"seconds": time.Second,
	"sec":     time.Second,
	"secs":    time.Second,
	"s":       time.Second,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"min":     time.Minute,
	"mins":    time.Minute,
	"m":       time.Minute,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"hr":      time.Hour,
	"hrs":     time.Hour,
	"h":       time.Hour,
	"day":     24 * time.Hour,
	"days":    24 * time.Hour,
	"d":       24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"weeks":   7 * 24 * time.Hour,
	"w":       7 * 24 * time.Hour,
}

// Parse returns the duration described by s. It errors on unknown units and
// on zero or negative results, so a rejected offset is never schedulable.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	// Native Go syntax first ("90s", "1h30m").
	if d, err := time.ParseDuration(s); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("non-positive duration %q", s)
		}
		return d, nil
	}

	fields := strings.Fields(strings.ToLower(s))
	if len(fields)%2 != 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	var total time.Duration
	for i := 0; i < len(fields); i += 2 {
		n, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: bad value %q", s, fields[i])
		}
		unit, ok := units[fields[i+1]]
		if !ok {
			return 0, fmt.Errorf("invalid duration %q: unknown unit %q", s, fields[i+1])
		}
		total += time.Duration(n * float64(unit))
	}
	if total <= 0 {
		return 0, fmt.Errorf("non-positive duration %q", s)
	}
	return total, nil
}
