package queries

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/example/sgw-sniper/internal/config"
	"github.com/example/sgw-sniper/internal/durations"
	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

// Quoted phrases in the search text must appear verbatim in result titles;
// the endpoint itself treats quotes as noise.
var quotePattern = regexp.MustCompile(`['"].+?['"]`)

// FilterListings applies the client-side filters the endpoint cannot
// express: quoted-phrase title matching and the time-remaining window.
func FilterListings(query map[string]any, listings []shopgoodwill.Listing, filter config.QueryFilter, now time.Time) ([]shopgoodwill.Listing, error) {
	searchText, _ := query["searchText"].(string)
	quotes := quotePattern.FindAllString(strings.ToLower(searchText), -1)

	var (
		cmp       byte
		threshold time.Duration
	)
	if filter.TimeRemaining != "" {
		if len(filter.TimeRemaining) < 2 || (filter.TimeRemaining[0] != '<' && filter.TimeRemaining[0] != '>') {
			return nil, fmt.Errorf("invalid time_remaining filter %q: want '<' or '>' prefix", filter.TimeRemaining)
		}
		cmp = filter.TimeRemaining[0]
		var err error
		threshold, err = durations.Parse(filter.TimeRemaining[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid time_remaining filter %q: %w", filter.TimeRemaining, err)
		}
	}

	var out []shopgoodwill.Listing
	for _, listing := range listings {
		if cmp != 0 {
			end, err := shopgoodwill.ParseTimestamp(listing.EndTime)
			if err != nil {
				return nil, fmt.Errorf("listing %d: bad endTime %q: %w", listing.ItemID, listing.EndTime, err)
			}
			remaining := end.Sub(now)
			switch cmp {
			case '<':
				// an already-ended auction is not "ending soon"
				if remaining >= threshold || remaining <= 0 {
					continue
				}
			case '>':
				if remaining <= threshold {
					continue
				}
			}
		}

		title := strings.ToLower(listing.Title)
		matched := true
		for _, quote := range quotes {
			if !strings.Contains(title, quote[1:len(quote)-1]) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, listing)
		}
	}
	return out, nil
}
