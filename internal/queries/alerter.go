package queries

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/sgw-sniper/internal/config"
	"github.com/example/sgw-sniper/internal/notify"
	"github.com/example/sgw-sniper/internal/seen"
	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

const itemURLFormat = "https://shopgoodwill.com/item/%d"

// SearchClient is the slice of the marketplace client the alerter uses.
type SearchClient interface {
	GetSavedSearches(ctx context.Context) ([]shopgoodwill.SavedSearch, error)
	GetQueryResults(ctx context.Context, query map[string]any, pageSize int) ([]shopgoodwill.Listing, error)
}

// Alerter runs listing queries and reports results that have not been seen
// before. Alerts go through the logger at info level, which is also the
// push-notification channel when one is configured.
type Alerter struct {
	Client   SearchClient
	Store    seen.Store
	Log      *notify.Logger
	Filters  config.Filters
	Markdown bool

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func (a *Alerter) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Run executes the given queries (name -> query payload). A failing query
// is logged and skipped; the seen set is pruned of ended auctions and saved
// once at the end either way.
func (a *Alerter) Run(ctx context.Context, queriesToRun map[string]map[string]any) error {
	seenListings, err := a.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load seen listings: %w", err)
	}

	for name, query := range queriesToRun {
		if err := a.runOne(ctx, name, query, seenListings); err != nil {
			a.Log.Errorf("query %q: %v", name, err)
		}
	}

	seen.Prune(seenListings, a.now())
	if err := a.Store.Save(ctx, seenListings); err != nil {
		return fmt.Errorf("save seen listings: %w", err)
	}
	return nil
}

func (a *Alerter) runOne(ctx context.Context, name string, query map[string]any, seenListings map[string]time.Time) error {
	listings, err := a.Client.GetQueryResults(ctx, query, 40)
	if err != nil {
		return err
	}

	filtered, err := FilterListings(query, listings, a.Filters.For(name), a.now())
	if err != nil {
		return err
	}

	var fresh []shopgoodwill.Listing
	for _, listing := range filtered {
		id := strconv.FormatInt(listing.ItemID, 10)
		if _, ok := seenListings[id]; ok {
			continue
		}
		end, err := shopgoodwill.ParseTimestamp(listing.EndTime)
		if err != nil {
			return fmt.Errorf("listing %d: bad endTime %q: %w", listing.ItemID, listing.EndTime, err)
		}
		seenListings[id] = end
		fresh = append(fresh, listing)
	}

	if len(fresh) == 0 {
		return nil
	}
	a.Log.Infof("%s", a.formatAlert(name, fresh))
	return nil
}

func (a *Alerter) formatAlert(name string, listings []shopgoodwill.Listing) string {
	lines := []string{
		fmt.Sprintf("%d new results for shopgoodwill query %q", len(listings), name),
		"",
	}
	for _, l := range listings {
		url := fmt.Sprintf(itemURLFormat, l.ItemID)
		bid := fmt.Sprintf("%.2f", l.MinimumBid)
		if a.Markdown {
			lines = append(lines,
				fmt.Sprintf("[%s](%s):", l.Title, url), "",
				bid, "",
				l.EndTime, "",
			)
		} else {
			lines = append(lines,
				l.Title+":",
				bid,
				l.EndTime,
				url,
				"",
			)
		}
	}
	return strings.Join(lines, "\n")
}

// QueriesFromSavedSearches converts server-side saved searches into
// runnable queries keyed by their saved-search ID (the site does not let
// users name them).
func QueriesFromSavedSearches(searches []shopgoodwill.SavedSearch) map[string]map[string]any {
	out := make(map[string]map[string]any, len(searches))
	for _, search := range searches {
		id := stringify(search["savedSearchId"])
		if id == "" {
			continue
		}
		out[id] = SavedSearchToQuery(search)
	}
	return out
}
