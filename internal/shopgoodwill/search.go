package shopgoodwill

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// Listing is a single search result row, carrying the fields the alerting
// tooling cares about.
type Listing struct {
	ItemID                int64   `json:"itemId"`
	Title                 string  `json:"title"`
	EndTime               string  `json:"endTime"`
	RemainingTime         string  `json:"remainingTime"`
	MinimumBid            float64 `json:"minimumBid"`
	BuyNowPrice           float64 `json:"buyNowPrice"`
	DiscountedBuyNowPrice float64 `json:"discountedBuyNowPrice"`
}

// SavedSearch is a server-side saved search as returned by the API. The
// fields are kept raw: they need a lossy transform before they can be
// replayed as a query (see internal/queries).
type SavedSearch map[string]any

// GetSavedSearches lists the user's saved searches.
func (c *Client) GetSavedSearches(ctx context.Context) ([]SavedSearch, error) {
	body, err := c.do(ctx, http.MethodPost, "/SaveSearches/GetSaveSearches", nil, map[string]any{})
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Data []SavedSearch `json:"data"`
	}
	if err := unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}

// GetQueryResults runs a listing query across every result page: the page
// counter is bumped until a page comes back empty or the running total
// matches the server-reported item count.
func (c *Client) GetQueryResults(ctx context.Context, query map[string]any, pageSize int) ([]Listing, error) {
	if pageSize <= 0 {
		pageSize = 40
	}

	// shallow copy so pagination fields don't leak back to the caller
	q := make(map[string]any, len(query)+2)
	for k, v := range query {
		q[k] = v
	}
	q["pageSize"] = pageSize

	var total []Listing
	for page := 1; ; page++ {
		q["page"] = page
		body, err := c.do(ctx, http.MethodPost, "/Search/ItemListing", nil, q)
		if err != nil {
			return nil, err
		}

		var parsed struct {
			CategoryListModel json.RawMessage `json:"categoryListModel"`
			SearchResults     struct {
				Items     []Listing `json:"items"`
				ItemCount int       `json:"itemCount"`
			} `json:"searchResults"`
		}
		if err := unmarshal(body, &parsed); err != nil {
			return nil, err
		}
		// The query endpoint reports errors by omitting categoryListModel
		// rather than by status code.
		if len(parsed.CategoryListModel) == 0 || string(parsed.CategoryListModel) == "null" {
			return nil, errors.New("shopgoodwill: error response from query endpoint")
		}

		if len(parsed.SearchResults.Items) == 0 {
			return total, nil
		}
		total = append(total, parsed.SearchResults.Items...)
		if len(total) >= parsed.SearchResults.ItemCount {
			return total, nil
		}
	}
}
