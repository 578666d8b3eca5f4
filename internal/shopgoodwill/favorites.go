package shopgoodwill

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Favorite is one tracked listing from the user's watchlist. EndTime is
// normalized to UTC (whole seconds) at ingestion.
type Favorite struct {
	ItemID      int64
	Title       string
	EndTime     time.Time
	SellerID    int64
	Notes       string
	WatchlistID int64
}

// GetFavorites returns the user's open favorites keyed by item ID. The
// endpoint is not paginated; it returns the whole watchlist at once.
func (c *Client) GetFavorites(ctx context.Context) (map[int64]Favorite, error) {
	q := url.Values{"Type": {"open"}}
	body, err := c.do(ctx, http.MethodPost, "/Favorite/GetAllFavoriteItemsByType", q, map[string]any{})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Data []struct {
			ItemID      int64  `json:"itemId"`
			Title       string `json:"title"`
			EndTime     string `json:"endTime"`
			SellerID    int64  `json:"sellerId"`
			Notes       string `json:"notes"`
			WatchlistID int64  `json:"watchlistId"`
		} `json:"data"`
	}
	if err := unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	out := make(map[int64]Favorite, len(parsed.Data))
	for _, f := range parsed.Data {
		end, err := ParseTimestamp(f.EndTime)
		if err != nil {
			return nil, fmt.Errorf("favorite %d: bad endTime %q: %w", f.ItemID, f.EndTime, err)
		}
		out[f.ItemID] = Favorite{
			ItemID:      f.ItemID,
			Title:       f.Title,
			EndTime:     end,
			SellerID:    f.SellerID,
			Notes:       f.Notes,
			WatchlistID: f.WatchlistID,
		}
	}
	return out, nil
}

// AddFavorite adds the item to the user's watchlist and optionally attaches
// a note. Adding an already-favorited item is harmless.
func (c *Client) AddFavorite(ctx context.Context, itemID int64, note string) error {
	q := url.Values{"itemId": {strconv.FormatInt(itemID, 10)}}
	if _, err := c.do(ctx, http.MethodGet, "/Favorite/AddToFavorite", q, nil); err != nil {
		return err
	}
	if note == "" {
		return nil
	}

	favorites, err := c.GetFavorites(ctx)
	if err != nil {
		return err
	}
	fav, ok := favorites[itemID]
	if !ok {
		return fmt.Errorf("shopgoodwill: item %d not in favorites after add", itemID)
	}
	return c.SaveFavoriteNote(ctx, fav.WatchlistID, note)
}

// SaveFavoriteNote sets the free-text note on a watchlist entry. Notes
// longer than the site's cap are truncated.
func (c *Client) SaveFavoriteNote(ctx context.Context, watchlistID int64, note string) error {
	if len(note) > maxNoteLength {
		note = note[:maxNoteLength]
	}
	_, err := c.do(ctx, http.MethodPost, "/Favorite/Save", nil, map[string]any{
		"notes":       note,
		"watchlistId": watchlistID,
	})
	return err
}
