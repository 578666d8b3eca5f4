package shopgoodwill

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// BidInfo is the quick-bid view of an item: fewer fields than the full
// detail page but measurably cheaper to fetch, and it carries the seller ID
// needed to place a bid.
type BidInfo struct {
	ItemID       int64   `json:"itemId"`
	SellerID     int64   `json:"sellerId"`
	CurrentPrice float64 `json:"currentPrice"`
	MinimumBid   float64 `json:"minimumBid"`
}

// BidRecord is one entry of an item's bid history, newest first.
type BidRecord struct {
	BidderName string  `json:"bidderName"`
	BidAmount  float64 `json:"bidAmount"`
}

// ItemDetail mirrors the item page. Unlike BidInfo it includes the bid
// history, which is the only source for the current top bidder's name.
type ItemDetail struct {
	ItemID       int64
	Title        string
	SellerID     int64
	CurrentPrice float64
	MinimumBid   float64
	BidSummary   []BidRecord
}

// GetItemBidInfo fetches the quick-bid view for an item.
func (c *Client) GetItemBidInfo(ctx context.Context, itemID int64) (BidInfo, error) {
	q := url.Values{"itemId": {strconv.FormatInt(itemID, 10)}}
	body, err := c.do(ctx, http.MethodGet, "/itemBid/ShowBidModal", q, nil)
	if err != nil {
		return BidInfo{}, err
	}
	var info BidInfo
	if err := unmarshal(body, &info); err != nil {
		return BidInfo{}, err
	}
	return info, nil
}

// GetItemDetail fetches the full item page model.
func (c *Client) GetItemDetail(ctx context.Context, itemID int64) (ItemDetail, error) {
	body, err := c.do(ctx, http.MethodGet, "/itemDetail/GetItemDetailModelByItemId/"+strconv.FormatInt(itemID, 10), nil, nil)
	if err != nil {
		return ItemDetail{}, err
	}

	var parsed struct {
		ItemID       int64   `json:"itemId"`
		Title        string  `json:"title"`
		SellerID     int64   `json:"sellerId"`
		CurrentPrice float64 `json:"currentPrice"`
		MinimumBid   float64 `json:"minimumBid"`
		BidHistory   struct {
			BidSummary []BidRecord `json:"bidSummary"`
		} `json:"bidHistory"`
	}
	if err := unmarshal(body, &parsed); err != nil {
		return ItemDetail{}, err
	}
	return ItemDetail{
		ItemID:       parsed.ItemID,
		Title:        parsed.Title,
		SellerID:     parsed.SellerID,
		CurrentPrice: parsed.CurrentPrice,
		MinimumBid:   parsed.MinimumBid,
		BidSummary:   parsed.BidHistory.BidSummary,
	}, nil
}

// PlaceBid submits a maximum bid. The amount is formatted with two decimal
// places, matching what the web app sends. No retry on failure: a second
// attempt moments later risks a double bid.
func (c *Client) PlaceBid(ctx context.Context, itemID int64, amount float64, sellerID int64, quantity int) error {
	_, err := c.do(ctx, http.MethodPost, "/ItemBid/PlaceBid", nil, map[string]any{
		"itemId":    itemID,
		"bidAmount": fmt.Sprintf("%.2f", amount),
		"sellerId":  sellerID,
		"quantity":  quantity,
	})
	return err
}
