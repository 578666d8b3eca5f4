package sniper

import (
	"context"
	"fmt"
	"time"
)

// bidRefreshMaxAge is the cache bound forced immediately before any
// bid-mutating action: close enough to zero that the executor sees the
// freshest possible state before committing money.
const bidRefreshMaxAge = 5 * time.Second

// timeAlert reminds the user that an auction is ending. It re-validates
// that the item is still favorited and never errors to the caller: this
// path must not mutate remote state and its failures are purely cosmetic.
func (s *Sniper) timeAlert(ctx context.Context, itemID int64, endTime time.Time) error {
	entries, err := s.cache.Get(ctx, s.opts.FavoritesMaxAge)
	if err != nil {
		s.log.Debugf("favorites refresh failed in alert for item %d: %v", itemID, err)
	}

	fav, ok := entries[itemID]
	if !ok {
		// unfavorited since scheduling
		return nil
	}

	// Whole seconds on both sides keeps the displayed remainder stable.
	remaining := endTime.Truncate(time.Second).Sub(s.now().Truncate(time.Second))
	s.log.Warnf("Time alert - %q ending in %s", fav.Title, remaining)
	return nil
}

// placeBid is the safety-critical path. Config, favorites and bids can all
// have changed between scheduling and now, so every precondition is
// re-validated, in order: fresh cache, still favorited, bid intent parses,
// ceiling clears the minimum acceptable bid, top bidder is not a friend.
// Only then is a single submission attempted; no retry either way.
func (s *Sniper) placeBid(ctx context.Context, itemID int64) error {
	entries, err := s.cache.Get(ctx, bidRefreshMaxAge)
	if err != nil {
		// Stale snapshot retained; proceed against it rather than drop a
		// last-chance bid on a transient refresh failure.
		s.log.Errorf("favorites refresh failed before bid on item %d: %v", itemID, err)
	}

	fav, ok := entries[itemID]
	if !ok {
		return nil
	}

	intent, outcome := ParseBidIntent(fav.Notes)
	switch outcome {
	case IntentAbsent:
		return nil
	case IntentMalformed:
		s.log.Errorf("unparseable max_bid note on %q - not bidding", fav.Title)
		return nil
	}

	info, err := s.cmd.GetItemBidInfo(ctx, itemID)
	if err != nil {
		return fmt.Errorf("quick-bid info for item %d: %w", itemID, err)
	}

	if intent.MaxBid < info.MinimumBid {
		s.log.Infof("Not bidding on %q - max bid %.2f is below the minimum bid %.2f",
			fav.Title, intent.MaxBid, info.MinimumBid)
		return nil
	}

	if len(s.opts.FriendList) > 0 {
		detail, err := s.cmd.GetItemDetail(ctx, itemID)
		if err != nil {
			// Advisory check only: keep bidding if we can't see the history.
			s.log.Errorf("item detail for %d: %v - continuing with bid", itemID, err)
		} else if len(detail.BidSummary) > 0 && s.isFriend(detail.BidSummary[0].BidderName) {
			s.log.Infof("Canceling bid due to friendship on %q - current high bidder %s",
				fav.Title, detail.BidSummary[0].BidderName)
			return nil
		}
	}

	if s.opts.DryRun {
		s.log.Warnf("DRY-RUN: Placing bid on %q for %.2f", fav.Title, intent.MaxBid)
		return nil
	}

	if err := s.bidder.PlaceBid(ctx, itemID, intent.MaxBid, info.SellerID, 1); err != nil {
		s.log.Errorf("placing bid on %q: %v", fav.Title, err)
		return nil
	}

	// Logged only after the submission went through.
	s.log.Warnf("Placing bid on %q for %.2f", fav.Title, intent.MaxBid)
	return nil
}

func (s *Sniper) isFriend(bidderName string) bool {
	for _, f := range s.opts.FriendList {
		if f == bidderName {
			return true
		}
	}
	return false
}
