// Package sniper implements the auction watcher: a poll loop over the
// user's favorites that schedules one-shot deferred tasks (ending-soon
// alerts and a max-bid snipe) at fixed offsets before each auction closes.
package sniper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/sgw-sniper/internal/notify"
	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

// CommandClient is the account used for browsing and scheduling.
type CommandClient interface {
	FavoritesFetcher
	GetItemBidInfo(ctx context.Context, itemID int64) (shopgoodwill.BidInfo, error)
	GetItemDetail(ctx context.Context, itemID int64) (shopgoodwill.ItemDetail, error)
	SaveFavoriteNote(ctx context.Context, watchlistID int64, note string) error
}

// BidClient is the account that submits bids. In single-account setups it is
// the same client as CommandClient.
type BidClient interface {
	PlaceBid(ctx context.Context, itemID int64, amount float64, sellerID int64, quantity int) error
}

type Options struct {
	RefreshInterval time.Duration
	FavoritesMaxAge time.Duration
	AlertOffsets    []time.Duration
	BidOffset       time.Duration
	FriendList      []string
	DefaultNote     string
	DryRun          bool
}

type Sniper struct {
	cmd    CommandClient
	bidder BidClient
	cache  *FavoritesCache
	outage *OutageTracker
	log    *notify.Logger
	opts   Options

	now   func() time.Time
	runAt func(ctx context.Context, name string, at time.Time, fn func(context.Context) error)

	mu        sync.Mutex
	scheduled map[int64]struct{}

	wg sync.WaitGroup
}

// New wires a sniper. In single-account setups cmd and bidder are the same
// underlying client; outage may be nil when outage tracking is not wanted.
func New(cmd CommandClient, bidder BidClient, outage *OutageTracker, log *notify.Logger, opts Options) *Sniper {
	s := &Sniper{
		cmd:       cmd,
		bidder:    bidder,
		cache:     NewFavoritesCache(cmd),
		outage:    outage,
		log:       log,
		opts:      opts,
		now:       time.Now,
		scheduled: make(map[int64]struct{}),
	}
	s.runAt = s.dispatch
	return s
}

// Run drives the poll loop until ctx is cancelled, then waits for any
// in-flight deferred tasks to finish.
func (s *Sniper) Run(ctx context.Context) error {
	t := time.NewTicker(s.opts.RefreshInterval)
	defer t.Stop()

	s.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-t.C:
			s.poll(ctx)
		}
	}
}

// poll refreshes the favorites snapshot and dispatches deferred tasks for
// every entry whose action window has come near enough. A per-entry failure
// never stops the loop.
func (s *Sniper) poll(ctx context.Context) {
	entries, err := s.cache.Get(ctx, s.opts.FavoritesMaxAge)
	if err != nil {
		// During a tracked outage the degraded/recovered lines carry the
		// story; per-poll noise stays at debug.
		if s.outage != nil && s.outage.Open() {
			s.log.Debugf("favorites refresh failed during outage: %v", err)
		} else {
			s.log.Errorf("favorites refresh failed: %v", err)
		}
	}

	now := s.now()
	lookahead := 3 * s.opts.RefreshInterval

	for itemID, fav := range entries {
		if s.isScheduled(itemID) {
			continue
		}

		tasks := planTasks(fav.EndTime, now, s.opts.AlertOffsets, s.opts.BidOffset, lookahead)
		if tasks != nil {
			for _, task := range tasks {
				s.dispatchTask(ctx, itemID, fav, task)
			}
			s.markScheduled(itemID)
			s.log.Debugf("scheduled actions for item %d (%s), closing %s",
				itemID, fav.Title, fav.EndTime.Format(time.RFC3339))
		}

		if s.opts.DefaultNote != "" && fav.Notes == "" {
			if err := s.cmd.SaveFavoriteNote(ctx, fav.WatchlistID, s.opts.DefaultNote); err != nil {
				s.log.Errorf("setting default note on item %d: %v", itemID, err)
			}
		}
	}
}

type taskKind int

const (
	taskAlert taskKind = iota
	taskBid
)

type plannedTask struct {
	Kind   taskKind
	FireAt time.Time
	Offset time.Duration
}

// planTasks computes the deferred tasks for one auction. It returns nil
// while the lookahead guard defers the item (the nearest action is still
// further out than `lookahead`); the item stays unscheduled and is
// reconsidered on a later poll. Past-due alerts are dropped, but the bid
// task is always planned: a past-due bid fires immediately as a last-chance
// attempt, since the cached end time may itself be stale.
func planTasks(endTime, now time.Time, alertOffsets []time.Duration, bidOffset, lookahead time.Duration) []plannedTask {
	minOffset := bidOffset
	for _, d := range alertOffsets {
		if d < minOffset {
			minOffset = d
		}
	}
	if endTime.Add(-minOffset).After(now.Add(lookahead)) {
		return nil
	}

	tasks := make([]plannedTask, 0, len(alertOffsets)+1)
	for _, d := range alertOffsets {
		fireAt := endTime.Add(-d)
		if fireAt.Before(now) {
			continue
		}
		tasks = append(tasks, plannedTask{Kind: taskAlert, FireAt: fireAt, Offset: d})
	}
	tasks = append(tasks, plannedTask{Kind: taskBid, FireAt: endTime.Add(-bidOffset), Offset: bidOffset})
	return tasks
}

func (s *Sniper) dispatchTask(ctx context.Context, itemID int64, fav shopgoodwill.Favorite, task plannedTask) {
	switch task.Kind {
	case taskAlert:
		name := fmt.Sprintf("alert[%d,-%s]", itemID, task.Offset)
		endTime := fav.EndTime
		s.runAt(ctx, name, task.FireAt, func(ctx context.Context) error {
			return s.timeAlert(ctx, itemID, endTime)
		})
	case taskBid:
		name := fmt.Sprintf("bid[%d]", itemID)
		s.runAt(ctx, name, task.FireAt, func(ctx context.Context) error {
			return s.placeBid(ctx, itemID)
		})
	}
}

// dispatch runs fn in its own goroutine once at fires. Tasks are never
// cancelled individually; an item that no longer qualifies simply no-ops at
// fire time inside the action's re-validation. A fire time already in the
// past runs immediately.
func (s *Sniper) dispatch(ctx context.Context, name string, at time.Time, fn func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Errorf("task %s panicked: %v", name, r)
			}
		}()

		timer := time.NewTimer(time.Until(at))
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if err := fn(ctx); err != nil {
			s.log.Errorf("task %s failed: %v", name, err)
		}
	}()
}

func (s *Sniper) isScheduled(itemID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.scheduled[itemID]
	return ok
}

// markScheduled is terminal for the process lifetime: entries are never
// removed, even if the favorite disappears. Re-validation at fire time makes
// re-scheduling unnecessary.
func (s *Sniper) markScheduled(itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled[itemID] = struct{}{}
}
