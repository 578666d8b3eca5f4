package queries

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/example/sgw-sniper/internal/notify"
	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

type fakeSearchClient struct {
	listings []shopgoodwill.Listing
}

func (f *fakeSearchClient) GetSavedSearches(ctx context.Context) ([]shopgoodwill.SavedSearch, error) {
	return nil, nil
}

func (f *fakeSearchClient) GetQueryResults(ctx context.Context, query map[string]any, pageSize int) ([]shopgoodwill.Listing, error) {
	return f.listings, nil
}

type memStore struct {
	entries map[string]time.Time
	saves   int
}

func (m *memStore) Load(ctx context.Context) (map[string]time.Time, error) {
	out := make(map[string]time.Time, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) Save(ctx context.Context, entries map[string]time.Time) error {
	m.entries = entries
	m.saves++
	return nil
}

func TestAlerterReportsOnlyUnseenListings(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	end := sgwTime(now.Add(2 * time.Hour))

	client := &fakeSearchClient{listings: []shopgoodwill.Listing{
		{ItemID: 1, Title: "Nikon F3", EndTime: end, MinimumBid: 25},
		{ItemID: 2, Title: "Leica M6", EndTime: end, MinimumBid: 500},
	}}
	store := &memStore{entries: map[string]time.Time{"1": now.Add(2 * time.Hour)}}

	var buf bytes.Buffer
	a := &Alerter{
		Client: client,
		Store:  store,
		Log:    notify.NewLogger(log.New(&buf, "", 0), notify.Debug, nil, notify.Warn),
		Now:    func() time.Time { return now },
	}

	err := a.Run(context.Background(), map[string]map[string]any{"cameras": {}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `1 new results for shopgoodwill query "cameras"`) {
		t.Fatalf("alert header missing: %q", out)
	}
	if !strings.Contains(out, "Leica M6") || strings.Contains(out, "Nikon F3") {
		t.Fatalf("alert should cover only the unseen listing: %q", out)
	}
	if !strings.Contains(out, "https://shopgoodwill.com/item/2") {
		t.Fatalf("alert missing the item URL: %q", out)
	}

	if store.saves != 1 {
		t.Fatalf("store saved %d times, want 1", store.saves)
	}
	if _, ok := store.entries["2"]; !ok {
		t.Fatalf("newly reported listing not recorded as seen: %v", store.entries)
	}
}

func TestAlerterPrunesEndedListings(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeSearchClient{}
	store := &memStore{entries: map[string]time.Time{
		"9": now.Add(-time.Hour),
		"8": now.Add(time.Hour),
	}}

	var buf bytes.Buffer
	a := &Alerter{
		Client: client,
		Store:  store,
		Log:    notify.NewLogger(log.New(&buf, "", 0), notify.Debug, nil, notify.Warn),
		Now:    func() time.Time { return now },
	}

	if err := a.Run(context.Background(), nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := store.entries["9"]; ok {
		t.Fatalf("ended listing not pruned: %v", store.entries)
	}
	if _, ok := store.entries["8"]; !ok {
		t.Fatalf("live listing pruned: %v", store.entries)
	}
}

func TestAlerterSilentWhenNothingNew(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeSearchClient{listings: []shopgoodwill.Listing{
		{ItemID: 1, Title: "Nikon F3", EndTime: sgwTime(now.Add(time.Hour))},
	}}
	store := &memStore{entries: map[string]time.Time{"1": now.Add(time.Hour)}}

	var buf bytes.Buffer
	a := &Alerter{
		Client: client,
		Store:  store,
		Log:    notify.NewLogger(log.New(&buf, "", 0), notify.Debug, nil, notify.Warn),
		Now:    func() time.Time { return now },
	}

	if err := a.Run(context.Background(), map[string]map[string]any{"cameras": {}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(buf.String(), "new results") {
		t.Fatalf("alert emitted with nothing new: %q", buf.String())
	}
}

func TestAlerterMarkdownFormat(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	client := &fakeSearchClient{listings: []shopgoodwill.Listing{
		{ItemID: 2, Title: "Leica M6", EndTime: sgwTime(now.Add(time.Hour)), MinimumBid: 500},
	}}
	store := &memStore{}

	var buf bytes.Buffer
	a := &Alerter{
		Client:   client,
		Store:    store,
		Log:      notify.NewLogger(log.New(&buf, "", 0), notify.Debug, nil, notify.Warn),
		Markdown: true,
		Now:      func() time.Time { return now },
	}

	if err := a.Run(context.Background(), map[string]map[string]any{"cameras": {}}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(buf.String(), "[Leica M6](https://shopgoodwill.com/item/2):") {
		t.Fatalf("markdown link missing: %q", buf.String())
	}
}
