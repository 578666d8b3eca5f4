// Package seen persists which listings the query alerter has already
// reported, keyed by item ID with the auction end time for pruning.
package seen

import (
	"context"
	"encoding/json"
	"os"
	"time"
)

type Store interface {
	Load(ctx context.Context) (map[string]time.Time, error)
	Save(ctx context.Context, entries map[string]time.Time) error
}

// FileStore keeps the seen set in a JSON file, item ID to end time.
type FileStore struct {
	Path string
}

func (s *FileStore) Load(ctx context.Context) (map[string]time.Time, error) {
	b, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return map[string]time.Time{}, nil
	}
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		// Older versions stored a bare list; start over rather than fail.
		return map[string]time.Time{}, nil
	}

	out := make(map[string]time.Time, len(raw))
	for id, ts := range raw {
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			continue
		}
		out[id] = t
	}
	return out, nil
}

func (s *FileStore) Save(ctx context.Context, entries map[string]time.Time) error {
	raw := make(map[string]string, len(entries))
	for id, t := range entries {
		raw[id] = t.UTC().Format(time.RFC3339)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, b, 0o644)
}

// Prune drops entries whose auction has already ended.
func Prune(entries map[string]time.Time, now time.Time) {
	for id, end := range entries {
		if now.After(end) {
			delete(entries, id)
		}
	}
}
