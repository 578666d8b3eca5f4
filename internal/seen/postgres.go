package seen

import (
	"context"
	"time"

	"github.com/example/sgw-sniper/internal/db"
)

// PostgresStore keeps the seen set in a seen_listings table, for setups
// where the alerter runs from more than one machine or a cron container
// without a stable filesystem.
type PostgresStore struct {
	DB *db.DB
}

func (s *PostgresStore) Load(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.DB.Query(ctx, `SELECT item_id, end_time FROM seen_listings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var id string
		var end time.Time
		if err := rows.Scan(&id, &end); err != nil {
			return nil, err
		}
		out[id] = end
	}
	return out, rows.Err()
}

// Save makes the table mirror entries exactly: upsert everything present,
// delete everything absent (pruned or no longer tracked).
func (s *PostgresStore) Save(ctx context.Context, entries map[string]time.Time) error {
	ids := make([]string, 0, len(entries))
	for id, end := range entries {
		if err := s.DB.Exec(ctx, `
INSERT INTO seen_listings(item_id, end_time) VALUES ($1, $2)
ON CONFLICT (item_id) DO UPDATE SET end_time = EXCLUDED.end_time`, id, end); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return s.DB.Exec(ctx, `DELETE FROM seen_listings WHERE NOT (item_id = ANY($1))`, ids)
}
