// Package config loads the tools' JSON config file. A .env file (if
// present) and real environment variables override the credential and
// database fields, which keeps secrets out of checked-in configs.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/example/sgw-sniper/internal/notify"
	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

const (
	defaultRefreshSeconds    = 300
	defaultMaxCacheSeconds   = 60
	defaultBidSnipeTimeDelta = "30 seconds"
	defaultSeenListingsFile  = "seen_listings.json"
)

// AuthInfo selects between a single account ("universal") and the
// command/bid split, where one account browses and schedules while a second
// one submits the actual bids.
type AuthInfo struct {
	AuthType string `json:"auth_type"`

	shopgoodwill.Credentials

	CommandAccount *shopgoodwill.Credentials `json:"command_account"`
	BidAccount     *shopgoodwill.Credentials `json:"bid_account"`
}

// Accounts returns the credentials for the command and bid roles. In
// universal mode both are the same account.
func (a AuthInfo) Accounts() (command, bid shopgoodwill.Credentials) {
	if a.AuthType == "command_bid" && a.CommandAccount != nil && a.BidAccount != nil {
		return *a.CommandAccount, *a.BidAccount
	}
	return a.Credentials, a.Credentials
}

type BidSniper struct {
	RefreshSeconds           int      `json:"refresh_seconds"`
	FavoritesMaxCacheSeconds int      `json:"favorites_max_cache_seconds"`
	AlertTimeDeltas          []string `json:"alert_time_deltas"`
	BidSnipeTimeDelta        string   `json:"bid_snipe_time_delta"`
	FavoriteDefaultNote      string   `json:"favorite_default_note"`
}

// QueryFilter narrows query-alert results. TimeRemaining is
// ("<" | ">") + a duration string, compared against each listing's time left.
type QueryFilter struct {
	TimeRemaining string `json:"time_remaining"`
}

// Filters is the "filters" config block: a global filter plus per-query
// overrides, flattened into one JSON object keyed by query name with the
// global fields alongside.
type Filters struct {
	Global   QueryFilter
	PerQuery map[string]QueryFilter
}

func (f *Filters) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	f.PerQuery = make(map[string]QueryFilter)
	for k, v := range raw {
		if k == "time_remaining" {
			if err := json.Unmarshal(v, &f.Global.TimeRemaining); err != nil {
				return err
			}
			continue
		}
		var qf QueryFilter
		if err := json.Unmarshal(v, &qf); err != nil {
			return err
		}
		f.PerQuery[k] = qf
	}
	return nil
}

// For returns the filter for a query, falling back to the global one field
// by field.
func (f Filters) For(queryName string) QueryFilter {
	qf := f.PerQuery[queryName]
	if qf.TimeRemaining == "" {
		qf.TimeRemaining = f.Global.TimeRemaining
	}
	return qf
}

type Logging struct {
	LogLevel string               `json:"log_level"`
	Gotify   *notify.GotifyConfig `json:"gotify"`
}

type Config struct {
	AuthInfo             AuthInfo                  `json:"auth_info"`
	BidSniper            BidSniper                 `json:"bid_sniper"`
	FriendList           []string                  `json:"friend_list"`
	SavedQueries         map[string]map[string]any `json:"saved_queries"`
	Filters              Filters                   `json:"filters"`
	SeenListingsFilename string                    `json:"seen_listings_filename"`
	DatabaseURL          string                    `json:"database_url"`
	Logging              Logging                   `json:"logging"`
}

// Load reads the config file at path and applies defaults and environment
// overrides.
func Load(path string) (Config, error) {
	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	if cfg.BidSniper.RefreshSeconds <= 0 {
		cfg.BidSniper.RefreshSeconds = defaultRefreshSeconds
	}
	if cfg.BidSniper.FavoritesMaxCacheSeconds <= 0 {
		cfg.BidSniper.FavoritesMaxCacheSeconds = defaultMaxCacheSeconds
	}
	if cfg.BidSniper.BidSnipeTimeDelta == "" {
		cfg.BidSniper.BidSnipeTimeDelta = defaultBidSnipeTimeDelta
	}
	if cfg.SeenListingsFilename == "" {
		cfg.SeenListingsFilename = defaultSeenListingsFile
	}

	if v := os.Getenv("SHOPGOODWILL_USERNAME"); v != "" {
		cfg.AuthInfo.Username = v
	}
	if v := os.Getenv("SHOPGOODWILL_PASSWORD"); v != "" {
		cfg.AuthInfo.Password = v
	}
	if v := os.Getenv("SHOPGOODWILL_ACCESS_TOKEN"); v != "" {
		cfg.AuthInfo.AccessToken = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	return cfg, nil
}
