package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/sgw-sniper/internal/config"
	"github.com/example/sgw-sniper/internal/durations"
	"github.com/example/sgw-sniper/internal/sniper"
)

func newSniperCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sniper",
		Short: "Run the bid-sniper daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			logger := buildLogger(cfg)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			tracker := sniper.NewOutageTracker(
				func(status int, url string, at time.Time) {
					logger.Errorf("Outage detected - SGW returned HTTP %d for URL %s", status, url)
				},
				func(elapsed time.Duration, at time.Time) {
					logger.Infof("Outage ended - time elapsed: %s", elapsed)
				},
			)
			observer := func(status int, url string) {
				tracker.Observe(status, url, time.Now().UTC())
			}

			command, bidder, err := authenticatedClients(ctx, cfg, observer)
			if err != nil {
				return err
			}

			var alertOffsets []time.Duration
			for _, s := range cfg.BidSniper.AlertTimeDeltas {
				d, err := durations.Parse(s)
				if err != nil {
					logger.Warnf("invalid alert time delta %q: %v", s, err)
					continue
				}
				alertOffsets = append(alertOffsets, d)
			}

			bidOffset, err := durations.Parse(cfg.BidSniper.BidSnipeTimeDelta)
			if err != nil {
				logger.Warnf("invalid bid snipe time delta %q: %v - using 30 seconds", cfg.BidSniper.BidSnipeTimeDelta, err)
				bidOffset = 30 * time.Second
			}

			s := sniper.New(command, bidder, tracker, logger, sniper.Options{
				RefreshInterval: time.Duration(cfg.BidSniper.RefreshSeconds) * time.Second,
				FavoritesMaxAge: time.Duration(cfg.BidSniper.FavoritesMaxCacheSeconds) * time.Second,
				AlertOffsets:    alertOffsets,
				BidOffset:       bidOffset,
				FriendList:      cfg.FriendList,
				DefaultNote:     cfg.BidSniper.FavoriteDefaultNote,
				DryRun:          dryRun,
			})

			if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "log bid intent without submitting anything")
	return cmd
}
