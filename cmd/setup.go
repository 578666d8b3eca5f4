package cmd

import (
	"context"

	"github.com/example/sgw-sniper/internal/config"
	"github.com/example/sgw-sniper/internal/notify"
	"github.com/example/sgw-sniper/internal/shopgoodwill"
)

func buildLogger(cfg config.Config) *notify.Logger {
	var push notify.Pusher
	if cfg.Logging.Gotify != nil {
		push = notify.NewGotify(*cfg.Logging.Gotify)
	}
	// Info and above doubles as the alert/push channel.
	return notify.NewLogger(nil, notify.ParseLevel(cfg.Logging.LogLevel), push, notify.Info)
}

// authenticatedClients logs in the command account and, in command_bid
// mode, the separate bidding account. Both funnel response statuses to the
// same observer.
func authenticatedClients(ctx context.Context, cfg config.Config, observer shopgoodwill.StatusObserver) (command, bidder *shopgoodwill.Client, err error) {
	cmdCreds, bidCreds := cfg.AuthInfo.Accounts()

	command = shopgoodwill.New(shopgoodwill.WithObserver(observer))
	if err := command.Authenticate(ctx, cmdCreds); err != nil {
		return nil, nil, err
	}

	if cfg.AuthInfo.AuthType != "command_bid" {
		return command, command, nil
	}

	bidder = shopgoodwill.New(shopgoodwill.WithObserver(observer))
	if err := bidder.Authenticate(ctx, bidCreds); err != nil {
		return nil, nil, err
	}
	return command, bidder, nil
}
