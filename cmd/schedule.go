package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/sgw-sniper/internal/config"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule ITEM_ID MAX_BID",
		Short: "Favorite an item with a max_bid note so the sniper daemon will bid on it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid ITEM_ID %q", args[0])
			}
			maxBid, err := strconv.ParseFloat(args[1], 64)
			if err != nil || maxBid <= 0 {
				return fmt.Errorf("invalid MAX_BID %q", args[1])
			}

			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			// Scheduling is a browse-side action, so the command account
			// does it even in command_bid mode.
			client, _, err := authenticatedClients(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}

			note, err := json.Marshal(map[string]float64{"max_bid": maxBid})
			if err != nil {
				return err
			}

			// Adding an already-favorited item just refreshes the note.
			if err := client.AddFavorite(cmd.Context(), itemID, string(note)); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "scheduled bid of %.2f on item %d\n", maxBid, itemID)
			return nil
		},
	}
}
