package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sgwsniper",
		Short: "Watch shopgoodwill favorites, alert before close, and snipe bids under a max-bid ceiling",
	}

	root.PersistentFlags().String("config", "config.json", "path to config file")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newSniperCmd())
	root.AddCommand(newAlertsCmd())
	root.AddCommand(newScheduleCmd())
	root.AddCommand(newEncryptCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
